// internal/models/state.go
package models

// GameState is the declared state of a game.
type GameState string

const (
	StateWaitingForPlayers GameState = "WaitingForPlayers"
	StateWaitingForDraw    GameState = "WaitingForDraw"
	StateWaitingForPlay    GameState = "WaitingForPlay"
	StateFinished          GameState = "Finished"
)

var transitions = map[GameState][]GameState{
	StateWaitingForPlayers: {StateWaitingForDraw},
	StateWaitingForDraw:    {StateWaitingForPlay, StateFinished},
	StateWaitingForPlay:    {StateWaitingForDraw, StateFinished},
}

// CanTransition reports whether from -> to is legal. Self-transitions are always legal.
func CanTransition(from, to GameState) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// InProgress reports whether rounds are being played.
func (s GameState) InProgress() bool {
	return s == StateWaitingForDraw || s == StateWaitingForPlay
}
