// internal/models/errors.go
package models

import (
	"errors"
	"fmt"
)

// Domain errors. All of them are recoverable and meant to be relayed to the acting client.
var (
	ErrUnknownCard = errors.New("unknown card")

	// deck
	ErrEmptyDeck      = errors.New("deck is empty")
	ErrDeckFull       = errors.New("deck already holds every card")
	ErrNoReservedCard = errors.New("no reserved card was set aside this round")
	ErrDeckNotEmpty   = errors.New("reserved card is only available once the deck is empty")

	// players
	ErrPlayerHasNoCards    = errors.New("player has no cards")
	ErrPlayerNotInGame     = errors.New("player is no longer in the game")
	ErrPlayerNotFound      = errors.New("player not found in room")
	ErrPlayerAlreadyJoined = errors.New("player already joined this room")
	ErrRoomFull            = errors.New("room is full")
	ErrInvalidSecret       = errors.New("invalid room secret")
	ErrInvalidPlayerCount  = errors.New("a game needs between 2 and 6 players")
	ErrRoomNotFound        = errors.New("room not found")

	// state
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrInvalidGameState   = errors.New("action not allowed in the current game state")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameFinished       = errors.New("game is finished")
	ErrGameNotFinished    = errors.New("game is not finished yet")
	ErrNotHost            = errors.New("only the host can do that")
	ErrNotPlayersTurn     = errors.New("it is not your turn")
	ErrRoundNotOver       = errors.New("round is not over")

	// cards
	ErrCardNotHeld            = errors.New("player does not hold that card")
	ErrCardRequirementsNotMet = errors.New("card requirements not met")
	ErrMandatoryCardPlay      = errors.New("another card must be played first")
	ErrNoPendingChoice        = errors.New("no card choice is pending")
	ErrChoicePending          = errors.New("a card choice must be submitted first")
	ErrInvalidCardChoice      = errors.New("card choice does not match the hand")
)

// TransitionError reports an illegal state machine transition.
type TransitionError struct {
	From GameState
	To   GameState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// StateError reports an action attempted in a state that does not allow it.
type StateError struct {
	Action string
	State  GameState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while game is %s", e.Action, e.State)
}

func (e *StateError) Unwrap() error { return ErrInvalidGameState }

// MandatoryPlayError names the card that was attempted and the card that must be played instead.
type MandatoryPlayError struct {
	Attempted CardType
	Required  CardType
}

func (e *MandatoryPlayError) Error() string {
	return fmt.Sprintf("cannot play %s: %s must be played", e.Attempted, e.Required)
}

func (e *MandatoryPlayError) Unwrap() error { return ErrMandatoryCardPlay }
