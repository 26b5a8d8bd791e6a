// internal/models/game.go
package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	MinPlayers = 2
	MaxPlayers = 6
)

// Game is the room-scoped aggregate. ID doubles as the room id.
type Game struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Secret string    `json:"secret,omitempty"`
	HostID uuid.UUID `json:"hostId"`

	Players []*Player `json:"players"`

	// Deck front is the next draw.
	Deck         []CardType `json:"deck"`
	ReservedCard *CardType  `json:"reservedCard,omitempty"`

	CurrentPlayerIndex int       `json:"currentPlayerIndex"`
	MaxTokens          int       `json:"maxTokens"`
	State              GameState `json:"state"`
	Round              int       `json:"round"`

	// AwaitingChoice is set while the current player owes a Chancellor card choice.
	AwaitingChoice bool `json:"awaitingChoice"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewGame creates an empty room waiting for players, with the host seated first.
func NewGame(name, secret string, host *Player) *Game {
	id, _ := uuid.NewRandom()
	now := time.Now().UTC()
	g := &Game{
		ID:        id,
		Name:      name,
		Secret:    secret,
		Players:   []*Player{},
		Deck:      []CardType{},
		State:     StateWaitingForPlayers,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if host != nil {
		g.HostID = host.ID
		g.Players = append(g.Players, host)
	}
	return g
}

// TransitionTo moves the game to s if the state machine allows it.
func (g *Game) TransitionTo(s GameState) error {
	if !CanTransition(g.State, s) {
		return &TransitionError{From: g.State, To: s}
	}
	g.State = s
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// FindPlayer returns the player with the given id.
func (g *Game) FindPlayer(id uuid.UUID) (*Player, error) {
	if i := g.PlayerIndex(id); i >= 0 {
		return g.Players[i], nil
	}
	return nil, ErrPlayerNotFound
}

// PlayerIndex returns the seat of the player or -1.
func (g *Game) PlayerIndex(id uuid.UUID) int {
	return slices.IndexFunc(g.Players, func(p *Player) bool { return p.ID == id })
}

// CurrentPlayer returns the player whose turn it is, or nil for an empty room.
func (g *Game) CurrentPlayer() *Player {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players) {
		return nil
	}
	return g.Players[g.CurrentPlayerIndex]
}

// IsCurrentPlayer reports whether id holds the turn.
func (g *Game) IsCurrentPlayer(id uuid.UUID) bool {
	cur := g.CurrentPlayer()
	return cur != nil && cur.ID == id
}

// AddPlayer seats a new player. Only possible before the game starts.
func (g *Game) AddPlayer(p *Player) error {
	if g.State != StateWaitingForPlayers {
		return ErrGameAlreadyStarted
	}
	if g.PlayerIndex(p.ID) >= 0 {
		return ErrPlayerAlreadyJoined
	}
	if len(g.Players) >= MaxPlayers {
		return ErrRoomFull
	}
	g.Players = append(g.Players, p)
	if g.HostID == uuid.Nil {
		g.HostID = p.ID
	}
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// RemovePlayer unseats a player before the game starts. If the host leaves, the next seated
// player becomes host. The returned bool reports whether the host changed.
func (g *Game) RemovePlayer(id uuid.UUID) (bool, error) {
	if g.State != StateWaitingForPlayers {
		return false, ErrGameAlreadyStarted
	}
	i := g.PlayerIndex(id)
	if i < 0 {
		return false, ErrPlayerNotFound
	}
	g.Players = slices.Delete(g.Players, i, i+1)
	g.UpdatedAt = time.Now().UTC()
	if g.CurrentPlayerIndex >= len(g.Players) {
		g.CurrentPlayerIndex = 0
	}
	if g.HostID != id {
		return false, nil
	}
	g.HostID = uuid.Nil
	if len(g.Players) > 0 {
		g.HostID = g.Players[0].ID
	}
	return true, nil
}

// PlayerIDs returns the seated player ids in seat order.
func (g *Game) PlayerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(g.Players))
	for i, p := range g.Players {
		ids[i] = p.ID
	}
	return ids
}

// Clone returns a deep copy of the aggregate.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		cp.Players[i] = p.Clone()
	}
	cp.Deck = slices.Clone(g.Deck)
	if cp.Deck == nil {
		cp.Deck = []CardType{}
	}
	if g.ReservedCard != nil {
		cp.ReservedCard = CardPtr(*g.ReservedCard)
	}
	return &cp
}
