// internal/models/player.go
package models

import (
	"slices"

	"github.com/google/uuid"
)

// PlayerStatus is the in-game status of a player.
type PlayerStatus string

const (
	StatusActive       PlayerStatus = "Active"
	StatusProtected    PlayerStatus = "Protected"
	StatusEliminated   PlayerStatus = "Eliminated"
	StatusDisconnected PlayerStatus = "Disconnected"
	StatusAbandoned    PlayerStatus = "Abandoned"
)

// Player is a member of exactly one game.
type Player struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`

	// HoldingCards holds 0-2 cards during normal play, up to 3 while a Chancellor choice is pending.
	HoldingCards []CardType `json:"holdingCards"`
	// PlayedCards is append-only within a round and public to every player.
	PlayedCards []CardType `json:"playedCards"`

	Score  int          `json:"score"`
	Status PlayerStatus `json:"status"`
	// Shielded keeps a Servant shield while the player is disconnected.
	Shielded bool `json:"shielded,omitempty"`
}

// NewPlayer builds an active player with empty hands.
func NewPlayer(id uuid.UUID, name string) *Player {
	return &Player{
		ID:           id,
		Name:         name,
		HoldingCards: []CardType{},
		PlayedCards:  []CardType{},
		Status:       StatusActive,
	}
}

func (p *Player) HasCard(c CardType) bool {
	return slices.Contains(p.HoldingCards, c)
}

// HasCards reports whether the hand is non-empty. A player without cards is out of the round.
func (p *Player) HasCards() bool {
	return len(p.HoldingCards) > 0
}

// Eliminate moves every held card into PlayedCards, making the hand public, and marks the player eliminated.
func (p *Player) Eliminate() {
	p.PlayedCards = append(p.PlayedCards, p.HoldingCards...)
	p.HoldingCards = []CardType{}
	p.Status = StatusEliminated
	p.Shielded = false
}

// Abandon behaves like Eliminate but marks the player as having left the game for good.
func (p *Player) Abandon() {
	p.Eliminate()
	p.Status = StatusAbandoned
}

// GetCard returns the first held card without removing it.
func (p *Player) GetCard() (CardType, error) {
	if !p.HasCards() {
		return 0, ErrPlayerHasNoCards
	}
	return p.HoldingCards[0], nil
}

// RemoveCard removes and returns the first held card.
func (p *Player) RemoveCard() (CardType, error) {
	if !p.HasCards() {
		return 0, ErrPlayerHasNoCards
	}
	c := p.HoldingCards[0]
	p.HoldingCards = slices.Delete(p.HoldingCards, 0, 1)
	return c, nil
}

// HandCard gives the player a card.
func (p *Player) HandCard(c CardType) {
	p.HoldingCards = append(p.HoldingCards, c)
}

// Discard moves the first held card to PlayedCards and returns it.
func (p *Player) Discard() (CardType, error) {
	c, err := p.RemoveCard()
	if err != nil {
		return 0, err
	}
	p.PlayedCards = append(p.PlayedCards, c)
	return c, nil
}

// PlayCard moves one instance of c from the hand to PlayedCards. It returns false if c is not held.
func (p *Player) PlayCard(c CardType) bool {
	if !p.ReturnCard(c) {
		return false
	}
	p.PlayedCards = append(p.PlayedCards, c)
	return true
}

// RevertPlayCard undoes the most recent PlayCard of c.
func (p *Player) RevertPlayCard(c CardType) bool {
	for i := len(p.PlayedCards) - 1; i >= 0; i-- {
		if p.PlayedCards[i] == c {
			p.PlayedCards = slices.Delete(p.PlayedCards, i, i+1)
			p.HoldingCards = append(p.HoldingCards, c)
			return true
		}
	}
	return false
}

// ReturnCard removes one instance of c from the hand without recording it as played.
func (p *Player) ReturnCard(c CardType) bool {
	i := slices.Index(p.HoldingCards, c)
	if i < 0 {
		return false
	}
	p.HoldingCards = slices.Delete(p.HoldingCards, i, i+1)
	return true
}

// SetProtection toggles the single-turn shield. Only players still in the game can be protected,
// but a disconnected player's shield can always be lifted.
func (p *Player) SetProtection(on bool) error {
	if !on && p.Status == StatusDisconnected {
		p.Shielded = false
		return nil
	}
	switch p.Status {
	case StatusEliminated, StatusDisconnected, StatusAbandoned:
		return ErrPlayerNotInGame
	}
	if on {
		p.Status = StatusProtected
	} else {
		p.Status = StatusActive
	}
	return nil
}

func (p *Player) IsProtected() bool {
	return p.Status == StatusProtected || (p.Status == StatusDisconnected && p.Shielded)
}

// Disconnect marks the player disconnected. A running shield is kept.
func (p *Player) Disconnect() {
	p.Shielded = p.Status == StatusProtected
	p.Status = StatusDisconnected
}

// Reconnect brings a disconnected player back, restoring a shield held when the connection dropped.
func (p *Player) Reconnect() {
	if p.Status != StatusDisconnected {
		return
	}
	p.Status = StatusActive
	if p.Shielded {
		p.Status = StatusProtected
	}
	p.Shielded = false
}

// TakeHoldingCards empties the hand and returns what it held.
func (p *Player) TakeHoldingCards() []CardType {
	cards := p.HoldingCards
	p.HoldingCards = []CardType{}
	return cards
}

// HandCards adds cards to the hand in order.
func (p *Player) HandCards(cards []CardType) {
	p.HoldingCards = append(p.HoldingCards, cards...)
}

// CanBeTargeted reports whether card effects may choose this player.
func (p *Player) CanBeTargeted() bool {
	return !p.IsProtected() && p.Status != StatusEliminated && p.Status != StatusAbandoned
}

// IsInRound reports whether the player still competes in the current round.
func (p *Player) IsInRound() bool {
	switch p.Status {
	case StatusActive, StatusProtected, StatusDisconnected:
		return p.HasCards()
	}
	return false
}

// ResetForRound clears both hands. Eliminated and protected players become active again;
// disconnected and abandoned players keep their status.
func (p *Player) ResetForRound() {
	p.HoldingCards = []CardType{}
	p.PlayedCards = []CardType{}
	p.Shielded = false
	if p.Status == StatusEliminated || p.Status == StatusProtected {
		p.Status = StatusActive
	}
}

// HighestCard returns the highest held card value, or -1 with an empty hand.
func (p *Player) HighestCard() int {
	best := -1
	for _, c := range p.HoldingCards {
		best = max(best, c.Value())
	}
	return best
}

// HasPlayed reports whether c is among the cards the player discarded this round.
func (p *Player) HasPlayed(c CardType) bool {
	return slices.Contains(p.PlayedCards, c)
}

// Clone returns a deep copy.
func (p *Player) Clone() *Player {
	cp := *p
	cp.HoldingCards = slices.Clone(p.HoldingCards)
	cp.PlayedCards = slices.Clone(p.PlayedCards)
	if cp.HoldingCards == nil {
		cp.HoldingCards = []CardType{}
	}
	if cp.PlayedCards == nil {
		cp.PlayedCards = []CardType{}
	}
	return &cp
}
