// internal/models/deck.go
package models

import (
	"math/rand"
)

// InitializeDeck resets the deck to the full distribution in rank order. Call ShuffleDeck afterwards.
func (g *Game) InitializeDeck() {
	deck := make([]CardType, 0, DeckSize)
	for _, c := range AllCardTypes() {
		for i := 0; i < Distribution[c]; i++ {
			deck = append(deck, c)
		}
	}
	g.Deck = deck
	g.ReservedCard = nil
}

// ShuffleDeck permutes the deck uniformly at random.
func (g *Game) ShuffleDeck(r *rand.Rand) {
	r.Shuffle(len(g.Deck), func(i, j int) {
		g.Deck[i], g.Deck[j] = g.Deck[j], g.Deck[i]
	})
}

// DrawCard removes and returns the front card.
func (g *Game) DrawCard() (CardType, error) {
	if len(g.Deck) == 0 {
		return 0, ErrEmptyDeck
	}
	c := g.Deck[0]
	g.Deck = g.Deck[1:]
	return c, nil
}

// ReturnCardToDeck appends c to the tail of the deck without reshuffling.
func (g *Game) ReturnCardToDeck(c CardType) error {
	if len(g.Deck) >= DeckSize {
		return ErrDeckFull
	}
	g.Deck = append(g.Deck, c)
	return nil
}

// SetAsideReservedCard draws the round's reserved card.
func (g *Game) SetAsideReservedCard() error {
	c, err := g.DrawCard()
	if err != nil {
		return err
	}
	g.ReservedCard = &c
	return nil
}

// GetReservedCard removes and returns the reserved card. It is only reachable once the deck is empty.
func (g *Game) GetReservedCard() (CardType, error) {
	if len(g.Deck) > 0 {
		return 0, ErrDeckNotEmpty
	}
	if g.ReservedCard == nil {
		return 0, ErrNoReservedCard
	}
	c := *g.ReservedCard
	g.ReservedCard = nil
	return c, nil
}

// HasReplacementCard reports whether a forced draw can still be satisfied.
func (g *Game) HasReplacementCard() bool {
	return len(g.Deck) > 0 || g.ReservedCard != nil
}

// CardsAccountedFor counts every card in the deck, the reserve, hands and played piles.
func (g *Game) CardsAccountedFor() int {
	n := len(g.Deck)
	if g.ReservedCard != nil {
		n++
	}
	for _, p := range g.Players {
		n += len(p.HoldingCards) + len(p.PlayedCards)
	}
	return n
}
