// internal/game/choice.go
package game

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/models"
)

// SubmitCardChoice completes a Chancellor play: the player keeps one card and returns the rest to
// the bottom of the deck in the given order. keep and returns together must be exactly the hand.
func (e *Engine) SubmitCardChoice(g *models.Game, playerID uuid.UUID, keep models.CardType, returns []models.CardType) ([]events.Event, error) {
	p, err := e.turnPlayer(g, playerID, "choose cards", models.StateWaitingForPlay)
	if err != nil {
		return nil, err
	}
	if !g.AwaitingChoice {
		return nil, models.ErrNoPendingChoice
	}
	if !sameCards(p.HoldingCards, append([]models.CardType{keep}, returns...)) {
		return nil, fmt.Errorf("%w: keep %s, return %v, holding %v", models.ErrInvalidCardChoice, keep, returns, p.HoldingCards)
	}
	if len(g.Deck)+len(returns) > models.DeckSize {
		return nil, models.ErrDeckFull
	}

	returns = slices.Clone(returns)
	for _, c := range returns {
		p.ReturnCard(c)
		if err := g.ReturnCardToDeck(c); err != nil {
			return nil, err
		}
	}
	g.AwaitingChoice = false

	evs := []events.Event{events.Broadcast(events.KindCardReturnedToDeck, events.CardReturnedToDeckPayload{
		Player:   p.ID,
		Count:    len(returns),
		DeckSize: len(g.Deck),
	})}
	more, err := e.endTurn(g)
	if err != nil {
		return nil, err
	}
	return append(evs, more...), nil
}

// sameCards reports whether a and b hold the same cards, ignoring order.
func sameCards(a, b []models.CardType) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
