// internal/game/requirements.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/cards"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/samber/lo"
)

// CardRequirements tells a client what it must pick before playing a card right now.
type CardRequirements struct {
	Card models.CardType `json:"card"`
	cards.Requirements

	// EligibleTargets are the players the card may currently name. Empty when every other
	// player is protected or out, in which case the play wastes the turn.
	EligibleTargets []uuid.UUID       `json:"eligibleTargets"`
	EligibleCards   []models.CardType `json:"eligibleCards"`

	// MustPlayInstead is set when the hand forces another card to be played.
	MustPlayInstead *models.CardType `json:"mustPlayInstead,omitempty"`
}

// GetCardRequirements describes a play of card by playerID against the current game.
func (e *Engine) GetCardRequirements(g *models.Game, playerID uuid.UUID, card models.CardType) (CardRequirements, error) {
	if g.State == models.StateFinished {
		return CardRequirements{}, models.ErrGameFinished
	}
	p, err := g.FindPlayer(playerID)
	if err != nil {
		return CardRequirements{}, err
	}
	entry, err := e.catalog.Lookup(card)
	if err != nil {
		return CardRequirements{}, err
	}

	req := CardRequirements{
		Card:            card,
		Requirements:    entry.Requirements,
		EligibleTargets: []uuid.UUID{},
		EligibleCards:   []models.CardType{},
	}
	if entry.Requirements.TargetPlayer {
		for _, o := range g.Players {
			if !o.IsInRound() || !o.CanBeTargeted() {
				continue
			}
			if o.ID == p.ID && !entry.Requirements.CanTargetSelf {
				continue
			}
			req.EligibleTargets = append(req.EligibleTargets, o.ID)
		}
	}
	if entry.Requirements.TargetCard {
		req.EligibleCards = lo.Filter(models.AllCardTypes(), func(c models.CardType, _ int) bool {
			return c != card || entry.Requirements.CanChooseEqualCardType
		})
	}
	if required, ok := e.catalog.MandatoryCard(p.HoldingCards, card); ok {
		req.MustPlayInstead = models.CardPtr(required)
	}
	return req, nil
}
