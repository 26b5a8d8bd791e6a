// internal/cards/catalog.go

// Package cards holds the card catalog: one stateless entry per rank, each with a play effect,
// declarative targeting requirements, a mandatory-play predicate and a round-end bonus condition.
// The catalog is built once and shared read-only by every room.
package cards

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/samber/lo"
)

// Requirements describes what a play of the card must name.
type Requirements struct {
	TargetPlayer           bool `json:"targetPlayer"`
	CanTargetSelf          bool `json:"canTargetSelf"`
	TargetCard             bool `json:"targetCard"`
	CanChooseEqualCardType bool `json:"canChooseEqualCardType"`
}

// Outcome tells the orchestrator how a play ended.
type Outcome int

const (
	// OutcomeResolved means the effect ran.
	OutcomeResolved Outcome = iota
	// OutcomeTargetProtected means the target was protected or out of the round. The card stays
	// played and the turn is consumed.
	OutcomeTargetProtected
)

// Play is the input of an effect. Target and TargetCard are nil when not chosen.
type Play struct {
	Game       *models.Game
	Player     *models.Player
	Card       models.CardType
	Target     *models.Player
	TargetCard *models.CardType
}

// Result is what an effect produced. AutoAdvance is false only when the player owes a follow-up choice.
type Result struct {
	AutoAdvance bool
	Outcome     Outcome
	Events      []events.Event
}

// Effect resolves a play against the game.
type Effect func(p Play) (Result, error)

// Card is a catalog entry.
type Card struct {
	Type         models.CardType
	Requirements Requirements
	Effect       Effect

	// MustPlayOver reports whether holding this card together with other forces this card to be
	// played first. Nil for cards without such a rule.
	MustPlayOver func(other models.CardType) bool

	// ExtraScore reports whether p earns a bonus token for this card at round end. Nil for no bonus.
	ExtraScore func(g *models.Game, p *models.Player) bool
}

// Catalog maps every rank to its entry.
type Catalog struct {
	cards [models.CardTypeCount]*Card
}

// NewCatalog builds the standard catalog.
func NewCatalog() *Catalog {
	c := &Catalog{}
	for _, card := range []*Card{
		spyCard(), guardCard(), priestCard(), baronCard(), servantCard(),
		princeCard(), chancellorCard(), kingCard(), countessCard(), princessCard(),
	} {
		c.cards[card.Type] = card
	}
	return c
}

var standard = NewCatalog()

// Standard returns the shared catalog.
func Standard() *Catalog {
	return standard
}

// Lookup returns the entry for t.
func (c *Catalog) Lookup(t models.CardType) (*Card, error) {
	if !t.Valid() || c.cards[t] == nil {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownCard, int(t))
	}
	return c.cards[t], nil
}

// Cards returns every entry in rank order.
func (c *Catalog) Cards() []*Card {
	return lo.Filter(c.cards[:], func(card *Card, _ int) bool { return card != nil })
}

// Validate checks p against the declarative requirements of card.
func (card *Card) Validate(p Play) error {
	req := card.Requirements
	if req.TargetPlayer {
		if p.Target == nil {
			return fmt.Errorf("%w: %s needs a target player", models.ErrCardRequirementsNotMet, card.Type)
		}
		if p.Target.ID == p.Player.ID && !req.CanTargetSelf {
			return fmt.Errorf("%w: %s cannot target yourself", models.ErrCardRequirementsNotMet, card.Type)
		}
	}
	if req.TargetCard {
		if p.TargetCard == nil {
			return fmt.Errorf("%w: %s needs a card to name", models.ErrCardRequirementsNotMet, card.Type)
		}
		if !p.TargetCard.Valid() {
			return fmt.Errorf("%w: %d", models.ErrUnknownCard, int(*p.TargetCard))
		}
		if *p.TargetCard == card.Type && !req.CanChooseEqualCardType {
			return fmt.Errorf("%w: %s cannot name %s", models.ErrCardRequirementsNotMet, card.Type, card.Type)
		}
	}
	return nil
}

// Resolve validates p and dispatches to the card's effect. A protected or eliminated target
// is reported through Result.Outcome rather than an error.
func (c *Catalog) Resolve(p Play) (Result, error) {
	card, err := c.Lookup(p.Card)
	if err != nil {
		return Result{}, err
	}
	if err := card.Validate(p); err != nil {
		return Result{}, err
	}
	if card.Requirements.TargetPlayer && !p.Target.CanBeTargeted() {
		return wasted(p), nil
	}
	return card.Effect(p)
}

// MandatoryCard returns the card that must be played instead of played, if any.
func (c *Catalog) MandatoryCard(hand []models.CardType, played models.CardType) (models.CardType, bool) {
	for i, held := range hand {
		if held == played || !held.Valid() {
			continue
		}
		card := c.cards[held]
		if card == nil || card.MustPlayOver == nil {
			continue
		}
		for j, other := range hand {
			if j != i && card.MustPlayOver(other) {
				return held, true
			}
		}
	}
	return 0, false
}

// Bonus lists the players who earn a round-end token for a card.
type Bonus struct {
	Card    models.CardType
	Players []*models.Player
}

// Bonuses evaluates every card's round-end bonus condition.
func (c *Catalog) Bonuses(g *models.Game) []Bonus {
	var out []Bonus
	for _, card := range c.Cards() {
		if card.ExtraScore == nil {
			continue
		}
		players := lo.Filter(g.Players, func(p *models.Player, _ int) bool { return card.ExtraScore(g, p) })
		if len(players) > 0 {
			out = append(out, Bonus{Card: card.Type, Players: players})
		}
	}
	return out
}

func advance(evs ...events.Event) Result {
	return Result{AutoAdvance: true, Outcome: OutcomeResolved, Events: evs}
}

func wasted(p Play) Result {
	return Result{
		AutoAdvance: true,
		Outcome:     OutcomeTargetProtected,
		Events: []events.Event{events.Broadcast(events.KindTurnWasted, events.TurnWastedPayload{
			Player: p.Player.ID,
			Target: p.Target.ID,
			Card:   p.Card,
		})},
	}
}

// eliminate knocks p out of the round and returns the public event revealing its hand.
func eliminate(p *models.Player, by *uuid.UUID, reason models.CardType) events.Event {
	p.Eliminate()
	return events.Broadcast(events.KindPlayerEliminated, events.PlayerEliminatedPayload{
		Player: p.ID,
		Cards:  append([]models.CardType(nil), p.PlayedCards...),
		By:     by,
		Reason: reason,
	})
}
