// internal/cards/effects.go
package cards

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/samber/lo"
)

// Spy: no effect when played. At round end a player still in the round who is the only one to
// have played or discarded a Spy gains a token.
func spyCard() *Card {
	return &Card{
		Type:   models.Spy,
		Effect: func(Play) (Result, error) { return advance(), nil },
		ExtraScore: func(g *models.Game, p *models.Player) bool {
			if !p.IsInRound() || !p.HasPlayed(models.Spy) {
				return false
			}
			return !lo.SomeBy(g.Players, func(o *models.Player) bool {
				return o.ID != p.ID && o.IsInRound() && o.HasPlayed(models.Spy)
			})
		},
	}
}

// Guard: name a non-Guard card; if the target holds it, the target is out.
func guardCard() *Card {
	return &Card{
		Type:         models.Guard,
		Requirements: Requirements{TargetPlayer: true, TargetCard: true},
		Effect: func(p Play) (Result, error) {
			guess := *p.TargetCard
			correct := p.Target.HasCard(guess)
			evs := []events.Event{events.Broadcast(events.KindGuessCard, events.GuessCardPayload{
				Player:  p.Player.ID,
				Target:  p.Target.ID,
				Guess:   guess,
				Correct: correct,
			})}
			if correct {
				evs = append(evs, eliminate(p.Target, &p.Player.ID, models.Guard))
			}
			return advance(evs...), nil
		},
	}
}

// Priest: look at the target's hand. Only the invoker sees the card.
func priestCard() *Card {
	return &Card{
		Type:         models.Priest,
		Requirements: Requirements{TargetPlayer: true},
		Effect: func(p Play) (Result, error) {
			card, err := p.Target.GetCard()
			if err != nil {
				return Result{}, err
			}
			return advance(
				events.Broadcast(events.KindPeekCard, events.PeekCardPayload{Player: p.Player.ID, Target: p.Target.ID}),
				events.ToPlayer(p.Player.ID, events.KindShowCard, events.ShowCardPayload{Target: p.Target.ID, Card: card}),
			), nil
		},
	}
}

// Baron: compare hands privately; the lower card is out, a tie changes nothing.
func baronCard() *Card {
	return &Card{
		Type:         models.Baron,
		Requirements: Requirements{TargetPlayer: true},
		Effect: func(p Play) (Result, error) {
			mine, err := p.Player.GetCard()
			if err != nil {
				return Result{}, err
			}
			theirs, err := p.Target.GetCard()
			if err != nil {
				return Result{}, err
			}
			cmp := events.CompareCardsPayload{
				Player:     p.Player.ID,
				Target:     p.Target.ID,
				PlayerCard: mine,
				TargetCard: theirs,
			}
			evs := []events.Event{
				events.ToPlayer(p.Player.ID, events.KindCompareCards, cmp),
				events.ToPlayer(p.Target.ID, events.KindCompareCards, cmp),
			}
			switch {
			case mine.Value() > theirs.Value():
				evs = append(evs, eliminate(p.Target, &p.Player.ID, models.Baron))
			case mine.Value() < theirs.Value():
				evs = append(evs, eliminate(p.Player, &p.Target.ID, models.Baron))
			default:
				evs = append(evs, events.Broadcast(events.KindComparisonTie, events.ComparisonTiePayload{
					Player: p.Player.ID,
					Target: p.Target.ID,
				}))
			}
			return advance(evs...), nil
		},
	}
}

// Servant: the invoker cannot be targeted until their next turn starts.
func servantCard() *Card {
	return &Card{
		Type: models.Servant,
		Effect: func(p Play) (Result, error) {
			if err := p.Player.SetProtection(true); err != nil {
				return Result{}, err
			}
			return advance(events.Broadcast(events.KindPlayerProtected, events.PlayerProtectedPayload{Player: p.Player.ID})), nil
		},
	}
}

// Prince: the target (possibly the invoker) discards their hand and draws a new card. The reserved
// card replaces the draw when the deck is empty. Discarding the Princess eliminates the target.
func princeCard() *Card {
	return &Card{
		Type:         models.Prince,
		Requirements: Requirements{TargetPlayer: true, CanTargetSelf: true},
		Effect: func(p Play) (Result, error) {
			held, err := p.Target.GetCard()
			if err != nil {
				return Result{}, err
			}
			if held != models.Princess && !p.Game.HasReplacementCard() {
				return Result{}, fmt.Errorf("prince replacement draw: %w", models.ErrEmptyDeck)
			}
			if _, err := p.Target.Discard(); err != nil {
				return Result{}, err
			}
			evs := []events.Event{events.Broadcast(events.KindDiscardCard, events.DiscardCardPayload{Player: p.Target.ID, Card: held})}
			if held == models.Princess {
				return advance(append(evs, eliminate(p.Target, &p.Player.ID, models.Prince))...), nil
			}

			card, fromReserve, err := drawReplacement(p.Game)
			if err != nil {
				return Result{}, err
			}
			p.Target.HandCard(card)
			evs = append(evs, DrawEvents(p.Target, card, len(p.Game.Deck), fromReserve)...)
			return advance(evs...), nil
		},
	}
}

// drawReplacement draws from the deck, falling back to the reserved card once the deck is empty.
func drawReplacement(g *models.Game) (models.CardType, bool, error) {
	card, err := g.DrawCard()
	if err == nil {
		return card, false, nil
	}
	if !errors.Is(err, models.ErrEmptyDeck) {
		return 0, false, err
	}
	card, err = g.GetReservedCard()
	if err != nil {
		return 0, false, err
	}
	return card, true, nil
}

// Chancellor: draw up to two cards, then keep one and return the others to the bottom of the deck.
// The turn waits for that choice unless nothing could be drawn.
func chancellorCard() *Card {
	return &Card{
		Type: models.Chancellor,
		Effect: func(p Play) (Result, error) {
			var evs []events.Event
			drawn := 0
			for i := 0; i < 2; i++ {
				card, err := p.Game.DrawCard()
				if errors.Is(err, models.ErrEmptyDeck) {
					break
				}
				if err != nil {
					return Result{}, err
				}
				p.Player.HandCard(card)
				drawn++
				evs = append(evs, DrawEvents(p.Player, card, len(p.Game.Deck), false)...)
			}
			if drawn == 0 {
				return advance(evs...), nil
			}
			evs = append(evs, events.ToPlayer(p.Player.ID, events.KindChooseCard, events.ChooseCardPayload{
				Player: p.Player.ID,
				Cards:  slices.Clone(p.Player.HoldingCards),
				Return: drawn,
			}))
			return Result{AutoAdvance: false, Outcome: OutcomeResolved, Events: evs}, nil
		},
	}
}

// King: trade hands with the target.
func kingCard() *Card {
	return &Card{
		Type:         models.King,
		Requirements: Requirements{TargetPlayer: true},
		Effect: func(p Play) (Result, error) {
			mine := p.Player.TakeHoldingCards()
			theirs := p.Target.TakeHoldingCards()
			p.Player.HandCards(theirs)
			p.Target.HandCards(mine)
			return advance(
				events.Broadcast(events.KindSwitchCards, events.SwitchCardsPayload{Player: p.Player.ID, Target: p.Target.ID}),
				events.ToPlayer(p.Player.ID, events.KindSwitchCards, events.SwitchCardsPayload{
					Player: p.Player.ID, Target: p.Target.ID, Cards: slices.Clone(p.Player.HoldingCards),
				}),
				events.ToPlayer(p.Target.ID, events.KindSwitchCards, events.SwitchCardsPayload{
					Player: p.Player.ID, Target: p.Target.ID, Cards: slices.Clone(p.Target.HoldingCards),
				}),
			), nil
		},
	}
}

// Countess: no effect, but must be played when held with the King or a Prince.
func countessCard() *Card {
	return &Card{
		Type:   models.Countess,
		Effect: func(Play) (Result, error) { return advance(), nil },
		MustPlayOver: func(other models.CardType) bool {
			return other == models.King || other == models.Prince
		},
	}
}

// Princess: whoever plays it is out.
func princessCard() *Card {
	return &Card{
		Type: models.Princess,
		Effect: func(p Play) (Result, error) {
			return advance(eliminate(p.Player, nil, models.Princess)), nil
		},
	}
}

// DrawEvents announces a draw publicly and tells the drawer which card it was.
func DrawEvents(p *models.Player, card models.CardType, deckSize int, fromReserve bool) []events.Event {
	return []events.Event{
		events.Broadcast(events.KindDrawCard, events.DrawCardPayload{Player: p.ID, DeckSize: deckSize, FromReserve: fromReserve}),
		events.ToPlayer(p.ID, events.KindDrawCard, events.DrawCardPayload{
			Player: p.ID, Card: models.CardPtr(card), DeckSize: deckSize, FromReserve: fromReserve,
		}),
	}
}
