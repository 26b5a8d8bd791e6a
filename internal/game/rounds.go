// internal/game/rounds.go
package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/samber/lo"
)

// StartNewRound shuffles a fresh deck, sets the reserved card aside and deals one card to every
// player who has not abandoned the game. The turn starts at seat starter, or the next seat in the round.
func (e *Engine) StartNewRound(g *models.Game, starter int) ([]events.Event, error) {
	if g.State == models.StateFinished {
		return nil, models.ErrGameFinished
	}
	g.Round++
	g.AwaitingChoice = false
	for _, p := range g.Players {
		p.ResetForRound()
	}
	g.InitializeDeck()
	e.shuffle(g)
	if err := g.SetAsideReservedCard(); err != nil {
		return nil, fmt.Errorf("set aside reserved card: %w", err)
	}

	var dealt []events.Event
	for _, p := range g.Players {
		if p.Status == models.StatusAbandoned {
			continue
		}
		card, err := g.DrawCard()
		if err != nil {
			return nil, fmt.Errorf("deal to %s: %w", p.ID, err)
		}
		p.HandCard(card)
		dealt = append(dealt, events.ToPlayer(p.ID, events.KindDrawCard, events.DrawCardPayload{
			Player:   p.ID,
			Card:     models.CardPtr(card),
			DeckSize: len(g.Deck),
		}))
	}

	first, ok := seatFrom(g, starter)
	if !ok {
		return nil, fmt.Errorf("%w: nobody to deal to", models.ErrInvalidGameState)
	}
	g.CurrentPlayerIndex = first
	if err := g.TransitionTo(models.StateWaitingForDraw); err != nil {
		return nil, err
	}

	evs := []events.Event{events.Broadcast(events.KindRoundStarted, events.RoundStartedPayload{
		Round:     g.Round,
		MaxTokens: g.MaxTokens,
		DeckSize:  len(g.Deck),
		Players:   lo.Map(g.Players, func(p *models.Player, _ int) events.PlayerSummary { return events.Summarize(p) }),
	})}
	evs = append(evs, dealt...)
	evs = append(evs, events.Broadcast(events.KindNextTurn, events.NextTurnPayload{
		Player: g.Players[first].ID,
		Round:  g.Round,
	}))
	e.logFor(g).WithField("starter", g.Players[first].ID).Debug("round started")
	return evs, nil
}

// FinishRound scores a finished round: one token per round winner plus card bonuses. It then
// deals the next round, or finishes the game once someone reached the token threshold.
func (e *Engine) FinishRound(g *models.Game) ([]events.Event, error) {
	if g.State == models.StateFinished {
		return nil, models.ErrGameFinished
	}
	if !g.State.InProgress() {
		return nil, &models.StateError{Action: "finish round", State: g.State}
	}
	if !g.IsRoundOver() {
		return nil, models.ErrRoundNotOver
	}

	winners := g.RoundWinners()
	hands := make(map[uuid.UUID][]models.CardType)
	for _, p := range g.InRoundPlayers() {
		hands[p.ID] = append([]models.CardType(nil), p.HoldingCards...)
	}
	for _, w := range winners {
		w.Score++
	}

	var bonusEvents []events.Event
	for _, b := range e.catalog.Bonuses(g) {
		for _, p := range b.Players {
			p.Score++
		}
		bonusEvents = append(bonusEvents, events.Broadcast(events.KindBonusPoints, events.BonusPointsPayload{
			Card:    b.Card,
			Players: playerIDs(b.Players),
		}))
	}

	evs := []events.Event{events.Broadcast(events.KindRoundWinners, events.RoundWinnersPayload{
		Round:   g.Round,
		Winners: playerIDs(winners),
		Hands:   hands,
		Scores:  g.Scores(),
	})}
	evs = append(evs, bonusEvents...)
	e.logFor(g).WithField("winners", playerIDs(winners)).Info("round finished")

	if g.IsGameOver() || g.ContenderCount() < models.MinPlayers {
		more, err := e.FinishGame(g)
		if err != nil {
			return nil, err
		}
		return append(evs, more...), nil
	}

	starter := g.CurrentPlayerIndex
	if len(winners) > 0 {
		starter = g.PlayerIndex(winners[0].ID)
	}
	more, err := e.StartNewRound(g, starter)
	if err != nil {
		return nil, err
	}
	return append(evs, more...), nil
}

// FinishGame ends the game for good and announces the winners.
func (e *Engine) FinishGame(g *models.Game) ([]events.Event, error) {
	if g.State == models.StateFinished {
		return nil, models.ErrGameFinished
	}
	if err := g.TransitionTo(models.StateFinished); err != nil {
		return nil, err
	}
	g.AwaitingChoice = false
	winners := g.GameWinners()
	e.logFor(g).WithField("winners", playerIDs(winners)).Info("game finished")
	return []events.Event{events.Broadcast(events.KindGameOver, events.GameOverPayload{
		Winners: playerIDs(winners),
		Scores:  g.Scores(),
	})}, nil
}

// seatFrom returns the first seat at or after start whose player is still in the round.
func seatFrom(g *models.Game, start int) (int, bool) {
	n := len(g.Players)
	if n == 0 {
		return 0, false
	}
	start = ((start % n) + n) % n
	for step := 0; step < n; step++ {
		i := (start + step) % n
		if g.Players[i].IsInRound() {
			return i, true
		}
	}
	return 0, false
}

func playerIDs(ps []*models.Player) []uuid.UUID {
	return lo.Map(ps, func(p *models.Player, _ int) uuid.UUID { return p.ID })
}
