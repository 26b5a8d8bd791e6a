// internal/game/engine.go

// Package game runs the turn and round state machine of a room on top of the card catalog.
// Engine is pure: it mutates the aggregate it is handed and returns the ordered events.
// Service adds the per-room lease, the repository round trip and event publishing.
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/cards"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/sirupsen/logrus"
)

// Engine applies player actions to a game. One Engine serves every room.
type Engine struct {
	catalog *cards.Catalog
	log     logrus.FieldLogger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine builds an engine. A zero seed picks one from the clock.
func NewEngine(catalog *cards.Catalog, logger logrus.FieldLogger, seed int64) *Engine {
	if catalog == nil {
		catalog = cards.Standard()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		catalog: catalog,
		log:     logger,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (e *Engine) shuffle(g *models.Game) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g.ShuffleDeck(e.rng)
}

func (e *Engine) logFor(g *models.Game) logrus.FieldLogger {
	return e.log.WithFields(logrus.Fields{"room": g.ID, "round": g.Round})
}

// StartGame deals the first round. Only the host may start, with 2-6 seated players.
// names, when non-nil, refreshes player display names before the round-start payload is built.
func (e *Engine) StartGame(g *models.Game, hostID uuid.UUID, names map[uuid.UUID]string) ([]events.Event, error) {
	if g.State == models.StateFinished {
		return nil, models.ErrGameFinished
	}
	if g.State != models.StateWaitingForPlayers {
		return nil, models.ErrGameAlreadyStarted
	}
	if g.HostID != hostID {
		return nil, models.ErrNotHost
	}
	tokens, err := models.MaxTokensFor(len(g.Players))
	if err != nil {
		return nil, fmt.Errorf("start game with %d players: %w", len(g.Players), err)
	}
	for _, p := range g.Players {
		if name, ok := names[p.ID]; ok && name != "" {
			p.Name = name
		}
		p.Score = 0
	}
	g.MaxTokens = tokens
	g.Round = 0
	g.CurrentPlayerIndex = 0

	evs, err := e.StartNewRound(g, 0)
	if err != nil {
		return nil, err
	}
	e.logFor(g).WithField("players", len(g.Players)).Info("game started")
	return evs, nil
}

// DrawCard hands the next card to the current player.
func (e *Engine) DrawCard(g *models.Game, playerID uuid.UUID) ([]events.Event, error) {
	p, err := e.turnPlayer(g, playerID, "draw", models.StateWaitingForDraw)
	if err != nil {
		return nil, err
	}
	card, err := g.DrawCard()
	if err != nil {
		return nil, fmt.Errorf("draw for %s: %w", p.ID, err)
	}
	p.HandCard(card)
	if err := g.TransitionTo(models.StateWaitingForPlay); err != nil {
		return nil, err
	}
	return cards.DrawEvents(p, card, len(g.Deck), false), nil
}

// PlayCard resolves card from the current player's hand. On an effect failure the card goes
// back to the hand and the error is returned; a protected target only wastes the turn.
func (e *Engine) PlayCard(g *models.Game, playerID uuid.UUID, card models.CardType, targetID *uuid.UUID, guess *models.CardType) ([]events.Event, error) {
	p, err := e.turnPlayer(g, playerID, "play", models.StateWaitingForPlay)
	if err != nil {
		return nil, err
	}
	if g.AwaitingChoice {
		return nil, models.ErrChoicePending
	}
	if _, err := e.catalog.Lookup(card); err != nil {
		return nil, err
	}
	if !p.HasCard(card) {
		return nil, fmt.Errorf("%w: %s", models.ErrCardNotHeld, card)
	}
	if required, ok := e.catalog.MandatoryCard(p.HoldingCards, card); ok {
		return nil, &models.MandatoryPlayError{Attempted: card, Required: required}
	}

	var target *models.Player
	if targetID != nil {
		if target, err = g.FindPlayer(*targetID); err != nil {
			return nil, fmt.Errorf("target %s: %w", *targetID, err)
		}
	}

	p.PlayCard(card)
	res, err := e.catalog.Resolve(cards.Play{Game: g, Player: p, Card: card, Target: target, TargetCard: guess})
	if err != nil {
		p.RevertPlayCard(card)
		return nil, err
	}

	played := events.PlayCardPayload{Player: p.ID, Card: card, TargetCard: guess}
	if target != nil {
		played.Target = &target.ID
	}
	evs := append([]events.Event{events.Broadcast(events.KindPlayCard, played)}, res.Events...)

	log := e.logFor(g).WithFields(logrus.Fields{"player": p.ID, "card": card})
	if res.Outcome == cards.OutcomeTargetProtected {
		log.WithField("target", target.ID).Debug("turn wasted on untargetable player")
	} else {
		log.Debug("card played")
	}

	if !res.AutoAdvance {
		g.AwaitingChoice = true
		return evs, nil
	}
	more, err := e.endTurn(g)
	if err != nil {
		return nil, err
	}
	return append(evs, more...), nil
}

// NextPlayer passes the turn to the next seated player still in the round and lifts that
// player's protection.
func (e *Engine) NextPlayer(g *models.Game) ([]events.Event, error) {
	if g.State == models.StateFinished {
		return nil, models.ErrGameFinished
	}
	n := len(g.Players)
	for step := 1; step <= n; step++ {
		i := (g.CurrentPlayerIndex + step) % n
		p := g.Players[i]
		if !p.IsInRound() {
			continue
		}
		g.CurrentPlayerIndex = i
		if p.IsProtected() {
			_ = p.SetProtection(false)
		}
		if err := g.TransitionTo(models.StateWaitingForDraw); err != nil {
			return nil, err
		}
		return []events.Event{events.Broadcast(events.KindNextTurn, events.NextTurnPayload{Player: p.ID, Round: g.Round})}, nil
	}
	return nil, fmt.Errorf("%w: no player left in round", models.ErrInvalidGameState)
}

// endTurn closes the round when it is over, otherwise moves to the next player.
func (e *Engine) endTurn(g *models.Game) ([]events.Event, error) {
	if g.IsRoundOver() {
		return e.FinishRound(g)
	}
	return e.NextPlayer(g)
}

// turnPlayer checks that the game is running in state want and that playerID holds the turn.
func (e *Engine) turnPlayer(g *models.Game, playerID uuid.UUID, action string, want models.GameState) (*models.Player, error) {
	switch g.State {
	case models.StateFinished:
		return nil, models.ErrGameFinished
	case models.StateWaitingForPlayers:
		return nil, models.ErrGameNotStarted
	}
	p, err := g.FindPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if g.State != want {
		return nil, &models.StateError{Action: action, State: g.State}
	}
	if !g.IsCurrentPlayer(playerID) {
		return nil, models.ErrNotPlayersTurn
	}
	return p, nil
}
