// internal/game/service.go
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/sirupsen/logrus"
)

// Repository loads and stores game aggregates by room id. LoadGame returns models.ErrRoomNotFound
// for unknown rooms.
type Repository interface {
	LoadGame(ctx context.Context, roomID uuid.UUID) (*models.Game, error)
	SaveGame(ctx context.Context, g *models.Game) error
	DeleteGame(ctx context.Context, roomID uuid.UUID) error
}

// NameLookup resolves display names for a round-start payload.
type NameLookup interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// EventPublisher receives every event batch a room produced, after it was saved.
type EventPublisher interface {
	Publish(ctx context.Context, roomID uuid.UUID, evs []events.Event) error
}

// Service is the entry point for hosts. Every mutating call holds the room's lock across
// load, engine call and save, so actions on one room never interleave.
type Service struct {
	engine    *Engine
	repo      Repository
	locker    Locker
	names     NameLookup
	publisher EventPublisher
	log       logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithLocker replaces the default in-process locker.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithNameLookup(n NameLookup) Option {
	return func(s *Service) { s.names = n }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(engine *Engine, repo Repository, logger logrus.FieldLogger, opts ...Option) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Service{
		engine: engine,
		repo:   repo,
		locker: NewLocalLocker(),
		log:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRoom opens and stores a new room hosted by host.
func (s *Service) CreateRoom(ctx context.Context, name, secret string, host *models.Player) (*models.Game, error) {
	g := s.engine.CreateRoom(name, secret, host)
	if err := s.repo.SaveGame(ctx, g); err != nil {
		return nil, fmt.Errorf("save room %s: %w", g.ID, err)
	}
	return g, nil
}

// DeleteRoom closes a room. Only the host may do so.
func (s *Service) DeleteRoom(ctx context.Context, roomID, requester uuid.UUID) error {
	unlock, err := s.locker.Lock(ctx, roomID)
	if err != nil {
		return fmt.Errorf("lock room %s: %w", roomID, err)
	}
	defer unlock()

	g, err := s.repo.LoadGame(ctx, roomID)
	if err != nil {
		return err
	}
	if g.HostID != requester {
		return models.ErrNotHost
	}
	if err := s.repo.DeleteGame(ctx, roomID); err != nil {
		return fmt.Errorf("delete room %s: %w", roomID, err)
	}
	s.log.WithField("room", roomID).Info("room deleted")
	return nil
}

func (s *Service) JoinRoom(ctx context.Context, roomID uuid.UUID, p *models.Player, secret string) ([]events.Event, error) {
	return s.withRoom(ctx, roomID, "join", func(g *models.Game) ([]events.Event, error) {
		return s.engine.JoinRoom(g, p, secret)
	})
}

func (s *Service) LeaveRoom(ctx context.Context, roomID, playerID uuid.UUID) ([]events.Event, error) {
	return s.withRoom(ctx, roomID, "leave", func(g *models.Game) ([]events.Event, error) {
		return s.engine.LeaveRoom(g, playerID)
	})
}

func (s *Service) Disconnect(ctx context.Context, roomID, playerID uuid.UUID) ([]events.Event, error) {
	return s.withRoom(ctx, roomID, "disconnect", func(g *models.Game) ([]events.Event, error) {
		return s.engine.Disconnect(g, playerID)
	})
}

func (s *Service) Reconnect(ctx context.Context, roomID, playerID uuid.UUID) ([]events.Event, error) {
	return s.withRoom(ctx, roomID, "reconnect", func(g *models.Game) ([]events.Event, error) {
		return s.engine.Reconnect(g, playerID)
	})
}

// StartGame deals the first round, refreshing display names first when a lookup is configured.
func (s *Service) StartGame(ctx context.Context, roomID, hostID uuid.UUID) ([]events.Event, error) {
	return s.withRoom(ctx, roomID, "start", func(g *models.Game) ([]events.Event, error) {
		var names map[uuid.UUID]string
		if s.names != nil && g.State == models.StateWaitingForPlayers {
			var err error
			if names, err = s.names.DisplayNames(ctx, g.PlayerIDs()); err != nil {
				s.log.WithError(err).WithField("room", roomID).Warn("display name lookup failed, keeping seat names")
			}
		}
		return s.engine.StartGame(g, hostID, names)
	})
}

func (s *Service) DrawCard(ctx context.Context, roomID, playerID uuid.UUID) ([]events.Event, error) {
	return s.withRoom(ctx, roomID, "draw", func(g *models.Game) ([]events.Event, error) {
		return s.engine.DrawCard(g, playerID)
	})
}

func (s *Service) PlayCard(ctx context.Context, roomID, playerID uuid.UUID, card models.CardType, target *uuid.UUID, guess *models.CardType) ([]events.Event, error) {
	return s.withRoom(ctx, roomID, "play", func(g *models.Game) ([]events.Event, error) {
		return s.engine.PlayCard(g, playerID, card, target, guess)
	})
}

func (s *Service) SubmitCardChoice(ctx context.Context, roomID, playerID uuid.UUID, keep models.CardType, returns []models.CardType) ([]events.Event, error) {
	return s.withRoom(ctx, roomID, "choose", func(g *models.Game) ([]events.Event, error) {
		return s.engine.SubmitCardChoice(g, playerID, keep, returns)
	})
}

func (s *Service) FinishRound(ctx context.Context, roomID uuid.UUID) ([]events.Event, error) {
	return s.withRoom(ctx, roomID, "finish round", func(g *models.Game) ([]events.Event, error) {
		return s.engine.FinishRound(g)
	})
}

func (s *Service) FinishGame(ctx context.Context, roomID uuid.UUID) ([]events.Event, error) {
	return s.withRoom(ctx, roomID, "finish game", func(g *models.Game) ([]events.Event, error) {
		return s.engine.FinishGame(g)
	})
}

// GetCardRequirements is read-only and does not take the room lock.
func (s *Service) GetCardRequirements(ctx context.Context, roomID, playerID uuid.UUID, card models.CardType) (CardRequirements, error) {
	g, err := s.repo.LoadGame(ctx, roomID)
	if err != nil {
		return CardRequirements{}, err
	}
	return s.engine.GetCardRequirements(g, playerID, card)
}

// View returns the room as seen by viewer, who must be seated in it.
func (s *Service) View(ctx context.Context, roomID, viewer uuid.UUID) (GameView, error) {
	g, err := s.repo.LoadGame(ctx, roomID)
	if err != nil {
		return GameView{}, err
	}
	if _, err := g.FindPlayer(viewer); err != nil {
		return GameView{}, err
	}
	return BuildView(g, viewer), nil
}

// withRoom runs fn against the freshly loaded room under its lock. Nothing is saved or published
// when fn fails. A room left without players is deleted.
func (s *Service) withRoom(ctx context.Context, roomID uuid.UUID, action string, fn func(g *models.Game) ([]events.Event, error)) ([]events.Event, error) {
	log := s.log.WithFields(logrus.Fields{"room": roomID, "action": action})

	unlock, err := s.locker.Lock(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("lock room %s: %w", roomID, err)
	}
	defer unlock()

	g, err := s.repo.LoadGame(ctx, roomID)
	if err != nil {
		if !errors.Is(err, models.ErrRoomNotFound) {
			log.WithError(err).Error("load failed")
		}
		return nil, err
	}

	evs, err := fn(g)
	if err != nil {
		log.WithError(err).Debug("action rejected")
		return nil, err
	}

	if len(g.Players) == 0 {
		if err := s.repo.DeleteGame(ctx, roomID); err != nil {
			return nil, fmt.Errorf("delete empty room %s: %w", roomID, err)
		}
		log.Info("empty room deleted")
	} else {
		g.UpdatedAt = time.Now().UTC()
		if err := s.repo.SaveGame(ctx, g); err != nil {
			log.WithError(err).Error("save failed")
			return nil, fmt.Errorf("save room %s: %w", roomID, err)
		}
	}

	s.publish(ctx, roomID, evs, log)
	return evs, nil
}

// publish forwards events to the action log. Failures are logged, the action already happened.
func (s *Service) publish(ctx context.Context, roomID uuid.UUID, evs []events.Event, log logrus.FieldLogger) {
	if s.publisher == nil || len(evs) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, roomID, evs); err != nil {
		log.WithError(err).WithField("events", eventKinds(evs)).Warn("failed to publish events")
	}
}

// Publishers fans a batch out to every publisher in order, joining their errors.
type Publishers []EventPublisher

func (ps Publishers) Publish(ctx context.Context, roomID uuid.UUID, evs []events.Event) error {
	var errs []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, roomID, evs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
