// internal/historian/historian.go

// Package historian drains the game action queue into durable storage in batches and marks
// rooms abandoned once they go quiet.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/cache"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Source yields raw queued records. Pop returns (nil, nil) when nothing arrived within wait.
type Source interface {
	Pop(ctx context.Context, wait time.Duration) ([]byte, error)
}

// Store persists batches of records.
type Store interface {
	InsertActions(ctx context.Context, records []models.GameActionRecord) error
	MarkAbandoned(ctx context.Context, roomID uuid.UUID) error
}

// RedisQueue pops records from a Redis list with BLPOP.
type RedisQueue struct {
	client *redis.Client
	name   string
}

// NewRedisQueue drains name, or the list the server publishes to when name is empty.
func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	if name == "" {
		name = cache.DefaultQueueName
	}
	return &RedisQueue{client: client, name: name}
}

func (q *RedisQueue) Pop(ctx context.Context, wait time.Duration) ([]byte, error) {
	res, err := q.client.BLPop(ctx, wait, q.name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// res[0] is the list name
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

// Config tunes batching and abandonment.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	Inactivity    time.Duration
	SweepInterval time.Duration
	PopWait       time.Duration
	// RetryBackoff is the first pause after a failed pop. It doubles up to MaxRetryBackoff.
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 500 * time.Millisecond
	}
	if c.Inactivity <= 0 {
		c.Inactivity = 10 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.PopWait <= 0 {
		c.PopWait = 3 * time.Second
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 250 * time.Millisecond
	}
	if c.MaxRetryBackoff < c.RetryBackoff {
		c.MaxRetryBackoff = max(5*time.Second, c.RetryBackoff)
	}
}

// Service moves records from a Source into a Store.
type Service struct {
	source Source
	store  Store
	cfg    Config
	log    logrus.FieldLogger
	now    func() time.Time

	lastActivity sync.Map // uuid.UUID -> time.Time

	batchMu sync.Mutex
	batch   []models.GameActionRecord
}

func NewService(source Source, store Store, cfg Config, logger logrus.FieldLogger) *Service {
	cfg.applyDefaults()
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		source: source,
		store:  store,
		cfg:    cfg,
		log:    logger,
		now:    time.Now,
		batch:  make([]models.GameActionRecord, 0, cfg.BatchSize),
	}
}

// Run blocks until ctx is done, then flushes whatever is still buffered.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("historian started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(gctx) })
	g.Go(func() error { return s.flushLoop(gctx) })
	g.Go(func() error { return s.inactivityLoop(gctx) })
	err := g.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Flush(flushCtx)

	s.log.Info("historian stopped")
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (s *Service) readLoop(ctx context.Context) error {
	backoff := s.cfg.RetryBackoff
	for {
		data, err := s.source.Pop(ctx, s.cfg.PopWait)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.log.WithError(err).WithField("retry_in", backoff).Error("pop action")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, s.cfg.MaxRetryBackoff)
			continue
		}
		backoff = s.cfg.RetryBackoff
		if data == nil {
			continue
		}

		rec, err := decodeRecord(data)
		if err != nil {
			s.log.WithError(err).Warn("dropping invalid action record")
			continue
		}
		s.Track(rec)
		if s.append(rec) {
			s.Flush(ctx)
		}
	}
}

func (s *Service) flushLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

func (s *Service) inactivityLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func decodeRecord(data []byte) (models.GameActionRecord, error) {
	var rec models.GameActionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode action record: %w", err)
	}
	if rec.GameID == uuid.Nil {
		return rec, errors.New("action record has no game id")
	}
	return rec, nil
}

// Track records activity for the record's room. A finished room is no longer watched.
func (s *Service) Track(rec models.GameActionRecord) {
	if rec.ActionType == models.ActionEndGame {
		s.lastActivity.Delete(rec.GameID)
		return
	}
	s.lastActivity.Store(rec.GameID, s.now())
}

// append buffers rec and reports whether the batch is full.
func (s *Service) append(rec models.GameActionRecord) bool {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.batch = append(s.batch, rec)
	return len(s.batch) >= s.cfg.BatchSize
}

// Flush writes the buffered batch. A failed batch is kept and retried on the next flush.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	pending := s.batch
	s.batch = make([]models.GameActionRecord, 0, s.cfg.BatchSize)
	s.batchMu.Unlock()

	if err := s.store.InsertActions(ctx, pending); err != nil {
		s.log.WithError(err).WithField("count", len(pending)).Error("flush actions")
		s.batchMu.Lock()
		s.batch = append(pending, s.batch...)
		s.batchMu.Unlock()
		return
	}
	s.log.WithField("count", len(pending)).Debug("flushed actions")
}

// Pending is the number of buffered records.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

// Sweep marks every room idle for longer than the inactivity timeout as abandoned.
func (s *Service) Sweep(ctx context.Context) {
	now := s.now()
	s.lastActivity.Range(func(key, val any) bool {
		roomID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= s.cfg.Inactivity {
			return true
		}
		if err := s.store.MarkAbandoned(ctx, roomID); err != nil {
			s.log.WithError(err).WithField("room", roomID).Error("mark room abandoned")
			return true
		}
		s.lastActivity.Delete(roomID)
		s.log.WithField("room", roomID).Info("marked room abandoned after inactivity")
		return true
	})
}
