// internal/cache/redis.go

// Package cache holds the Redis-backed pieces shared by the game server and the historian:
// the action log queue and the cross-process room lease.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the historian drains.
const DefaultQueueName = "loveletter_actions"

// Connect opens a client and verifies the server answers.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// ActionPublisher appends every published event to the historian queue. Action indexes are
// allocated per room with INCRBY so concurrent servers never reuse one.
type ActionPublisher struct {
	client *redis.Client
	queue  string
	now    func() time.Time
}

// NewActionPublisher publishes to queue, or DefaultQueueName when queue is empty.
func NewActionPublisher(client *redis.Client, queue string) *ActionPublisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &ActionPublisher{client: client, queue: queue, now: time.Now}
}

func indexKey(roomID uuid.UUID) string {
	return "loveletter:room:" + roomID.String() + ":action_index"
}

// Publish implements game.EventPublisher.
func (p *ActionPublisher) Publish(ctx context.Context, roomID uuid.UUID, evs []events.Event) error {
	if len(evs) == 0 {
		return nil
	}

	last, err := p.client.IncrBy(ctx, indexKey(roomID), int64(len(evs))).Result()
	if err != nil {
		return fmt.Errorf("allocate action index for room %s: %w", roomID, err)
	}
	first := last - int64(len(evs)) + 1

	ts := p.now().UnixMilli()
	values := make([]any, 0, len(evs))
	for i, ev := range evs {
		data, err := EncodeRecord(roomID, first+int64(i), ev, ts)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	if err := p.client.RPush(ctx, p.queue, values...).Err(); err != nil {
		return fmt.Errorf("push %d actions for room %s: %w", len(values), roomID, err)
	}
	return nil
}

// EncodeRecord turns an event into the queued JSON form of a models.GameActionRecord.
func EncodeRecord(roomID uuid.UUID, index int64, ev events.Event, ts int64) ([]byte, error) {
	var payload json.RawMessage
	if ev.Payload != nil {
		raw, err := json.Marshal(ev.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", ev.Kind, err)
		}
		payload = raw
	}

	data, err := json.Marshal(models.GameActionRecord{
		GameID:        roomID,
		ActionIndex:   index,
		RecipientID:   ev.Destination.Player,
		ActionType:    string(ev.Kind),
		ActionPayload: payload,
		Timestamp:     ts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal action record: %w", err)
	}
	return data, nil
}
