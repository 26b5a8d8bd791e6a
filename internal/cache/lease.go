// internal/cache/lease.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	DefaultLeaseTTL   = 5 * time.Second
	defaultRetryEvery = 25 * time.Millisecond
)

// releaseScript deletes the lease only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes room mutations across server processes with a SET NX PX lease.
// A lease that outlives its TTL is lost; TTL must exceed the slowest load/save cycle.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	log    logrus.FieldLogger
}

// NewRedisLocker returns a locker whose leases expire after ttl (DefaultLeaseTTL if zero).
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisLocker{client: client, ttl: ttl, retry: defaultRetryEvery, log: logger}
}

func leaseKey(roomID uuid.UUID) string {
	return "loveletter:room:" + roomID.String() + ":lease"
}

// Lock implements game.Locker. It retries until the lease is free or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, roomID uuid.UUID) (func(), error) {
	key := leaseKey(roomID)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("acquire lease %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's ctx may already be cancelled; release must still go out
			rctx, cancel := context.WithTimeout(context.Background(), l.ttl)
			defer cancel()
			err := releaseScript.Run(rctx, l.client, []string{key}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) {
				l.log.WithError(err).WithField("room", roomID).Warn("failed to release room lease")
			}
		})
	}, nil
}
