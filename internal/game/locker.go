// internal/game/locker.go
package game

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Locker serializes load, mutate and save for one room. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, roomID uuid.UUID) (func(), error)
}

// LocalLocker is an in-process Locker. Waiting for a busy room honours ctx cancellation.
type LocalLocker struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*roomLock
}

type roomLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{rooms: make(map[uuid.UUID]*roomLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, roomID uuid.UUID) (func(), error) {
	l.mu.Lock()
	rl, ok := l.rooms[roomID]
	if !ok {
		rl = &roomLock{sem: make(chan struct{}, 1)}
		l.rooms[roomID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	select {
	case rl.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(roomID, rl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-rl.sem
			l.release(roomID, rl)
		})
	}, nil
}

// release drops one reference and forgets the room once nobody holds or waits for it.
func (l *LocalLocker) release(roomID uuid.UUID, rl *roomLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl.refs--
	if rl.refs == 0 {
		delete(l.rooms, roomID)
	}
}

// Len reports how many rooms are currently held or waited on.
func (l *LocalLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}
