// internal/game/game_store.go
package game

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/models"
)

// MemoryStore keeps games in process. It stores and hands out deep copies so a failed action
// never leaks half-applied changes into the stored game.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*models.Game
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[uuid.UUID]*models.Game),
	}
}

func (s *MemoryStore) LoadGame(_ context.Context, roomID uuid.UUID) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[roomID]
	if !ok {
		return nil, models.ErrRoomNotFound
	}
	return g.Clone(), nil
}

func (s *MemoryStore) SaveGame(_ context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g.Clone()
	return nil
}

func (s *MemoryStore) DeleteGame(_ context.Context, roomID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, roomID)
	return nil
}

// Len returns the number of stored rooms.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
