// internal/handlers/hub.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/sirupsen/logrus"
)

const clientBuffer = 64

// Client is one live connection. The write pump drains Out.
type Client struct {
	PlayerID uuid.UUID
	RoomID   uuid.UUID
	Out      chan []byte
}

func newClient(roomID, playerID uuid.UUID) *Client {
	return &Client{PlayerID: playerID, RoomID: roomID, Out: make(chan []byte, clientBuffer)}
}

// Hub tracks connected clients per room and routes events by destination. It implements
// game.EventPublisher.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[uuid.UUID]*Client
	log   logrus.FieldLogger
}

func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[uuid.UUID]*Client), log: logger}
}

// Register attaches a client for the player, replacing any earlier connection, whose Out is
// closed. The returned release detaches the client and reports whether it was still current.
func (h *Hub) Register(roomID, playerID uuid.UUID) (*Client, func() bool) {
	c := newClient(roomID, playerID)

	h.mu.Lock()
	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[uuid.UUID]*Client)
		h.rooms[roomID] = room
	}
	if old, ok := room[playerID]; ok {
		close(old.Out)
	}
	room[playerID] = c
	h.mu.Unlock()

	var once sync.Once
	current := false
	return c, func() bool {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			room := h.rooms[roomID]
			if room[playerID] != c {
				return
			}
			current = true
			delete(room, playerID)
			close(c.Out)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		})
		return current
	}
}

// Publish delivers each event to the clients allowed to see it.
func (h *Hub) Publish(_ context.Context, roomID uuid.UUID, evs []events.Event) error {
	for _, ev := range evs {
		data, err := events.Marshal(ev)
		if err != nil {
			return err
		}
		h.mu.RLock()
		for id, c := range h.rooms[roomID] {
			if ev.For(id) {
				h.enqueue(c, data)
			}
		}
		h.mu.RUnlock()
	}
	return nil
}

// Send delivers a direct reply to one player. Unknown players are ignored.
func (h *Hub) Send(roomID, playerID uuid.UUID, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.WithError(err).Error("marshal direct message")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.rooms[roomID][playerID]; ok {
		h.enqueue(c, data)
	}
}

// enqueue never blocks; a client that cannot keep up misses the frame and must resync.
// Callers hold h.mu so Out cannot be closed concurrently.
func (h *Hub) enqueue(c *Client, data []byte) {
	select {
	case c.Out <- data:
	default:
		h.log.WithFields(logrus.Fields{"room": c.RoomID, "player": c.PlayerID}).Warn("client buffer full, dropping frame")
	}
}
