// internal/handlers/hub_test.go
package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(c *Client) []string {
	var kinds []string
	for {
		select {
		case data, ok := <-c.Out:
			if !ok {
				return kinds
			}
			var frame struct {
				Type string `json:"type"`
			}
			json.Unmarshal(data, &frame)
			kinds = append(kinds, frame.Type)
		default:
			return kinds
		}
	}
}

func TestHubRoutesByDestination(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger)
	room := uuid.New()
	alice, bob := uuid.New(), uuid.New()

	ca, _ := hub.Register(room, alice)
	cb, _ := hub.Register(room, bob)
	other, _ := hub.Register(uuid.New(), alice)

	require.NoError(t, hub.Publish(context.Background(), room, []events.Event{
		events.Broadcast(events.KindPeekCard, events.PeekCardPayload{Player: alice, Target: bob}),
		events.ToPlayer(alice, events.KindShowCard, events.ShowCardPayload{Target: bob, Card: models.Baron}),
	}))

	assert.Equal(t, []string{"PeekCard", "ShowCard"}, drain(ca))
	assert.Equal(t, []string{"PeekCard"}, drain(cb))
	assert.Empty(t, drain(other), "other rooms see nothing")
}

func TestHubReplacesConnection(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger)
	room, player := uuid.New(), uuid.New()

	first, releaseFirst := hub.Register(room, player)
	second, releaseSecond := hub.Register(room, player)

	_, open := <-first.Out
	assert.False(t, open, "the replaced client is closed")
	assert.False(t, releaseFirst(), "a replaced client is no longer current")

	hub.Send(room, player, reply{Type: "pong"})
	assert.Equal(t, []string{"pong"}, drain(second))

	assert.True(t, releaseSecond())
	assert.False(t, releaseSecond(), "release is idempotent")
	assert.NotContains(t, hub.rooms, room)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	logger, hook := test.NewNullLogger()
	hub := NewHub(logger)
	room, player := uuid.New(), uuid.New()
	c, release := hub.Register(room, player)
	defer release()

	for i := 0; i < clientBuffer+1; i++ {
		hub.Send(room, player, reply{Type: "pong"})
	}
	assert.Len(t, c.Out, clientBuffer)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "client buffer full, dropping frame", hook.LastEntry().Message)
}
