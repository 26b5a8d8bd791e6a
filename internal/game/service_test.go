// internal/game/service_test.go
package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	batches map[uuid.UUID][][]events.Event
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, roomID uuid.UUID, evs []events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.batches == nil {
		p.batches = make(map[uuid.UUID][][]events.Event)
	}
	p.batches[roomID] = append(p.batches[roomID], evs)
	return p.err
}

type staticNames map[uuid.UUID]string

func (n staticNames) DisplayNames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if name, ok := n[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func newTestService(opts ...Option) (*Service, *MemoryStore) {
	logger, _ := test.NewNullLogger()
	store := NewMemoryStore()
	return NewService(NewEngine(nil, logger, 7), store, logger, opts...), store
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	host := models.NewPlayer(uuid.New(), "host")
	guest := models.NewPlayer(uuid.New(), "guest")
	svc, store := newTestService(WithPublisher(pub), WithNameLookup(staticNames{guest.ID: "Bob"}))

	g, err := svc.CreateRoom(ctx, "room", "", host)
	require.NoError(t, err)
	_, err = svc.JoinRoom(ctx, g.ID, guest, "")
	require.NoError(t, err)

	evs, err := svc.StartGame(ctx, g.ID, host.ID)
	require.NoError(t, err)
	require.NotEmpty(t, evs)

	stored, err := store.LoadGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateWaitingForDraw, stored.State)
	assert.Equal(t, "Bob", stored.Players[1].Name)
	assert.Len(t, pub.batches[g.ID], 2)

	view, err := svc.View(ctx, g.ID, guest.ID)
	require.NoError(t, err)
	assert.Len(t, view.Players[1].Hand, 1)
	assert.Nil(t, view.Players[0].Hand)

	_, err = svc.View(ctx, g.ID, uuid.New())
	assert.ErrorIs(t, err, models.ErrPlayerNotFound)
}

func TestServiceRejectedActionIsNotSaved(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, store := newTestService(WithPublisher(pub))
	g, ps := seated([]models.CardType{models.Prince}, []models.CardType{models.Guard}, []models.CardType{models.Baron})
	require.NoError(t, store.SaveGame(ctx, g))

	_, err := svc.DrawCard(ctx, g.ID, ps[0].ID)
	require.NoError(t, err)

	_, err = svc.PlayCard(ctx, g.ID, ps[0].ID, models.Prince, &ps[1].ID, nil)
	assert.ErrorIs(t, err, models.ErrEmptyDeck)

	stored, err := store.LoadGame(ctx, g.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.CardType{models.Guard, models.Prince}, stored.Players[0].HoldingCards)
	assert.Empty(t, stored.Players[0].PlayedCards)
	assert.Len(t, pub.batches[g.ID], 1, "only the draw was published")
}

func TestServicePublishFailureDoesNotFailAction(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(WithPublisher(&recordingPublisher{err: errors.New("redis down")}))
	g, ps := seated([]models.CardType{models.Guard, models.Guard}, []models.CardType{models.Spy}, []models.CardType{models.Baron})
	require.NoError(t, store.SaveGame(ctx, g))

	_, err := svc.DrawCard(ctx, g.ID, ps[0].ID)
	assert.NoError(t, err)
}

func TestServiceDeletesEmptyRoom(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	host := models.NewPlayer(uuid.New(), "host")
	g, err := svc.CreateRoom(ctx, "room", "", host)
	require.NoError(t, err)

	_, err = svc.LeaveRoom(ctx, g.ID, host.ID)
	require.NoError(t, err)

	_, err = store.LoadGame(ctx, g.ID)
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
	_, err = svc.DrawCard(ctx, g.ID, host.ID)
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
}

func TestServiceDeleteRoomHostOnly(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	host := models.NewPlayer(uuid.New(), "host")
	g, err := svc.CreateRoom(ctx, "room", "", host)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteRoom(ctx, g.ID, uuid.New()), models.ErrNotHost)
	require.NoError(t, svc.DeleteRoom(ctx, g.ID, host.ID))
	assert.Zero(t, store.Len())
}

func TestServiceSerializesConcurrentJoins(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	host := models.NewPlayer(uuid.New(), "host")
	g, err := svc.CreateRoom(ctx, "room", "", host)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.JoinRoom(ctx, g.ID, models.NewPlayer(uuid.New(), "guest"), "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	full := 0
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, models.ErrRoomFull)
			full++
		}
	}
	assert.Equal(t, 3, full)
	stored, err := store.LoadGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Players, models.MaxPlayers)
}

func TestLocalLockerHonoursContext(t *testing.T) {
	l := NewLocalLocker()
	room := uuid.New()

	unlock, err := l.Lock(context.Background(), room)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, room)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	assert.Zero(t, l.Len())

	unlock, err = l.Lock(context.Background(), room)
	require.NoError(t, err)
	unlock()
}

func TestPublishersFanOut(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("queue down")}
	room := uuid.New()
	evs := []events.Event{events.Broadcast(events.KindTurnWasted, nil)}

	err := Publishers{failing, nil, ok}.Publish(context.Background(), room, evs)
	assert.ErrorContains(t, err, "queue down")
	assert.Len(t, ok.batches[room], 1, "a failing publisher does not starve the others")
	assert.Len(t, failing.batches[room], 1)
}
