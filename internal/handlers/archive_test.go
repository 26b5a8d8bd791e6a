// internal/handlers/archive_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/game"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func newMemUsers(known ...models.User) *memUsers {
	m := &memUsers{users: make(map[uuid.UUID]models.User)}
	for _, u := range known {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) EnsureUser(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrPlayerNotFound
	}
	return &u, nil
}

func (m *memUsers) get(id uuid.UUID) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return u, ok
}

type fixedResults map[uuid.UUID]int

func (r fixedResults) Results(context.Context, uuid.UUID) (map[uuid.UUID]int, error) {
	return r, nil
}

type fixedHistory []models.GameActionRecord

func (h fixedHistory) Actions(context.Context, uuid.UUID) ([]models.GameActionRecord, error) {
	return h, nil
}

// createAnonymous creates a room with only the id header set.
func (f *fixture) createAnonymous(t *testing.T, host uuid.UUID) game.GameView {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/rooms", strings.NewReader(`{}`))
	require.NoError(t, err)
	req.Header.Set(HeaderUserID, host.String())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var v game.GameView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCreateRoomRecordsNamedUser(t *testing.T) {
	users := newMemUsers()
	f := newFixture(t, WithUsers(users))
	host := uuid.New()

	resp := f.do(t, http.MethodPost, "/rooms", host, `{}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	u, ok := users.get(host)
	require.True(t, ok)
	assert.Equal(t, "tester", u.Username)
	assert.False(t, u.IsEphemeral)
}

func TestCreateRoomResolvesStoredName(t *testing.T) {
	host := uuid.New()
	users := newMemUsers(models.User{ID: host, Username: "alice"})
	f := newFixture(t, WithUsers(users))

	v := f.createAnonymous(t, host)
	require.Len(t, v.Players, 1)
	assert.Equal(t, "alice", v.Players[0].Name)

	u, _ := users.get(host)
	assert.Equal(t, "alice", u.Username, "a stored name is not overwritten")
}

func TestCreateRoomRecordsAnonymousUser(t *testing.T) {
	users := newMemUsers()
	f := newFixture(t, WithUsers(users))
	host := uuid.New()

	v := f.createAnonymous(t, host)
	assert.Equal(t, "Player "+host.String()[:8], v.Players[0].Name)

	u, ok := users.get(host)
	require.True(t, ok)
	assert.True(t, u.IsEphemeral)
}

func TestWebsocketJoinRecordsUser(t *testing.T) {
	users := newMemUsers()
	f := newFixture(t, WithUsers(users))
	host := models.NewPlayer(uuid.New(), "host")
	g, err := f.svc.CreateRoom(context.Background(), "room", "", host)
	require.NoError(t, err)

	guest := uuid.New()
	conn := f.dial(t, g.ID, guest)
	readUntil(t, conn, "SyncState")

	u, ok := users.get(guest)
	require.True(t, ok)
	assert.Equal(t, "ws", u.Username)
}

func TestResultsRoute(t *testing.T) {
	f0 := newFixture(t)
	g, host, _ := startedRoom(t, f0)
	resp := f0.do(t, http.MethodGet, "/rooms/"+g.ID.String()+"/results", host.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "not mounted without a result source")

	results := fixedResults{}
	f := newFixture(t, WithResults(results))
	g, host, guest := startedRoom(t, f)
	path := "/rooms/" + g.ID.String() + "/results"

	resp = f.do(t, http.MethodGet, path, host.ID, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "game_not_finished", decode[ErrorFrame](t, resp).Code)

	_, err := f.svc.FinishGame(context.Background(), g.ID)
	require.NoError(t, err)
	results[host.ID] = 3
	results[guest.ID] = 1

	resp = f.do(t, http.MethodGet, path, guest.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[resultsResponse](t, resp)
	assert.Equal(t, map[uuid.UUID]int{host.ID: 3, guest.ID: 1}, body.Scores)
	assert.Equal(t, []uuid.UUID{host.ID}, body.Winners)

	resp = f.do(t, http.MethodGet, path, uuid.New(), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "only members see results")
}

func TestActionsRouteHidesOthersPrivateRecords(t *testing.T) {
	history := fixedHistory{}
	f := newFixture(t, WithHistory(&history))
	g, host, guest := startedRoom(t, f)
	history = fixedHistory{
		{GameID: g.ID, ActionIndex: 1, ActionType: "RoundStarted"},
		{GameID: g.ID, ActionIndex: 2, RecipientID: host.ID, ActionType: "DrawCard"},
		{GameID: g.ID, ActionIndex: 3, RecipientID: guest.ID, ActionType: "DrawCard"},
	}

	resp := f.do(t, http.MethodGet, "/rooms/"+g.ID.String()+"/actions", guest.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recs := decode[[]models.GameActionRecord](t, resp)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(1), recs[0].ActionIndex)
	assert.Equal(t, int64(3), recs[1].ActionIndex)
}
