// internal/database/database_test.go
package database

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool needs a disposable Postgres in DATABASE_URL.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	require.NoError(t, Migrate(ctx, pool), "migrations are idempotent")
	return pool
}

func TestGameRepositoryRoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewGameRepository(pool)

	host := models.NewPlayer(uuid.New(), "host")
	g := models.NewGame("room", "", host)
	t.Cleanup(func() { repo.DeleteGame(context.Background(), g.ID) })

	_, err := repo.LoadGame(ctx, g.ID)
	assert.ErrorIs(t, err, models.ErrRoomNotFound)

	require.NoError(t, repo.SaveGame(ctx, g))
	guest := models.NewPlayer(uuid.New(), "guest")
	require.NoError(t, g.AddPlayer(guest))
	g.Deck = []models.CardType{models.Guard, models.Princess}
	require.NoError(t, repo.SaveGame(ctx, g))

	loaded, err := repo.LoadGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, loaded.ID)
	assert.Equal(t, g.Deck, loaded.Deck)
	require.Len(t, loaded.Players, 2)
	assert.Equal(t, "guest", loaded.Players[1].Name)

	require.NoError(t, repo.DeleteGame(ctx, g.ID))
	_, err = repo.LoadGame(ctx, g.ID)
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
}

func TestGameRepositoryRecordsResults(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewGameRepository(pool)

	a := models.NewPlayer(uuid.New(), "a")
	b := models.NewPlayer(uuid.New(), "b")
	g := models.NewGame("room", "", a)
	require.NoError(t, g.AddPlayer(b))
	t.Cleanup(func() { repo.DeleteGame(context.Background(), g.ID) })

	a.Score, b.Score = 7, 3
	g.State = models.StateFinished
	require.NoError(t, repo.SaveGame(ctx, g))
	require.NoError(t, repo.SaveGame(ctx, g), "saving a finished room twice keeps one result per player")

	results, err := repo.Results(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int{a.ID: 7, b.ID: 3}, results)

	var won bool
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT did_win FROM game_results WHERE game_id = $1 AND player_id = $2`, g.ID, a.ID).Scan(&won))
	assert.True(t, won)
}

func TestUserDirectoryDisplayNames(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	dir := NewUserDirectory(pool)

	named := models.User{ID: uuid.New(), Username: "alice"}
	mailOnly := models.User{ID: uuid.New(), Email: "bob@example.com"}
	require.NoError(t, dir.EnsureUser(ctx, named))
	require.NoError(t, dir.EnsureUser(ctx, mailOnly))
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM users WHERE id = ANY($1::uuid[])`,
			[]string{named.ID.String(), mailOnly.ID.String()})
	})

	names, err := dir.DisplayNames(ctx, []uuid.UUID{named.ID, mailOnly.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{named.ID: "alice", mailOnly.ID: "bob@example.com"}, names)

	_, err = dir.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrPlayerNotFound)
}

func TestActionLogInsertAndComplete(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewGameRepository(pool)
	log := NewActionLog(pool)

	host := models.NewPlayer(uuid.New(), "host")
	g := models.NewGame("room", "", host)
	g.State = models.StateWaitingForDraw
	require.NoError(t, repo.SaveGame(ctx, g))
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM game_actions WHERE game_id = $1`, g.ID)
		repo.DeleteGame(context.Background(), g.ID)
	})

	now := time.Now().UnixMilli()
	records := []models.GameActionRecord{
		{GameID: g.ID, ActionIndex: 1, ActionType: "NextTurn", ActionPayload: json.RawMessage(`{"round":1}`), Timestamp: now},
		{GameID: g.ID, ActionIndex: 2, RecipientID: host.ID, ActionType: "DrawCard", Timestamp: now},
		{GameID: g.ID, ActionIndex: 3, ActionType: models.ActionEndGame, Timestamp: now},
	}
	require.NoError(t, log.InsertActions(ctx, records))
	require.NoError(t, log.InsertActions(ctx, records[:1]), "replays are ignored")

	stored, err := log.Actions(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.False(t, stored[0].IsPrivate())
	assert.JSONEq(t, `{"round":1}`, string(stored[0].ActionPayload))
	assert.Equal(t, host.ID, stored[1].RecipientID)

	var status string
	require.NoError(t, pool.QueryRow(ctx, `SELECT status FROM games WHERE id = $1`, g.ID).Scan(&status))
	assert.Equal(t, StatusCompleted, status)

	require.NoError(t, log.MarkAbandoned(ctx, g.ID))
	require.NoError(t, pool.QueryRow(ctx, `SELECT status FROM games WHERE id = $1`, g.ID).Scan(&status))
	assert.Equal(t, StatusCompleted, status, "completed rooms stay completed")
}
