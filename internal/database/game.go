// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/samber/lo"
)

// Game row statuses.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// GameRepository stores each room aggregate as a JSONB document in games.state.
type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

func rowStatus(g *models.Game) string {
	switch {
	case g.State == models.StateFinished:
		return StatusCompleted
	case g.State.InProgress():
		return StatusInProgress
	default:
		return StatusWaiting
	}
}

// LoadGame returns models.ErrRoomNotFound for an unknown or abandoned room.
func (r *GameRepository) LoadGame(ctx context.Context, roomID uuid.UUID) (*models.Game, error) {
	var data []byte
	q := `SELECT state FROM games WHERE id = $1 AND status <> $2 AND state IS NOT NULL`
	if err := r.pool.QueryRow(ctx, q, roomID, StatusAbandoned).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRoomNotFound
		}
		return nil, fmt.Errorf("load room %s: %w", roomID, err)
	}

	var g models.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return &g, nil
}

// SaveGame upserts the room. Once the game is finished the final scores land in game_results.
func (r *GameRepository) SaveGame(ctx context.Context, g *models.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", g.ID, err)
	}
	status := rowStatus(g)

	err = pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO games (id, name, status, state, start_time, end_time, updated_at)
			VALUES ($1, $2, $3, $4,
				CASE WHEN $3 <> 'waiting' THEN NOW() END,
				CASE WHEN $3 = 'completed' THEN NOW() END,
				$5)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				status = EXCLUDED.status,
				state = EXCLUDED.state,
				start_time = COALESCE(games.start_time, EXCLUDED.start_time),
				end_time = COALESCE(games.end_time, EXCLUDED.end_time),
				updated_at = EXCLUDED.updated_at
		`
		if _, err := tx.Exec(ctx, upsert, g.ID, g.Name, status, data, g.UpdatedAt); err != nil {
			return err
		}
		if status != StatusCompleted {
			return nil
		}
		return insertResults(ctx, tx, g)
	})
	if err != nil {
		return fmt.Errorf("save room %s: %w", g.ID, err)
	}
	return nil
}

func insertResults(ctx context.Context, tx pgx.Tx, g *models.Game) error {
	winners := lo.Map(g.GameWinners(), func(p *models.Player, _ int) uuid.UUID { return p.ID })
	q := `
		INSERT INTO game_results (game_id, player_id, score, did_win)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id, player_id)
		DO UPDATE SET score = $3, did_win = $4
	`
	batch := &pgx.Batch{}
	for _, p := range g.Players {
		batch.Queue(q, g.ID, p.ID, p.Score, slices.Contains(winners, p.ID))
	}
	return tx.SendBatch(ctx, batch).Close()
}

// DeleteGame removes the room and its results. Deleting an unknown room is not an error.
func (r *GameRepository) DeleteGame(ctx context.Context, roomID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, roomID); err != nil {
		return fmt.Errorf("delete room %s: %w", roomID, err)
	}
	return nil
}

// Results returns the recorded final score per player for a completed room.
func (r *GameRepository) Results(ctx context.Context, roomID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT player_id, score FROM game_results WHERE game_id = $1`, roomID)
	if err != nil {
		return nil, fmt.Errorf("query results for room %s: %w", roomID, err)
	}
	type result struct {
		PlayerID uuid.UUID
		Score    int
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[result])
	if err != nil {
		return nil, fmt.Errorf("scan results for room %s: %w", roomID, err)
	}
	return lo.SliceToMap(list, func(r result) (uuid.UUID, int) { return r.PlayerID, r.Score }), nil
}
