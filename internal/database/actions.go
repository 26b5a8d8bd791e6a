// internal/database/actions.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/loveletter/internal/models"
)

// ActionLog writes the historian's batches into game_actions.
type ActionLog struct {
	pool *pgxpool.Pool
}

func NewActionLog(pool *pgxpool.Pool) *ActionLog {
	return &ActionLog{pool: pool}
}

// InsertActions stores records in one transaction. Replayed records are ignored, and a
// GameOver record marks its room completed.
func (l *ActionLog) InsertActions(ctx context.Context, records []models.GameActionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return pgx.BeginTxFunc(ctx, l.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertActionTx(ctx context.Context, tx pgx.Tx, rec models.GameActionRecord) error {
	var recipient *uuid.UUID
	if rec.IsPrivate() {
		recipient = &rec.RecipientID
	}
	var payload []byte
	if len(rec.ActionPayload) > 0 {
		payload = rec.ActionPayload
	}

	q := `
		INSERT INTO game_actions (game_id, action_index, recipient_id, action_type, action_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	at := time.UnixMilli(rec.Timestamp).UTC()
	if _, err := tx.Exec(ctx, q, rec.GameID, rec.ActionIndex, recipient, rec.ActionType, payload, at); err != nil {
		return fmt.Errorf("insert action %d for room %s: %w", rec.ActionIndex, rec.GameID, err)
	}

	if rec.ActionType == models.ActionEndGame {
		upd := `UPDATE games SET status = $2, end_time = COALESCE(end_time, $3) WHERE id = $1`
		if _, err := tx.Exec(ctx, upd, rec.GameID, StatusCompleted, at); err != nil {
			return fmt.Errorf("complete room %s: %w", rec.GameID, err)
		}
	}
	return nil
}

// MarkAbandoned flags a room that stopped producing actions before it finished.
func (l *ActionLog) MarkAbandoned(ctx context.Context, roomID uuid.UUID) error {
	q := `UPDATE games SET status = $2, end_time = NOW() WHERE id = $1 AND status IN ($3, $4)`
	if _, err := l.pool.Exec(ctx, q, roomID, StatusAbandoned, StatusWaiting, StatusInProgress); err != nil {
		return fmt.Errorf("mark room %s abandoned: %w", roomID, err)
	}
	return nil
}

// Actions returns the logged actions of a room in order.
func (l *ActionLog) Actions(ctx context.Context, roomID uuid.UUID) ([]models.GameActionRecord, error) {
	q := `
		SELECT game_id, action_index, COALESCE(recipient_id, '00000000-0000-0000-0000-000000000000'::uuid),
			action_type, action_payload, created_at
		FROM game_actions WHERE game_id = $1 ORDER BY action_index
	`
	rows, err := l.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, fmt.Errorf("query actions for room %s: %w", roomID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.GameActionRecord, error) {
		var (
			rec     models.GameActionRecord
			payload []byte
			at      time.Time
		)
		err := row.Scan(&rec.GameID, &rec.ActionIndex, &rec.RecipientID, &rec.ActionType, &payload, &at)
		rec.ActionPayload = payload
		rec.Timestamp = at.UnixMilli()
		return rec, err
	})
}
