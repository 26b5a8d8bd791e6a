// internal/database/user.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/samber/lo"
)

// UserDirectory resolves display names from the users table.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

// EnsureUser inserts u, or refreshes its name and email if the id is already known.
func (d *UserDirectory) EnsureUser(ctx context.Context, u models.User) error {
	q := `
		INSERT INTO users (id, email, username, is_ephemeral)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			username = EXCLUDED.username,
			is_ephemeral = EXCLUDED.is_ephemeral
	`
	err := pgx.BeginTxFunc(ctx, d.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, u.ID, u.Email, u.Username, u.IsEphemeral)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.ID, err)
	}
	return nil
}

// GetUser returns models.ErrPlayerNotFound for an unknown id.
func (d *UserDirectory) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	q := `SELECT id, email, username, is_ephemeral FROM users WHERE id = $1`
	err := d.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.Username, &u.IsEphemeral)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

// DisplayNames implements game.NameLookup. Unknown ids are left out of the result.
func (d *UserDirectory) DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	keys := lo.Map(ids, func(id uuid.UUID, _ int) string { return id.String() })

	rows, err := d.pool.Query(ctx,
		`SELECT id, email, username, is_ephemeral FROM users WHERE id = ANY($1::uuid[])`, keys)
	if err != nil {
		return nil, fmt.Errorf("query display names: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		var u models.User
		err := row.Scan(&u.ID, &u.Email, &u.Username, &u.IsEphemeral)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan display names: %w", err)
	}

	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		if name := u.DisplayName(); name != "" {
			names[u.ID] = name
		}
	}
	return names, nil
}
