package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"poolpay/internal/user/models"
	id "poolpay/pkg/domain"
	"poolpay/pkg/platform/sentinel"
	txcontext "poolpay/pkg/platform/tx"
)

// PostgresStore persists user aggregates in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	var (
		u   models.User
		uid uuid.UUID
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, total_contributed, confirmed_contributions, updated_at
		FROM users WHERE id = $1
	`, uuid.UUID(userID)).Scan(&uid, &u.TotalContributed, &u.ConfirmedContributions, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = id.UserID(uid)
	return &u, nil
}

// IncrementTotalContributed upserts the aggregate and adds amount atomically.
func (s *PostgresStore) IncrementTotalContributed(ctx context.Context, userID id.UserID, amount int64, now time.Time) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO users (id, total_contributed, confirmed_contributions, updated_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (id) DO UPDATE SET
			total_contributed = users.total_contributed + EXCLUDED.total_contributed,
			confirmed_contributions = users.confirmed_contributions + 1,
			updated_at = EXCLUDED.updated_at
	`, uuid.UUID(userID), amount, now)
	if err != nil {
		return fmt.Errorf("increment user total: %w", err)
	}
	return nil
}
