package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"poolpay/internal/platform/postgres"
	"poolpay/internal/pool/models"
	id "poolpay/pkg/domain"
	"poolpay/pkg/platform/sentinel"
	txcontext "poolpay/pkg/platform/tx"
)

// PostgresStore persists pools in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const poolColumns = `id, creator_id, title, goal, currency, capacity, raised_amount, filled_slots, status, deadline, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPool(row rowScanner) (*models.Pool, error) {
	var (
		p         models.Pool
		poolID    uuid.UUID
		creatorID uuid.UUID
		status    string
	)
	if err := row.Scan(&poolID, &creatorID, &p.Title, &p.Goal, &p.Currency, &p.Capacity,
		&p.RaisedAmount, &p.FilledSlots, &status, &p.Deadline, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.PoolID(poolID)
	p.CreatorID = id.UserID(creatorID)
	p.Status = models.Status(status)
	return &p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Pool) error {
	query := `
		INSERT INTO pools (` + poolColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(p.ID), uuid.UUID(p.CreatorID), p.Title, p.Goal, p.Currency, p.Capacity,
		p.RaisedAmount, p.FilledSlots, string(p.Status), p.Deadline, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert pool: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, poolID id.PoolID) (*models.Pool, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE id = $1`
	p, err := scanPool(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(poolID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find pool: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, poolIDs []id.PoolID) (map[id.PoolID]*models.Pool, error) {
	out := make(map[id.PoolID]*models.Pool, len(poolIDs))
	if len(poolIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(poolIDs))
	for i, pid := range poolIDs {
		ids[i] = pid.String()
	}
	query := `SELECT ` + poolColumns + ` FROM pools WHERE id = ANY($1::uuid[])`
	rows, err := s.execer(ctx).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find pools: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pools: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListByCreator(ctx context.Context, creatorID id.UserID) ([]*models.Pool, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE creator_id = $1 ORDER BY created_at DESC`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(creatorID))
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()
	var out []*models.Pool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pools: %w", err)
	}
	return out, nil
}

// LockForReservation reads the pool with a row lock held until the
// surrounding transaction ends. Must be called inside RunInTx.
func (s *PostgresStore) LockForReservation(ctx context.Context, poolID id.PoolID) (*models.Pool, error) {
	if _, ok := txcontext.From(ctx); !ok {
		return nil, fmt.Errorf("lock pool: %w", sentinel.ErrInvalidState)
	}
	query := `SELECT ` + poolColumns + ` FROM pools WHERE id = $1 FOR UPDATE`
	p, err := scanPool(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(poolID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock pool: %w", err)
	}
	return p, nil
}

// ApplyFundingAtomic performs the authoritative check-and-increment in one
// statement. Zero rows means either the pool is missing or the slots do not fit.
func (s *PostgresStore) ApplyFundingAtomic(ctx context.Context, poolID id.PoolID, amount int64, slots int, now time.Time) (*models.Pool, error) {
	// Out-of-range slots would overflow the integer column before the guard runs.
	if slots < 1 || slots > models.MaxCapacity || amount <= 0 {
		return nil, sentinel.ErrCapacityExceeded
	}
	query := `
		UPDATE pools
		SET raised_amount = raised_amount + $2,
			filled_slots = filled_slots + $3,
			status = CASE
				WHEN status = 'active' AND filled_slots + $3 = capacity THEN 'completed'
				ELSE status
			END,
			updated_at = $4
		WHERE id = $1 AND $3 <= capacity - filled_slots
		RETURNING ` + poolColumns
	p, err := scanPool(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(poolID), amount, slots, now))
	if err == nil {
		return p, nil
	}
	if postgres.IsCheckViolation(err, "pools_filled_within_capacity") {
		return nil, sentinel.ErrCapacityExceeded
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("apply funding: %w", err)
	}

	var exists bool
	if err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pools WHERE id = $1)`, uuid.UUID(poolID),
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check pool exists: %w", err)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return nil, sentinel.ErrCapacityExceeded
}

// Cancel moves a pending or active pool to cancelled. Counters are untouched.
func (s *PostgresStore) Cancel(ctx context.Context, poolID id.PoolID, now time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE pools SET status = 'cancelled', updated_at = $2
		WHERE id = $1 AND status IN ('pending', 'active')
	`, uuid.UUID(poolID), now)
	if err != nil {
		return fmt.Errorf("cancel pool: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel pool rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := s.FindByID(ctx, poolID); err != nil {
		return err
	}
	return sentinel.ErrInvalidState
}
