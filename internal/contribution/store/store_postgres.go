package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"poolpay/internal/contribution/models"
	"poolpay/internal/platform/postgres"
	id "poolpay/pkg/domain"
	"poolpay/pkg/platform/sentinel"
	txcontext "poolpay/pkg/platform/tx"
)

// PostgresStore persists contributions in PostgreSQL. Status transitions are
// conditional updates keyed on the current status.
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

const (
	contributionColumns = `id, reference, pool_id, user_id, email, amount, slots, status, COALESCE(gateway_ref, ''), delivery_status, confirmed_at, failed_at, created_at, updated_at`

	constraintReference       = "contributions_reference_key"
	constraintOneConfirmation = "contributions_one_confirmed_per_user"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContribution(row rowScanner) (*models.Contribution, error) {
	var (
		c           models.Contribution
		cid         uuid.UUID
		poolID      uuid.UUID
		userID      uuid.UUID
		status      string
		delivery    string
		confirmedAt sql.NullTime
		failedAt    sql.NullTime
	)
	if err := row.Scan(&cid, &c.Reference, &poolID, &userID, &c.Email, &c.Amount, &c.Slots, &status,
		&c.GatewayRef, &delivery, &confirmedAt, &failedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = id.ContributionID(cid)
	c.PoolID = id.PoolID(poolID)
	c.UserID = id.UserID(userID)
	c.Status = models.Status(status)
	c.DeliveryStatus = models.DeliveryStatus(delivery)
	if confirmedAt.Valid {
		t := confirmedAt.Time
		c.ConfirmedAt = &t
	}
	if failedAt.Valid {
		t := failedAt.Time
		c.FailedAt = &t
	}
	return &c, nil
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Contribution) error {
	query := `
		INSERT INTO contributions (id, reference, pool_id, user_id, email, amount, slots, status, delivery_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID), c.Reference, uuid.UUID(c.PoolID), uuid.UUID(c.UserID), c.Email,
		c.Amount, c.Slots, string(c.Status), string(c.DeliveryStatus), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, constraintReference) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert contribution: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByReference(ctx context.Context, ref string) (*models.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions WHERE reference = $1`
	c, err := scanContribution(s.execer(ctx).QueryRowContext(ctx, query, ref))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contribution: %w", err)
	}
	return c, nil
}

// exists distinguishes "missing" from "not in the expected state" after a
// conditional statement touched zero rows.
func (s *PostgresStore) exists(ctx context.Context, ref string) (bool, error) {
	var ok bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM contributions WHERE reference = $1)`, ref,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check contribution exists: %w", err)
	}
	return ok, nil
}

func (s *PostgresStore) DeleteIfPending(ctx context.Context, ref string) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM contributions WHERE reference = $1 AND status = 'pending'`, ref)
	if err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete contribution rows affected: %w", err)
	} else if n == 1 {
		return nil
	}
	ok, err := s.exists(ctx, ref)
	if err != nil {
		return err
	}
	if !ok {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

// ConfirmIfPending is the single-winner transition. Zero rows on an existing
// reference means another caller already moved it out of pending.
func (s *PostgresStore) ConfirmIfPending(ctx context.Context, ref, gatewayRef string, now time.Time) (bool, error) {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE contributions
		SET status = 'confirmed', gateway_ref = NULLIF($2, ''), confirmed_at = $3, updated_at = $3
		WHERE reference = $1 AND status = 'pending'
	`, ref, gatewayRef, now)
	if err != nil {
		if postgres.IsUniqueViolation(err, constraintOneConfirmation) {
			return false, sentinel.ErrConflict
		}
		return false, fmt.Errorf("confirm contribution: %w", err)
	}
	return s.applied(ctx, res, ref)
}

func (s *PostgresStore) FailIfPending(ctx context.Context, ref string, now time.Time) (bool, error) {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE contributions
		SET status = 'failed', failed_at = $2, updated_at = $2
		WHERE reference = $1 AND status = 'pending'
	`, ref, now)
	if err != nil {
		return false, fmt.Errorf("fail contribution: %w", err)
	}
	return s.applied(ctx, res, ref)
}

func (s *PostgresStore) applied(ctx context.Context, res sql.Result, ref string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	ok, err := s.exists(ctx, ref)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, sentinel.ErrNotFound
	}
	return false, nil
}

func (s *PostgresStore) HeldSlots(ctx context.Context, poolID id.PoolID, since time.Time) (int, error) {
	var held int
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(slots), 0)
		FROM contributions
		WHERE pool_id = $1 AND status = 'pending' AND created_at >= $2
	`, uuid.UUID(poolID), since).Scan(&held)
	if err != nil {
		return 0, fmt.Errorf("sum held slots: %w", err)
	}
	return held, nil
}

func (s *PostgresStore) HasConfirmed(ctx context.Context, poolID id.PoolID, userID id.UserID) (bool, error) {
	var ok bool
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM contributions
			WHERE pool_id = $1 AND user_id = $2 AND status = 'confirmed'
		)
	`, uuid.UUID(poolID), uuid.UUID(userID)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check confirmed contribution: %w", err)
	}
	return ok, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Contribution, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()
	var out []*models.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Contribution, error) {
	return s.list(ctx, `SELECT `+contributionColumns+` FROM contributions WHERE user_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(userID))
}

func (s *PostgresStore) ListByPool(ctx context.Context, poolID id.PoolID) ([]*models.Contribution, error) {
	return s.list(ctx, `SELECT `+contributionColumns+` FROM contributions WHERE pool_id = $1 ORDER BY created_at`,
		uuid.UUID(poolID))
}

func (s *PostgresStore) UpdateDeliveryStatus(ctx context.Context, ref string, status models.DeliveryStatus, now time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE contributions SET delivery_status = $2, updated_at = $3
		WHERE reference = $1 AND status = 'confirmed'
	`, ref, string(status), now)
	if err != nil {
		return fmt.Errorf("update delivery status: %w", err)
	}
	applied, err := s.applied(ctx, res, ref)
	if err != nil {
		return err
	}
	if !applied {
		return sentinel.ErrInvalidState
	}
	return nil
}
