package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"poolpay/internal/outbox"
	txcontext "poolpay/pkg/platform/tx"
)

// PostgresStore implements the outbox table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append writes an entry. Callers append inside the transaction that makes
// the state change so the event exists if and only if the change commits.
func (s *PostgresStore) Append(ctx context.Context, e *outbox.Entry) error {
	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		e.ID, e.AggregateType, e.AggregateID, e.EventType, e.Payload, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

const entryColumns = `id, aggregate_type, aggregate_id, event_type, payload, created_at, published_at, claimed_until, attempts, COALESCE(last_error, '')`

func scanEntries(rows *sql.Rows) ([]*outbox.Entry, error) {
	defer rows.Close()
	var out []*outbox.Entry
	for rows.Next() {
		var (
			e            outbox.Entry
			publishedAt  sql.NullTime
			claimedUntil sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload,
			&e.CreatedAt, &publishedAt, &claimedUntil, &e.Attempts, &e.LastError); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		if publishedAt.Valid {
			t := publishedAt.Time
			e.PublishedAt = &t
		}
		if claimedUntil.Valid {
			t := claimedUntil.Time
			e.ClaimedUntil = &t
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return out, nil
}

// Claim leases up to limit unpublished rows in one statement. Rows whose
// lease is still running at now are skipped, as are rows locked by a
// concurrent claim.
func (s *PostgresStore) Claim(ctx context.Context, limit int, now time.Time, lease time.Duration) ([]*outbox.Entry, error) {
	query := `
		UPDATE outbox SET claimed_until = $3
		WHERE id IN (
			SELECT id FROM outbox
			WHERE published_at IS NULL
			  AND (claimed_until IS NULL OR claimed_until <= $2)
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + entryColumns
	rows, err := s.execer(ctx).QueryContext(ctx, query, limit, now, now.Add(lease))
	if err != nil {
		return nil, fmt.Errorf("claim outbox entries: %w", err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	// RETURNING does not keep the subquery order.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })
	return entries, nil
}

func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE outbox SET published_at = $2, claimed_until = NULL, attempts = attempts + 1
		WHERE id = ANY($1::uuid[]) AND published_at IS NULL
	`, pq.Array(uuidStrings(ids)), now)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkFailed(ctx context.Context, ids []uuid.UUID, reason string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE outbox SET attempts = attempts + 1, last_error = $2, claimed_until = NULL
		WHERE id = ANY($1::uuid[])
	`, pq.Array(uuidStrings(ids)), reason)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByAggregate(ctx context.Context, aggregateType, aggregateID string) ([]*outbox.Entry, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM outbox
		WHERE aggregate_type = $1 AND aggregate_id = $2
		ORDER BY created_at
	`, aggregateType, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("list outbox entries: %w", err)
	}
	return scanEntries(rows)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}
