package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	txcontext "poolpay/pkg/platform/tx"
)

// Store is the persistence the worker drains.
type Store interface {
	Claim(ctx context.Context, limit int, now time.Time, lease time.Duration) ([]*Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, now time.Time) error
	MarkFailed(ctx context.Context, ids []uuid.UUID, reason string) error
}

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 100
	defaultClaimLease   = 30 * time.Second
)

// Worker polls the outbox and hands unpublished entries to a Publisher.
// Entries are claimed under a lease and published with no transaction open.
// Delivery is at least once: a crash after publish republishes once the
// lease expires.
type Worker struct {
	store     Store
	tx        txcontext.Runner
	publisher Publisher
	logger    *slog.Logger
	metrics   *Metrics
	interval  time.Duration
	batchSize int
	lease     time.Duration
	now       func() time.Time
}

type WorkerOption func(*Worker)

func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithMetrics(m *Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithPollInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithClaimLease bounds how long a claimed batch stays hidden from other
// workers. It must exceed the publisher's worst case latency.
func WithClaimLease(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.lease = d
		}
	}
}

func WithClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

func NewWorker(store Store, tx txcontext.Runner, publisher Publisher, opts ...WorkerOption) *Worker {
	w := &Worker{
		store:     store,
		tx:        tx,
		publisher: publisher,
		logger:    slog.Default(),
		interval:  defaultPollInterval,
		batchSize: defaultBatchSize,
		lease:     defaultClaimLease,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if _, err := w.DrainOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.WarnContext(ctx, "outbox drain failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// DrainOnce publishes one batch and reports how many entries went out.
func (w *Worker) DrainOnce(ctx context.Context) (int, error) {
	var entries []*Entry
	err := w.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		entries, err = w.store.Claim(ctx, w.batchSize, w.now(), w.lease)
		return err
	})
	if err != nil {
		return 0, err
	}
	if w.metrics != nil {
		w.metrics.BatchSize.Observe(float64(len(entries)))
	}
	if len(entries) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	if perr := w.publisher.Publish(ctx, entries); perr != nil {
		if w.metrics != nil {
			w.metrics.PublishErrors.Inc()
		}
		w.logger.WarnContext(ctx, "outbox publish failed",
			"entries", len(entries),
			"error", perr,
		)
		return 0, w.tx.RunInTx(ctx, func(ctx context.Context) error {
			return w.store.MarkFailed(ctx, ids, perr.Error())
		})
	}

	err = w.tx.RunInTx(ctx, func(ctx context.Context) error {
		return w.store.MarkPublished(ctx, ids, w.now())
	})
	if err != nil {
		return 0, err
	}
	if w.metrics != nil {
		w.metrics.Published.Add(float64(len(entries)))
	}
	return len(entries), nil
}
