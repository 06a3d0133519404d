package outbox_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"poolpay/internal/outbox"
	"poolpay/internal/outbox/store"
	txcontext "poolpay/pkg/platform/tx"
)

type recordingPublisher struct {
	mu      sync.Mutex
	batches [][]*outbox.Entry
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, entries []*outbox.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, entries)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.batches {
		n += len(b)
	}
	return n
}

// blockingPublisher holds every Publish call until release is closed.
type blockingPublisher struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *blockingPublisher) Publish(ctx context.Context, _ []*outbox.Entry) error {
	p.once.Do(func() { close(p.entered) })
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type WorkerSuite struct {
	suite.Suite
	store     *store.InMemory
	runner    *txcontext.MemoryRunner
	publisher *recordingPublisher
	metrics   *outbox.Metrics
	worker    *outbox.Worker
	now       time.Time
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.publisher = &recordingPublisher{}
	s.metrics = outbox.NewMetrics(prometheus.NewRegistry())
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.runner = txcontext.NewMemoryRunner()
	s.worker = outbox.NewWorker(s.store, s.runner, s.publisher,
		outbox.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		outbox.WithMetrics(s.metrics),
		outbox.WithBatchSize(2),
		outbox.WithPollInterval(10*time.Millisecond),
	)
}

func (s *WorkerSuite) appendEntries(n int) {
	for i := range n {
		e, err := outbox.NewEntry(outbox.AggregateContribution, "pl_ref", outbox.EventContributionConfirmed,
			map[string]int{"seq": i}, s.now.Add(time.Duration(i)*time.Second))
		s.Require().NoError(err)
		s.Require().NoError(s.store.Append(context.Background(), e))
	}
}

func (s *WorkerSuite) TestDrainOnce() {
	s.Run("publishes in batches oldest first", func() {
		s.appendEntries(3)

		n, err := s.worker.DrainOnce(context.Background())
		s.Require().NoError(err)
		s.Equal(2, n)
		s.JSONEq(`{"seq":0}`, string(s.publisher.batches[0][0].Payload))

		n, err = s.worker.DrainOnce(context.Background())
		s.Require().NoError(err)
		s.Equal(1, n)

		n, err = s.worker.DrainOnce(context.Background())
		s.Require().NoError(err)
		s.Zero(n)
		s.Equal(float64(3), promtestutil.ToFloat64(s.metrics.Published))
	})
}

func (s *WorkerSuite) TestPublishFailure() {
	s.appendEntries(1)
	s.publisher.err = errors.New("broker down")

	n, err := s.worker.DrainOnce(context.Background())
	s.Require().NoError(err)
	s.Zero(n)
	s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.PublishErrors))

	entries, err := s.store.ListByAggregate(context.Background(), outbox.AggregateContribution, "pl_ref")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.False(entries[0].IsPublished())
	s.Equal("broker down", entries[0].LastError)
	s.Equal(1, entries[0].Attempts)

	s.publisher.err = nil
	n, err = s.worker.DrainOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *WorkerSuite) TestRunStopsOnCancel() {
	s.appendEntries(4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.worker.Run(ctx) }()

	s.Eventually(func() bool { return s.publisher.count() == 4 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("worker did not stop")
	}
}

func (s *WorkerSuite) TestAppendRollsBackWithTx() {
	runner := txcontext.NewMemoryRunner()
	err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
		e, err := outbox.NewEntry(outbox.AggregateContribution, "pl_gone", outbox.EventContributionFailed, nil, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.Append(ctx, e))
		return errors.New("abort")
	})
	s.Require().Error(err)

	entries, err := s.store.ListByAggregate(context.Background(), outbox.AggregateContribution, "pl_gone")
	s.Require().NoError(err)
	s.Empty(entries)
}

// =============================================================================
// Claims
// =============================================================================

func (s *WorkerSuite) TestPublishHoldsNoTransaction() {
	ctx := context.Background()
	s.appendEntries(1)
	publisher := &blockingPublisher{entered: make(chan struct{}), release: make(chan struct{})}
	worker := outbox.NewWorker(s.store, s.runner, publisher,
		outbox.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	drained := make(chan error, 1)
	go func() {
		_, err := worker.DrainOnce(ctx)
		drained <- err
	}()
	<-publisher.entered

	s.Run("concurrent transactions proceed while a publish is in flight", func() {
		committed := make(chan error, 1)
		go func() {
			committed <- s.runner.RunInTx(ctx, func(context.Context) error { return nil })
		}()
		select {
		case err := <-committed:
			s.NoError(err)
		case <-time.After(time.Second):
			s.Fail("transaction blocked behind publisher")
		}
	})

	s.Run("claimed entries are not handed to a second drain", func() {
		n, err := s.worker.DrainOnce(ctx)
		s.Require().NoError(err)
		s.Zero(n)
		s.Zero(s.publisher.count())
	})

	close(publisher.release)
	select {
	case err := <-drained:
		s.Require().NoError(err)
	case <-time.After(time.Second):
		s.FailNow("drain did not finish")
	}

	entries, err := s.store.ListByAggregate(ctx, outbox.AggregateContribution, "pl_ref")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.True(entries[0].IsPublished())
	s.Nil(entries[0].ClaimedUntil)
}

func (s *WorkerSuite) TestClaimLease() {
	ctx := context.Background()
	s.appendEntries(1)
	lease := 30 * time.Second

	claimed, err := s.store.Claim(ctx, 10, s.now, lease)
	s.Require().NoError(err)
	s.Require().Len(claimed, 1)
	s.Require().NotNil(claimed[0].ClaimedUntil)
	s.Equal(s.now.Add(lease), *claimed[0].ClaimedUntil)

	s.Run("a live lease hides the entry", func() {
		again, err := s.store.Claim(ctx, 10, s.now.Add(lease-time.Second), lease)
		s.Require().NoError(err)
		s.Empty(again)
	})

	s.Run("an expired lease is reclaimed by the next worker", func() {
		clock := s.now.Add(lease)
		worker := outbox.NewWorker(s.store, s.runner, s.publisher,
			outbox.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			outbox.WithClaimLease(lease),
			outbox.WithClock(func() time.Time { return clock }),
		)
		n, err := worker.DrainOnce(ctx)
		s.Require().NoError(err)
		s.Equal(1, n)
	})

	s.Run("a failed publish releases the claim", func() {
		s.appendEntries(1)
		fresh, err := s.store.Claim(ctx, 10, s.now, lease)
		s.Require().NoError(err)
		s.Require().Len(fresh, 1)
		s.Require().NoError(s.store.MarkFailed(ctx, []uuid.UUID{fresh[0].ID}, "broker down"))

		retry, err := s.store.Claim(ctx, 10, s.now, lease)
		s.Require().NoError(err)
		s.Require().Len(retry, 1)
		s.Equal(fresh[0].ID, retry[0].ID)
		s.Equal("broker down", retry[0].LastError)
	})
}
