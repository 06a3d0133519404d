package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"poolpay/internal/contribution/metrics"
	"poolpay/internal/contribution/models"
	"poolpay/internal/outbox"
	"poolpay/internal/payment"
	poolmodels "poolpay/internal/pool/models"
	id "poolpay/pkg/domain"
	txcontext "poolpay/pkg/platform/tx"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,PoolStore,UserStore,OutboxStore

// Store is the contribution persistence. Transitions out of pending are
// conditional and report whether the caller won.
type Store interface {
	Create(ctx context.Context, c *models.Contribution) error
	FindByReference(ctx context.Context, ref string) (*models.Contribution, error)
	DeleteIfPending(ctx context.Context, ref string) error
	ConfirmIfPending(ctx context.Context, ref, gatewayRef string, now time.Time) (bool, error)
	FailIfPending(ctx context.Context, ref string, now time.Time) (bool, error)
	HeldSlots(ctx context.Context, poolID id.PoolID, since time.Time) (int, error)
	HasConfirmed(ctx context.Context, poolID id.PoolID, userID id.UserID) (bool, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Contribution, error)
	ListByPool(ctx context.Context, poolID id.PoolID) ([]*models.Contribution, error)
	UpdateDeliveryStatus(ctx context.Context, ref string, status models.DeliveryStatus, now time.Time) error
}

// PoolStore is the slice of pool persistence reconciliation needs.
type PoolStore interface {
	FindByID(ctx context.Context, poolID id.PoolID) (*poolmodels.Pool, error)
	FindByIDs(ctx context.Context, poolIDs []id.PoolID) (map[id.PoolID]*poolmodels.Pool, error)
	ListByCreator(ctx context.Context, creatorID id.UserID) ([]*poolmodels.Pool, error)
	LockForReservation(ctx context.Context, poolID id.PoolID) (*poolmodels.Pool, error)
	ApplyFundingAtomic(ctx context.Context, poolID id.PoolID, amount int64, slots int, now time.Time) (*poolmodels.Pool, error)
}

type UserStore interface {
	IncrementTotalContributed(ctx context.Context, userID id.UserID, amount int64, now time.Time) error
}

type OutboxStore interface {
	Append(ctx context.Context, e *outbox.Entry) error
}

const (
	defaultReservationHold = 30 * time.Minute
	dashboardConcurrency   = 8
)

// Service is the reconciliation engine: it reserves slots, starts payments
// and applies their outcome exactly once.
type Service struct {
	contributions   Store
	pools           PoolStore
	users           UserStore
	outbox          OutboxStore
	tx              txcontext.Runner
	gateway         payment.Gateway
	logger          *slog.Logger
	metrics         *metrics.Metrics
	tracer          trace.Tracer
	reservationHold time.Duration
	callbackURL     string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithReservationHold sets how long a pending contribution keeps its slots.
func WithReservationHold(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reservationHold = d
		}
	}
}

// WithCallbackURL sets the redirect target handed to the gateway when the
// request does not carry one.
func WithCallbackURL(u string) Option {
	return func(s *Service) {
		s.callbackURL = u
	}
}

func New(
	contributions Store,
	pools PoolStore,
	users UserStore,
	outboxStore OutboxStore,
	tx txcontext.Runner,
	gateway payment.Gateway,
	opts ...Option,
) *Service {
	s := &Service{
		contributions:   contributions,
		pools:           pools,
		users:           users,
		outbox:          outboxStore,
		tx:              tx,
		gateway:         gateway,
		logger:          slog.Default(),
		tracer:          otel.Tracer("poolpay/contribution"),
		reservationHold: defaultReservationHold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
