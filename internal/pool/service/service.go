package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"poolpay/internal/pool/metrics"
	"poolpay/internal/pool/models"
	id "poolpay/pkg/domain"
	dErrors "poolpay/pkg/domain-errors"
	"poolpay/pkg/platform/sentinel"
	"poolpay/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, p *models.Pool) error
	FindByID(ctx context.Context, poolID id.PoolID) (*models.Pool, error)
	ListByCreator(ctx context.Context, creatorID id.UserID) ([]*models.Pool, error)
	Cancel(ctx context.Context, poolID id.PoolID, now time.Time) error
}

// Service manages the pool lifecycle outside of funding. Counters are only
// ever advanced by contribution reconciliation.
type Service struct {
	pools           Store
	logger          *slog.Logger
	metrics         *metrics.Metrics
	tracer          trace.Tracer
	defaultCurrency string
}

type Option func(s *Service)

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

func WithDefaultCurrency(currency string) Option {
	return func(s *Service) {
		if currency != "" {
			s.defaultCurrency = currency
		}
	}
}

func New(pools Store, opts ...Option) *Service {
	s := &Service{
		pools:           pools,
		logger:          slog.Default(),
		tracer:          otel.Tracer("poolpay/pool"),
		defaultCurrency: "NGN",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePoolCommand carries the creator's input for a new pool.
type CreatePoolCommand struct {
	CreatorID id.UserID
	Title     string
	Goal      int64
	Currency  string
	Capacity  int
	Deadline  time.Time
}

func (s *Service) CreatePool(ctx context.Context, cmd CreatePoolCommand) (*models.Pool, error) {
	ctx, span := s.tracer.Start(ctx, "pool.CreatePool")
	defer span.End()

	currency := cmd.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	now := requestcontext.Now(ctx)
	p, err := models.NewPool(id.NewPoolID(), cmd.CreatorID, cmd.Title, cmd.Goal, currency, cmd.Capacity, cmd.Deadline, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.pools.Create(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create pool")
	}

	span.SetAttributes(attribute.String("pool_id", p.ID.String()))
	s.logger.InfoContext(ctx, "pool created",
		"pool_id", p.ID,
		"creator_id", p.CreatorID,
		"capacity", p.Capacity,
		"goal", p.Goal,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementPoolCreated()
	}
	return p, nil
}

func (s *Service) GetPool(ctx context.Context, poolID id.PoolID) (*models.Pool, error) {
	if s.metrics != nil {
		defer s.metrics.ObserveGetPool(time.Now())
	}
	p, err := s.pools.FindByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "pool not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pool")
	}
	return p, nil
}

func (s *Service) ListByCreator(ctx context.Context, creatorID id.UserID) ([]*models.Pool, error) {
	if s.metrics != nil {
		defer s.metrics.ObserveListPools(time.Now())
	}
	pools, err := s.pools.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pools")
	}
	return pools, nil
}

// CancelPool lets the creator close a pool to new contributions. Confirmed
// funding is kept as is.
func (s *Service) CancelPool(ctx context.Context, actor id.UserID, poolID id.PoolID) (*models.Pool, error) {
	ctx, span := s.tracer.Start(ctx, "pool.CancelPool",
		trace.WithAttributes(attribute.String("pool_id", poolID.String())))
	defer span.End()

	p, err := s.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if err := p.CanCancel(actor); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeConflict, err.Error())
		}
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if err := s.pools.Cancel(ctx, poolID, now); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "pool not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeConflict, "pool can no longer be cancelled")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel pool")
	}
	p.ApplyCancel(now)

	s.logger.InfoContext(ctx, "pool cancelled",
		"pool_id", poolID,
		"filled_slots", p.FilledSlots,
		"raised_amount", p.RaisedAmount,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementPoolCancelled()
	}
	return p, nil
}
