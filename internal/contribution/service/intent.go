package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"poolpay/internal/contribution/models"
	"poolpay/internal/payment"
	id "poolpay/pkg/domain"
	dErrors "poolpay/pkg/domain-errors"
	"poolpay/pkg/platform/sentinel"
	"poolpay/pkg/requestcontext"
)

// CreateIntentRequest asks to reserve slots on a pool and start a payment.
// Amount is in the pool currency's minor units.
type CreateIntentRequest struct {
	PoolID      id.PoolID
	UserID      id.UserID
	Email       string
	Amount      int64
	Currency    string
	Slots       int
	CallbackURL string
}

// IntentResult is a persisted pending contribution and where to send the payer.
type IntentResult struct {
	Contribution *models.Contribution
	RedirectURL  string
	AccessCode   string
}

// CreateIntent checks, in order: the pool exists and is open, the amount and
// slots are valid, the user has no confirmed contribution on the pool, and
// the slots can be reserved. The reservation commits before the gateway is
// called; if the gateway fails the pending contribution is removed again.
func (s *Service) CreateIntent(ctx context.Context, req CreateIntentRequest) (*IntentResult, error) {
	ctx, span := s.tracer.Start(ctx, "contribution.CreateIntent",
		trace.WithAttributes(
			attribute.String("pool_id", req.PoolID.String()),
			attribute.Int("slots", req.Slots),
		))
	defer span.End()

	now := requestcontext.Now(ctx)

	p, err := s.pools.FindByID(ctx, req.PoolID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.rejectIntent(dErrors.New(dErrors.CodeNotFound, "pool not found"), "pool_not_found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pool")
	}
	if !p.IsOpen(now) {
		return nil, s.rejectIntent(dErrors.NewWithReason(dErrors.CodeConflict, dErrors.ReasonPoolNotActive,
			"pool is not accepting contributions"), dErrors.ReasonPoolNotActive)
	}

	if err := validateIntent(req, p.Currency, p.Capacity, p.SlotPrice()); err != nil {
		return nil, s.rejectIntent(err, "validation")
	}

	confirmed, err := s.contributions.HasConfirmed(ctx, req.PoolID, req.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing contributions")
	}
	if confirmed {
		return nil, s.rejectIntent(dErrors.NewWithReason(dErrors.CodeConflict, dErrors.ReasonDuplicateContribution,
			"user already holds a confirmed contribution on this pool"), dErrors.ReasonDuplicateContribution)
	}

	c, err := models.NewContribution(req.PoolID, req.UserID, req.Email, req.Amount, req.Slots, now)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	if err := s.reserve(ctx, c); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("reference", c.Reference))

	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = s.callbackURL
	}
	res, err := s.gateway.Initialize(ctx, payment.InitializeRequest{
		Reference:   c.Reference,
		Amount:      c.Amount,
		Currency:    p.Currency,
		Email:       c.Email,
		CallbackURL: callbackURL,
		Metadata: map[string]string{
			"pool_id":         c.PoolID.String(),
			"contribution_id": c.ID.String(),
			"user_id":         c.UserID.String(),
			"slots":           strconv.Itoa(c.Slots),
		},
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.discardIntent(ctx, c, err)
		if s.metrics != nil {
			s.metrics.IncrementGatewayFailure("initialize")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeGatewayFailure, "payment initialization failed")
	}

	s.logger.InfoContext(ctx, "payment intent created",
		"reference", c.Reference,
		"pool_id", c.PoolID,
		"user_id", c.UserID,
		"amount", c.Amount,
		"slots", c.Slots,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementIntentCreated()
	}
	return &IntentResult{Contribution: c, RedirectURL: res.RedirectURL, AccessCode: res.AccessCode}, nil
}

func validateIntent(req CreateIntentRequest, poolCurrency string, poolCapacity int, slotPrice int64) error {
	if req.UserID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "user is required")
	}
	if req.Amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if req.Slots < 1 || req.Slots > poolCapacity {
		return dErrors.New(dErrors.CodeValidation, "slots must be between 1 and the pool capacity")
	}
	if strings.TrimSpace(req.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if req.Currency != "" && !strings.EqualFold(req.Currency, poolCurrency) {
		return dErrors.New(dErrors.CodeValidation, "currency does not match pool currency "+poolCurrency)
	}
	// Division keeps the check free of overflow for any amount.
	if req.Amount%int64(req.Slots) != 0 || req.Amount/int64(req.Slots) != slotPrice {
		return dErrors.New(dErrors.CodeValidation, "amount must equal slots times the slot price")
	}
	return nil
}

// reserve re-reads the pool under a row lock, counts slots already held by
// pending contributions and inserts c in the same transaction, so two
// intents racing for the last slot cannot both pass.
func (s *Service) reserve(ctx context.Context, c *models.Contribution) error {
	now := requestcontext.Now(ctx)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.pools.LockForReservation(ctx, c.PoolID)
		if err != nil {
			return err
		}
		held, err := s.contributions.HeldSlots(ctx, c.PoolID, now.Add(-s.reservationHold))
		if err != nil {
			return err
		}
		if err := p.Reserve(c.Slots, held, now); err != nil {
			return err
		}
		return s.contributions.Create(ctx, c)
	})
	if err == nil {
		return nil
	}

	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return s.rejectIntent(err, de.Reason)
	case errors.Is(err, sentinel.ErrNotFound):
		return s.rejectIntent(dErrors.New(dErrors.CodeNotFound, "pool not found"), "pool_not_found")
	case errors.Is(err, sentinel.ErrConflict):
		s.logger.WarnContext(ctx, "payment reference collision", "reference", c.Reference)
		return s.rejectIntent(dErrors.NewWithReason(dErrors.CodeConflict, dErrors.ReasonReferenceCollision,
			"payment reference already in use"), dErrors.ReasonReferenceCollision)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve slots")
}

// discardIntent removes the pending contribution after a failed gateway
// call. It runs even if the request context was cancelled.
func (s *Service) discardIntent(ctx context.Context, c *models.Contribution, cause error) {
	cleanupCtx := context.WithoutCancel(ctx)
	attrs := []any{
		"reference", c.Reference,
		"pool_id", c.PoolID,
		"error", cause,
		"request_id", requestcontext.RequestID(ctx),
	}
	if err := s.contributions.DeleteIfPending(cleanupCtx, c.Reference); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.ErrorContext(ctx, "failed to discard pending contribution after gateway failure",
			append(attrs, "cleanup_error", err)...)
		return
	}
	s.logger.WarnContext(ctx, "payment initialization failed, intent discarded", attrs...)
}

func (s *Service) rejectIntent(err error, reason string) error {
	if s.metrics != nil {
		if reason == "" {
			reason = string(dErrors.CodeOf(err))
		}
		s.metrics.IncrementIntentRejected(reason)
	}
	return err
}
