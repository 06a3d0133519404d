package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"poolpay/internal/contribution/models"
	"poolpay/internal/outbox"
	"poolpay/internal/payment"
	poolmodels "poolpay/internal/pool/models"
	dErrors "poolpay/pkg/domain-errors"
	"poolpay/pkg/platform/sentinel"
	"poolpay/pkg/requestcontext"
)

// Outcome is what the gateway reported for a reference. Amount and Currency
// are optional; when set they must match the contribution and its pool.
type Outcome struct {
	Succeeded  bool
	GatewayRef string
	PaidAt     time.Time
	Amount     int64
	Currency   string
}

// contributionEvent is the outbox payload for a contribution transition.
type contributionEvent struct {
	ContributionID   string     `json:"contribution_id"`
	Reference        string     `json:"reference"`
	PoolID           string     `json:"pool_id"`
	UserID           string     `json:"user_id"`
	Amount           int64      `json:"amount"`
	Currency         string     `json:"currency,omitempty"`
	Slots            int        `json:"slots"`
	GatewayRef       string     `json:"gateway_ref,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	PoolRaisedAmount int64      `json:"pool_raised_amount,omitempty"`
	PoolFilledSlots  int        `json:"pool_filled_slots,omitempty"`
	PoolStatus       string     `json:"pool_status,omitempty"`
	OccurredAt       time.Time  `json:"occurred_at"`
}

// errAlreadySettled aborts a transaction whose conditional transition lost
// the race. Nothing was written, so the caller treats it as a no-op.
var errAlreadySettled = errors.New("contribution already settled")

// Confirm applies a gateway outcome to the contribution identified by ref.
// The redirect and the push notification both end up here, possibly at the
// same time and possibly more than once; only the caller whose conditional
// transition out of pending succeeds applies any side effect.
func (s *Service) Confirm(ctx context.Context, ref string, outcome Outcome) error {
	ctx, span := s.tracer.Start(ctx, "contribution.Confirm",
		trace.WithAttributes(
			attribute.String("reference", ref),
			attribute.Bool("succeeded", outcome.Succeeded),
		))
	defer span.End()
	start := time.Now()
	if s.metrics != nil {
		defer s.metrics.ObserveConfirm(start)
	}

	c, err := s.contributions.FindByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.NewWithReason(dErrors.CodeNotFound, dErrors.ReasonUnknownReference, "unknown payment reference")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contribution")
	}
	if c.Status.IsTerminal() {
		s.logger.DebugContext(ctx, "contribution already settled",
			"reference", ref,
			"status", c.Status,
		)
		return nil
	}

	if !outcome.Succeeded {
		return s.fail(ctx, c)
	}

	if outcome.Amount != 0 && outcome.Amount != c.Amount {
		s.logger.ErrorContext(ctx, "gateway amount does not match contribution",
			"reference", ref,
			"expected_amount", c.Amount,
			"reported_amount", outcome.Amount,
		)
		span.SetStatus(codes.Error, "amount mismatch")
		return dErrors.NewWithReason(dErrors.CodeGatewayFailure, dErrors.ReasonAmountMismatch,
			"gateway reported a different amount")
	}
	if outcome.Currency != "" {
		if err := s.checkCurrency(ctx, c, outcome.Currency); err != nil {
			span.SetStatus(codes.Error, "currency mismatch")
			return err
		}
	}

	err = s.confirm(ctx, c, outcome)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errAlreadySettled):
		s.logger.DebugContext(ctx, "lost confirmation race", "reference", ref)
		return nil
	case dErrors.HasCode(err, dErrors.CodeIntegrityFault):
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "refused confirmation that would break pool invariants",
			"reference", ref,
			"pool_id", c.PoolID,
			"slots", c.Slots,
			"amount", c.Amount,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IncrementIntegrityFault()
		}
		return err
	case dErrors.HasReason(err, dErrors.ReasonDuplicateContribution):
		s.logger.WarnContext(ctx, "second confirmed contribution refused",
			"reference", ref,
			"pool_id", c.PoolID,
			"user_id", c.UserID,
		)
		if s.metrics != nil {
			s.metrics.IncrementDuplicate()
		}
		return err
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to confirm contribution")
}

// checkCurrency refuses a gateway currency that differs from the pool's.
func (s *Service) checkCurrency(ctx context.Context, c *models.Contribution, reported string) error {
	p, err := s.pools.FindByID(ctx, c.PoolID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeIntegrityFault, "contribution references a missing pool")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pool")
	}
	if strings.EqualFold(strings.TrimSpace(reported), p.Currency) {
		return nil
	}
	s.logger.ErrorContext(ctx, "gateway currency does not match pool",
		"reference", c.Reference,
		"pool_id", c.PoolID,
		"expected_currency", p.Currency,
		"reported_currency", reported,
	)
	return dErrors.NewWithReason(dErrors.CodeGatewayFailure, dErrors.ReasonCurrencyMismatch,
		"gateway reported a different currency")
}

// Fail moves a pending contribution to failed. Terminal contributions are
// left alone.
func (s *Service) Fail(ctx context.Context, ref string) error {
	return s.Confirm(ctx, ref, Outcome{Succeeded: false})
}

func (s *Service) confirm(ctx context.Context, c *models.Contribution, outcome Outcome) error {
	now := requestcontext.Now(ctx)
	var funded *poolmodels.Pool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		won, err := s.contributions.ConfirmIfPending(ctx, c.Reference, outcome.GatewayRef, now)
		if err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.NewWithReason(dErrors.CodeConflict, dErrors.ReasonDuplicateContribution,
					"user already holds a confirmed contribution on this pool")
			}
			return err
		}
		if !won {
			return errAlreadySettled
		}

		funded, err = s.pools.ApplyFundingAtomic(ctx, c.PoolID, c.Amount, c.Slots, now)
		if err != nil {
			switch {
			case errors.Is(err, sentinel.ErrCapacityExceeded):
				return dErrors.NewWithReason(dErrors.CodeIntegrityFault, dErrors.ReasonCapacityExceeded,
					"confirmation would exceed pool capacity")
			case errors.Is(err, sentinel.ErrNotFound):
				return dErrors.New(dErrors.CodeIntegrityFault, "contribution references a missing pool")
			}
			return err
		}

		if err := s.users.IncrementTotalContributed(ctx, c.UserID, c.Amount, now); err != nil {
			return err
		}

		c.ApplyConfirm(outcome.GatewayRef, now)
		entry, err := outbox.NewEntry(outbox.AggregateContribution, c.Reference, outbox.EventContributionConfirmed,
			contributionEvent{
				ContributionID:   c.ID.String(),
				Reference:        c.Reference,
				PoolID:           c.PoolID.String(),
				UserID:           c.UserID.String(),
				Amount:           c.Amount,
				Currency:         funded.Currency,
				Slots:            c.Slots,
				GatewayRef:       outcome.GatewayRef,
				PaidAt:           paidAt(outcome.PaidAt),
				PoolRaisedAmount: funded.RaisedAmount,
				PoolFilledSlots:  funded.FilledSlots,
				PoolStatus:       string(funded.Status),
				OccurredAt:       now,
			}, now)
		if err != nil {
			return err
		}
		return s.outbox.Append(ctx, entry)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "contribution confirmed",
		"reference", c.Reference,
		"pool_id", c.PoolID,
		"user_id", c.UserID,
		"amount", c.Amount,
		"slots", c.Slots,
		"pool_filled_slots", funded.FilledSlots,
		"pool_capacity", funded.Capacity,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementConfirmed()
	}
	return nil
}

func (s *Service) fail(ctx context.Context, c *models.Contribution) error {
	now := requestcontext.Now(ctx)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		won, err := s.contributions.FailIfPending(ctx, c.Reference, now)
		if err != nil {
			return err
		}
		if !won {
			return errAlreadySettled
		}
		entry, err := outbox.NewEntry(outbox.AggregateContribution, c.Reference, outbox.EventContributionFailed,
			contributionEvent{
				ContributionID: c.ID.String(),
				Reference:      c.Reference,
				PoolID:         c.PoolID.String(),
				UserID:         c.UserID.String(),
				Amount:         c.Amount,
				Slots:          c.Slots,
				OccurredAt:     now,
			}, now)
		if err != nil {
			return err
		}
		return s.outbox.Append(ctx, entry)
	})
	if errors.Is(err, errAlreadySettled) {
		return nil
	}
	if err != nil {
		if _, ok := dErrors.As(err); ok {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark contribution failed")
	}

	s.logger.InfoContext(ctx, "contribution failed",
		"reference", c.Reference,
		"pool_id", c.PoolID,
		"user_id", c.UserID,
	)
	if s.metrics != nil {
		s.metrics.IncrementFailed()
	}
	return nil
}

// VerifyAndReconcile asks the gateway for the current outcome of ref and
// applies it. It backs the redirect channel. Settled contributions are
// returned without a gateway call.
func (s *Service) VerifyAndReconcile(ctx context.Context, ref string) (*models.Contribution, error) {
	ctx, span := s.tracer.Start(ctx, "contribution.VerifyAndReconcile",
		trace.WithAttributes(attribute.String("reference", ref)))
	defer span.End()

	c, err := s.contributions.FindByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewWithReason(dErrors.CodeNotFound, dErrors.ReasonUnknownReference, "unknown payment reference")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contribution")
	}
	if c.Status.IsTerminal() {
		return c, nil
	}

	res, err := s.gateway.Verify(ctx, ref)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "payment verification failed",
			"reference", ref,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IncrementGatewayFailure("verify")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeGatewayFailure, "payment verification failed")
	}

	switch res.Status {
	case payment.VerifySucceeded:
		err = s.Confirm(ctx, ref, Outcome{
			Succeeded:  true,
			GatewayRef: res.ProviderReference,
			PaidAt:     res.PaidAt,
			Amount:     res.Amount,
			Currency:   res.Currency,
		})
	case payment.VerifyFailed:
		err = s.Fail(ctx, ref)
	default:
		return c, nil
	}
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, ref)
}

// HandleNotification applies a gateway push notification. Events other than
// a successful charge, and references this engine never issued, are
// acknowledged without effect.
func (s *Service) HandleNotification(ctx context.Context, n payment.Notification) (payment.NotificationOutcome, error) {
	if !n.IsSuccess() {
		s.logger.InfoContext(ctx, "ignoring payment notification",
			"event", n.Event,
			"reference", n.Reference,
		)
		return payment.NotificationIgnored, nil
	}

	err := s.Confirm(ctx, n.Reference, Outcome{
		Succeeded:  true,
		GatewayRef: n.ProviderReference,
		PaidAt:     n.PaidAt,
		Amount:     n.Amount,
		Currency:   n.Currency,
	})
	if err != nil {
		if dErrors.HasReason(err, dErrors.ReasonUnknownReference) {
			s.logger.WarnContext(ctx, "notification for unknown reference",
				"reference", n.Reference,
				"provider_reference", n.ProviderReference,
			)
			return payment.NotificationIgnored, nil
		}
		return "", err
	}
	return payment.NotificationProcessed, nil
}

func paidAt(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (s *Service) reload(ctx context.Context, ref string) (*models.Contribution, error) {
	c, err := s.contributions.FindByReference(ctx, ref)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reload contribution")
	}
	return c, nil
}
