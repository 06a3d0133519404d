package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"poolpay/internal/contribution/models"
	poolmodels "poolpay/internal/pool/models"
	id "poolpay/pkg/domain"
	dErrors "poolpay/pkg/domain-errors"
	"poolpay/pkg/platform/sentinel"
	platformstrings "poolpay/pkg/platform/strings"
	"poolpay/pkg/requestcontext"
)

// ListByUser returns the user's contributions, newest first, joined with
// their pools.
func (s *Service) ListByUser(ctx context.Context, userID id.UserID) ([]models.UserContribution, error) {
	contributions, err := s.contributions.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list contributions")
	}

	poolIDs := make([]id.PoolID, 0, len(contributions))
	for _, c := range contributions {
		poolIDs = append(poolIDs, c.PoolID)
	}
	pools, err := s.pools.FindByIDs(ctx, platformstrings.Unique(poolIDs))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pools")
	}

	out := make([]models.UserContribution, 0, len(contributions))
	for _, c := range contributions {
		out = append(out, models.UserContribution{Contribution: c, Pool: pools[c.PoolID]})
	}
	return out, nil
}

// ListByPool returns a pool's contributions to its creator.
func (s *Service) ListByPool(ctx context.Context, actor id.UserID, poolID id.PoolID) (*poolmodels.Pool, []*models.Contribution, error) {
	p, err := s.ownedPool(ctx, actor, poolID)
	if err != nil {
		return nil, nil, err
	}
	contributions, err := s.contributions.ListByPool(ctx, poolID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list contributions")
	}
	return p, contributions, nil
}

// CreatorDashboard recomputes per-pool totals from contribution rows for
// every pool the creator owns. Stored pool counters are not trusted here.
func (s *Service) CreatorDashboard(ctx context.Context, creatorID id.UserID) (*models.Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "contribution.CreatorDashboard",
		trace.WithAttributes(attribute.String("creator_id", creatorID.String())))
	defer span.End()

	pools, err := s.pools.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pools")
	}

	perPool := make([][]*models.Contribution, len(pools))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardConcurrency)
	for i, p := range pools {
		g.Go(func() error {
			contributions, err := s.contributions.ListByPool(gctx, p.ID)
			if err != nil {
				return err
			}
			perPool[i] = contributions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pool contributions")
	}

	dash := &models.Dashboard{
		CreatorID:        creatorID,
		Pools:            make([]models.PoolSummary, 0, len(pools)),
		RaisedByCurrency: make(map[string]int64),
	}
	contributors := make(map[id.UserID]struct{})
	for i, p := range pools {
		sum := models.Summarize(p, perPool[i])
		dash.Pools = append(dash.Pools, sum)
		dash.RaisedByCurrency[p.Currency] += sum.ConfirmedAmount
		dash.ConfirmedSlots += sum.ConfirmedSlots
		dash.PendingCount += sum.PendingCount
		for _, c := range perPool[i] {
			if c.Status == models.StatusConfirmed {
				contributors[c.UserID] = struct{}{}
			}
		}
	}
	dash.Contributors = len(contributors)
	return dash, nil
}

// UpdateDeliveryStatus sets the fulfilment label on a confirmed
// contribution. Only the pool creator may change it.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, actor id.UserID, ref string, status models.DeliveryStatus) (*models.Contribution, error) {
	c, err := s.contributions.FindByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.NewWithReason(dErrors.CodeNotFound, dErrors.ReasonUnknownReference, "contribution not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contribution")
	}
	if _, err := s.ownedPool(ctx, actor, c.PoolID); err != nil {
		return nil, err
	}
	if c.Status != models.StatusConfirmed {
		return nil, dErrors.New(dErrors.CodeConflict, "delivery status can only be set on confirmed contributions")
	}

	now := requestcontext.Now(ctx)
	if err := s.contributions.UpdateDeliveryStatus(ctx, ref, status, now); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "contribution not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeConflict, "delivery status can only be set on confirmed contributions")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update delivery status")
	}
	c.DeliveryStatus = status
	c.UpdatedAt = now

	s.logger.InfoContext(ctx, "delivery status updated",
		"reference", ref,
		"delivery_status", status,
		"request_id", requestcontext.RequestID(ctx),
	)
	return c, nil
}

// AuditPool compares a pool's stored counters against its confirmed
// contributions. Drift is logged; the report is returned either way.
func (s *Service) AuditPool(ctx context.Context, poolID id.PoolID) (*models.AuditReport, error) {
	p, err := s.pools.FindByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "pool not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pool")
	}
	contributions, err := s.contributions.ListByPool(ctx, poolID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list contributions")
	}

	sum := models.Summarize(p, contributions)
	report := &models.AuditReport{
		PoolID:         poolID,
		RecordedRaised: p.RaisedAmount,
		RecordedSlots:  p.FilledSlots,
		ComputedRaised: sum.ConfirmedAmount,
		ComputedSlots:  sum.ConfirmedSlots,
		Capacity:       p.Capacity,
	}
	if !report.Consistent() {
		s.logger.ErrorContext(ctx, "pool counters drifted from confirmed contributions",
			"pool_id", poolID,
			"recorded_raised", report.RecordedRaised,
			"computed_raised", report.ComputedRaised,
			"recorded_slots", report.RecordedSlots,
			"computed_slots", report.ComputedSlots,
			"capacity", report.Capacity,
		)
	}
	return report, nil
}

func (s *Service) ownedPool(ctx context.Context, actor id.UserID, poolID id.PoolID) (*poolmodels.Pool, error) {
	p, err := s.pools.FindByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "pool not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pool")
	}
	if p.CreatorID != actor {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the pool creator can view or manage its contributions")
	}
	return p, nil
}
