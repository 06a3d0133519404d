package models

import (
	poolmodels "poolpay/internal/pool/models"
	id "poolpay/pkg/domain"
)

// UserContribution is a contribution joined with its pool. Pool is nil when
// the pool could not be loaded.
type UserContribution struct {
	Contribution *Contribution
	Pool         *poolmodels.Pool
}

// PoolSummary aggregates one pool's contributions for its creator.
type PoolSummary struct {
	Pool            *poolmodels.Pool
	ConfirmedAmount int64
	ConfirmedSlots  int
	ConfirmedCount  int
	PendingCount    int
	FailedCount     int
}

// Dashboard is the creator view over all their pools. Totals are per
// currency since pools may differ.
type Dashboard struct {
	CreatorID        id.UserID
	Pools            []PoolSummary
	RaisedByCurrency map[string]int64
	ConfirmedSlots   int
	Contributors     int
	PendingCount     int
}

// Summarize recomputes a pool summary from contribution rows.
func Summarize(pool *poolmodels.Pool, contributions []*Contribution) PoolSummary {
	sum := PoolSummary{Pool: pool}
	for _, c := range contributions {
		switch c.Status {
		case StatusConfirmed:
			sum.ConfirmedAmount += c.Amount
			sum.ConfirmedSlots += c.Slots
			sum.ConfirmedCount++
		case StatusPending:
			sum.PendingCount++
		case StatusFailed:
			sum.FailedCount++
		}
	}
	return sum
}

// AuditReport compares a pool's stored counters with the totals recomputed
// from its confirmed contributions.
type AuditReport struct {
	PoolID         id.PoolID
	RecordedRaised int64
	RecordedSlots  int
	ComputedRaised int64
	ComputedSlots  int
	Capacity       int
}

// Consistent reports whether the counters match and respect capacity.
func (r AuditReport) Consistent() bool {
	return r.RecordedRaised == r.ComputedRaised &&
		r.RecordedSlots == r.ComputedSlots &&
		r.RecordedSlots <= r.Capacity
}
