package models

import (
	"strings"
	"time"

	id "poolpay/pkg/domain"
	dErrors "poolpay/pkg/domain-errors"
)

// Status is the pool lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s.
// completed and cancelled are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusActive || next == StatusCancelled
	case StatusActive:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

const (
	MaxTitleLength = 128
	MaxCapacity    = 100_000
	// MaxGoal bounds the goal in minor units so slot price times capacity,
	// and therefore RaisedAmount, stays far inside int64.
	MaxGoal int64 = 1_000_000_000_000_000
)

// Pool is a shared purchase: a funding goal split into a fixed number of slots.
//
// Invariants:
//   - Capacity is fixed at construction and at least 1
//   - 0 <= FilledSlots <= Capacity at all times
//   - RaisedAmount and FilledSlots never decrease
//   - RaisedAmount equals the sum of confirmed contribution amounts; FilledSlots
//     the sum of their slots
//   - Only funding on confirmation moves the counters; cancellation changes
//     status only
type Pool struct {
	ID           id.PoolID `json:"id"`
	CreatorID    id.UserID `json:"creator_id"`
	Title        string    `json:"title"`
	Goal         int64     `json:"goal"`
	Currency     string    `json:"currency"`
	Capacity     int       `json:"capacity"`
	RaisedAmount int64     `json:"raised_amount"`
	FilledSlots  int       `json:"filled_slots"`
	Status       Status    `json:"status"`
	Deadline     time.Time `json:"deadline"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewPool(
	poolID id.PoolID,
	creatorID id.UserID,
	title string,
	goal int64,
	currency string,
	capacity int,
	deadline time.Time,
	now time.Time,
) (*Pool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pool title cannot be empty")
	}
	if len(title) > MaxTitleLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pool title must be 128 characters or less")
	}
	if goal <= 0 || goal > MaxGoal {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pool goal must be positive and at most 10^15 minor units")
	}
	if capacity < 1 || capacity > MaxCapacity {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pool capacity must be between 1 and 100000")
	}
	if len(currency) != 3 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "currency must be a 3-letter ISO code")
	}
	if !deadline.After(now) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pool deadline must be in the future")
	}
	return &Pool{
		ID:        poolID,
		CreatorID: creatorID,
		Title:     title,
		Goal:      goal,
		Currency:  strings.ToUpper(currency),
		Capacity:  capacity,
		Status:    StatusActive,
		Deadline:  deadline,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsOpen reports whether the pool accepts new contributions at now.
func (p *Pool) IsOpen(now time.Time) bool {
	return p.Status == StatusActive && now.Before(p.Deadline)
}

// RemainingSlots is capacity not yet filled by confirmed contributions.
func (p *Pool) RemainingSlots() int {
	return p.Capacity - p.FilledSlots
}

// SlotPrice is the per-slot share of the goal, rounded up.
func (p *Pool) SlotPrice() int64 {
	capacity := int64(p.Capacity)
	price := p.Goal / capacity
	if p.Goal%capacity != 0 {
		price++
	}
	return price
}

// Reserve certifies that slots can be taken now, given held slots already
// promised to pending contributions. It does not change the pool.
func (p *Pool) Reserve(slots, held int, now time.Time) error {
	if !p.IsOpen(now) {
		return dErrors.NewWithReason(dErrors.CodeConflict, dErrors.ReasonPoolNotActive, "pool is not accepting contributions")
	}
	if slots < 1 || slots > p.Capacity {
		return dErrors.New(dErrors.CodeValidation, "slots must be between 1 and the pool capacity")
	}
	if held < 0 || slots > p.Capacity-p.FilledSlots-held {
		return dErrors.NewWithReason(dErrors.CodeConflict, dErrors.ReasonCapacityExceeded, "not enough slots available")
	}
	return nil
}

// CanApplyFunding checks the authoritative capacity bound for a confirmation.
func (p *Pool) CanApplyFunding(slots int) bool {
	return slots >= 1 && slots <= p.Capacity-p.FilledSlots
}

// ApplyFunding advances the counters. Must only be called after
// CanApplyFunding returns true and with a positive amount. An active pool whose last slot fills completes.
func (p *Pool) ApplyFunding(amount int64, slots int, now time.Time) {
	p.RaisedAmount += amount
	p.FilledSlots += slots
	if p.FilledSlots == p.Capacity && p.Status == StatusActive {
		p.Status = StatusCompleted
	}
	p.UpdatedAt = now
}

// CanCancel checks that actor may cancel the pool.
func (p *Pool) CanCancel(actor id.UserID) error {
	if p.CreatorID != actor {
		return dErrors.New(dErrors.CodeForbidden, "only the pool creator can cancel it")
	}
	if !p.Status.CanTransitionTo(StatusCancelled) {
		return dErrors.New(dErrors.CodeInvariantViolation, "pool can no longer be cancelled")
	}
	return nil
}

// ApplyCancel transitions the pool to cancelled. Counters are untouched.
func (p *Pool) ApplyCancel(now time.Time) {
	p.Status = StatusCancelled
	p.UpdatedAt = now
}

// IsFunded reports whether the goal has been reached.
func (p *Pool) IsFunded() bool {
	return p.RaisedAmount >= p.Goal
}

// Clone returns a copy safe to hand across store boundaries.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
