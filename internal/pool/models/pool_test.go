package models

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "poolpay/pkg/domain"
	dErrors "poolpay/pkg/domain-errors"
	"poolpay/pkg/testutil"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newPool(t *testing.T, capacity int) *Pool {
	t.Helper()
	p, err := NewPool(id.NewPoolID(), id.UserID(uuid.New()), "Bulk rice", 100_000, "ngn", capacity, now.Add(72*time.Hour), now)
	require.NoError(t, err)
	return p
}

func TestNewPool(t *testing.T) {
	t.Run("defaults to active with zero counters", func(t *testing.T) {
		p := newPool(t, 4)
		assert.Equal(t, StatusActive, p.Status)
		assert.Equal(t, "NGN", p.Currency)
		assert.Zero(t, p.RaisedAmount)
		assert.Zero(t, p.FilledSlots)
		assert.Equal(t, int64(25_000), p.SlotPrice())
	})

	cases := map[string]func() (*Pool, error){
		"empty title": func() (*Pool, error) {
			return NewPool(id.NewPoolID(), id.UserID(uuid.New()), "  ", 1, "NGN", 1, now.Add(time.Hour), now)
		},
		"zero goal": func() (*Pool, error) {
			return NewPool(id.NewPoolID(), id.UserID(uuid.New()), "x", 0, "NGN", 1, now.Add(time.Hour), now)
		},
		"zero capacity": func() (*Pool, error) {
			return NewPool(id.NewPoolID(), id.UserID(uuid.New()), "x", 1, "NGN", 0, now.Add(time.Hour), now)
		},
		"bad currency": func() (*Pool, error) {
			return NewPool(id.NewPoolID(), id.UserID(uuid.New()), "x", 1, "NAIRA", 1, now.Add(time.Hour), now)
		},
		"goal above maximum": func() (*Pool, error) {
			return NewPool(id.NewPoolID(), id.UserID(uuid.New()), "x", MaxGoal+1, "NGN", 1, now.Add(time.Hour), now)
		},
		"past deadline": func() (*Pool, error) {
			return NewPool(id.NewPoolID(), id.UserID(uuid.New()), "x", 1, "NGN", 1, now, now)
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := build()
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestReserve(t *testing.T) {
	t.Run("accepts up to remaining minus held", func(t *testing.T) {
		p := newPool(t, 5)
		p.FilledSlots = 2
		require.NoError(t, p.Reserve(2, 1, now))
		err := p.Reserve(2, 2, now)
		assert.True(t, dErrors.HasReason(err, dErrors.ReasonCapacityExceeded))
	})

	t.Run("rejects slot counts beyond capacity without wrapping", func(t *testing.T) {
		p := newPool(t, 2)
		p.FilledSlots = 1
		for _, slots := range []int{3, math.MaxInt} {
			assert.True(t, dErrors.HasCode(p.Reserve(slots, 0, now), dErrors.CodeValidation), "slots %d", slots)
		}
		err := p.Reserve(1, math.MaxInt, now)
		assert.True(t, dErrors.HasReason(err, dErrors.ReasonCapacityExceeded))
	})

	t.Run("rejects closed pools", func(t *testing.T) {
		p := newPool(t, 5)
		p.Status = StatusCancelled
		assert.True(t, dErrors.HasReason(p.Reserve(1, 0, now), dErrors.ReasonPoolNotActive))
	})

	t.Run("rejects after deadline", func(t *testing.T) {
		p := newPool(t, 5)
		assert.True(t, dErrors.HasReason(p.Reserve(1, 0, p.Deadline), dErrors.ReasonPoolNotActive))
	})
}

func TestApplyFunding(t *testing.T) {
	p := newPool(t, 3)
	require.True(t, p.CanApplyFunding(2))
	p.ApplyFunding(50_000, 2, now)
	assert.Equal(t, StatusActive, p.Status)

	assert.False(t, p.CanApplyFunding(2))
	require.True(t, p.CanApplyFunding(1))
	p.ApplyFunding(25_000, 1, now)
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, 3, p.FilledSlots)
	assert.Equal(t, int64(75_000), p.RaisedAmount)
}

func TestCanApplyFundingNeverWraps(t *testing.T) {
	p := newPool(t, 2)
	p.FilledSlots = 1
	assert.False(t, p.CanApplyFunding(math.MaxInt))
	assert.False(t, p.CanApplyFunding(math.MinInt))
	assert.True(t, p.CanApplyFunding(1))
}

func TestSlotPriceAtMaximumGoal(t *testing.T) {
	p, err := NewPool(id.NewPoolID(), id.UserID(uuid.New()), "Cargo", MaxGoal, "USD", 3, now.Add(time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, MaxGoal/3+1, p.SlotPrice())

	p.Goal = math.MaxInt64
	p.Capacity = 2
	assert.Equal(t, int64(math.MaxInt64/2+1), p.SlotPrice())
}

func TestApplyFundingKeepsCancelledStatus(t *testing.T) {
	p := newPool(t, 1)
	p.ApplyCancel(now)
	p.ApplyFunding(100_000, 1, now)
	assert.Equal(t, StatusCancelled, p.Status)
	assert.Equal(t, 1, p.FilledSlots)
}

func TestCancel(t *testing.T) {
	p := newPool(t, 3)
	p.FilledSlots = 1
	p.RaisedAmount = 10

	assert.True(t, dErrors.HasCode(p.CanCancel(id.UserID(uuid.New())), dErrors.CodeForbidden))
	require.NoError(t, p.CanCancel(p.CreatorID))
	p.ApplyCancel(now)
	assert.Equal(t, StatusCancelled, p.Status)
	assert.Equal(t, 1, p.FilledSlots, "cancellation never decrements")
	assert.Equal(t, int64(10), p.RaisedAmount)

	assert.True(t, dErrors.HasCode(p.CanCancel(p.CreatorID), dErrors.CodeInvariantViolation))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusActive.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusPending.CanTransitionTo(StatusActive))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusActive))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusActive))
	assert.False(t, Status("bogus").IsValid())
}

func TestPoolFillsToCompletion(t *testing.T) {
	testutil.Given(t, "an active pool with four slots", func(t *testing.T) {
		p := newPool(t, 4)

		testutil.When(t, "three slots are funded", func(t *testing.T) {
			require.True(t, p.CanApplyFunding(3))
			p.ApplyFunding(75_000, 3, now)

			testutil.Then(t, "it stays active with one slot left", func(t *testing.T) {
				assert.Equal(t, StatusActive, p.Status)
				assert.Equal(t, 1, p.RemainingSlots())
			})
		})

		testutil.When(t, "a confirmation asks for two more", func(t *testing.T) {
			testutil.Then(t, "the capacity check refuses it", func(t *testing.T) {
				assert.False(t, p.CanApplyFunding(2))
			})
		})

		testutil.When(t, "the last slot is funded", func(t *testing.T) {
			p.ApplyFunding(25_000, 1, now)

			testutil.Then(t, "the pool completes and is funded", func(t *testing.T) {
				assert.Equal(t, StatusCompleted, p.Status)
				assert.True(t, p.IsFunded())
				assert.False(t, p.IsOpen(now))
			})
		})
	})
}
