package models

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"

	id "poolpay/pkg/domain"
	dErrors "poolpay/pkg/domain-errors"
)

// Status is the contribution lifecycle state. pending moves exactly once to
// confirmed or failed; both are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// DeliveryStatus is a cosmetic fulfilment label set by the pool creator.
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryProcessing DeliveryStatus = "processing"
	DeliveryShipped    DeliveryStatus = "shipped"
	DeliveryDelivered  DeliveryStatus = "delivered"
)

// ParseDeliveryStatus validates a label from external input.
func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch d := DeliveryStatus(strings.ToLower(strings.TrimSpace(s))); d {
	case DeliveryPending, DeliveryProcessing, DeliveryShipped, DeliveryDelivered:
		return d, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "delivery status must be one of pending, processing, shipped, delivered")
}

const (
	referencePrefix = "pl_"
	referenceHexLen = 32
)

// NewReference returns a fresh payment reference: "pl_" followed by the 32
// lowercase hex digits of a random UUID.
func NewReference() string {
	u := uuid.New()
	return referencePrefix + hex.EncodeToString(u[:])
}

// IsValidReference reports whether s has the shape NewReference produces.
func IsValidReference(s string) bool {
	if len(s) != len(referencePrefix)+referenceHexLen || !strings.HasPrefix(s, referencePrefix) {
		return false
	}
	for _, r := range s[len(referencePrefix):] {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// Contribution is one contributor's payment attempt against a pool.
//
// Invariants:
//   - Reference is unique and never changes
//   - Amount > 0 and Slots >= 1
//   - Status leaves pending at most once; confirmed and failed are final
//   - GatewayRef and ConfirmedAt are set only on confirmation
type Contribution struct {
	ID             id.ContributionID
	Reference      string
	PoolID         id.PoolID
	UserID         id.UserID
	Email          string
	Amount         int64
	Slots          int
	Status         Status
	GatewayRef     string
	DeliveryStatus DeliveryStatus
	ConfirmedAt    *time.Time
	FailedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewContribution builds a pending contribution with a fresh reference.
func NewContribution(poolID id.PoolID, userID id.UserID, email string, amount int64, slots int, now time.Time) (*Contribution, error) {
	if poolID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pool ID cannot be nil")
	}
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user ID cannot be nil")
	}
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "amount must be positive")
	}
	if slots < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "slots must be at least 1")
	}
	return &Contribution{
		ID:             id.NewContributionID(),
		Reference:      NewReference(),
		PoolID:         poolID,
		UserID:         userID,
		Email:          email,
		Amount:         amount,
		Slots:          slots,
		Status:         StatusPending,
		DeliveryStatus: DeliveryPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsHeld reports whether a pending contribution still holds its slots. since
// is the start of the reservation hold window.
func (c *Contribution) IsHeld(since time.Time) bool {
	return c.Status == StatusPending && !c.CreatedAt.Before(since)
}

// ApplyConfirm marks a pending contribution confirmed. Callers must have
// checked the status under a concurrency guard.
func (c *Contribution) ApplyConfirm(gatewayRef string, now time.Time) {
	c.Status = StatusConfirmed
	c.GatewayRef = gatewayRef
	t := now
	c.ConfirmedAt = &t
	c.UpdatedAt = now
}

// ApplyFail marks a pending contribution failed.
func (c *Contribution) ApplyFail(now time.Time) {
	c.Status = StatusFailed
	t := now
	c.FailedAt = &t
	c.UpdatedAt = now
}

func (c *Contribution) Clone() *Contribution {
	cp := *c
	if c.ConfirmedAt != nil {
		t := *c.ConfirmedAt
		cp.ConfirmedAt = &t
	}
	if c.FailedAt != nil {
		t := *c.FailedAt
		cp.FailedAt = &t
	}
	return &cp
}
