// Package payment defines the boundary to the external payment provider.
// Reconciliation only ever talks to a Gateway; the HTTP client and the fake
// both live in subpackages.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

//go:generate mockgen -source=gateway.go -destination=mocks/mocks.go -package=mocks Gateway

// Gateway initialises checkouts and verifies their outcome with the provider.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// InitializeRequest asks the provider for a checkout. Amount is in minor units.
type InitializeRequest struct {
	Reference   string
	Amount      int64
	Currency    string
	Email       string
	CallbackURL string
	Metadata    map[string]string
}

type InitializeResult struct {
	RedirectURL string
	AccessCode  string
}

// VerifyStatus is the provider's view of a payment, collapsed to what
// reconciliation acts on.
type VerifyStatus string

const (
	VerifySucceeded VerifyStatus = "succeeded"
	VerifyFailed    VerifyStatus = "failed"
	VerifyPending   VerifyStatus = "pending"
)

type VerifyResult struct {
	Reference         string
	Status            VerifyStatus
	ProviderReference string
	PaidAt            time.Time
	Amount            int64
	Currency          string
}

// EventChargeSuccess is the only notification event that confirms a payment.
const EventChargeSuccess = "charge.success"

// Notification is a provider push, already authenticated and decoded.
type Notification struct {
	Event             string
	Reference         string
	ProviderReference string
	PaidAt            time.Time
	Amount            int64
	Currency          string
}

// IsSuccess reports whether the notification announces a completed charge.
func (n Notification) IsSuccess() bool {
	return n.Event == EventChargeSuccess
}

// ErrCircuitOpen is returned without a network call while the provider is
// considered down.
var ErrCircuitOpen = errors.New("payment gateway unavailable: circuit open")

// ProviderError carries the provider's own message for a rejected call.
type ProviderError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: provider returned %d: %s", e.Op, e.StatusCode, e.Message)
}

// NotificationOutcome is how a notification was handled.
type NotificationOutcome string

const (
	NotificationProcessed NotificationOutcome = "processed"
	NotificationIgnored   NotificationOutcome = "ignored"
)
