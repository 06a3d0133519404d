// Package fake is an in-process payment.Gateway for tests and local runs.
package fake

import (
	"context"
	"errors"
	"sync"
	"time"

	"poolpay/internal/payment"
)

// ErrUnknownReference is returned by Verify for references never initialised.
var ErrUnknownReference = errors.New("fake gateway: unknown reference")

// Gateway records initialisations and answers Verify from configured results.
// Without an explicit result, an initialised reference verifies as succeeded
// for its full amount.
type Gateway struct {
	mu            sync.Mutex
	initialized   map[string]payment.InitializeRequest
	results       map[string]*payment.VerifyResult
	InitializeErr error
	VerifyErr     error
	BaseURL       string
	now           func() time.Time
}

func New() *Gateway {
	return &Gateway{
		initialized: make(map[string]payment.InitializeRequest),
		results:     make(map[string]*payment.VerifyResult),
		BaseURL:     "https://checkout.fake.local/",
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (g *Gateway) Initialize(ctx context.Context, req payment.InitializeRequest) (*payment.InitializeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.InitializeErr != nil {
		return nil, g.InitializeErr
	}
	g.initialized[req.Reference] = req
	return &payment.InitializeResult{
		RedirectURL: g.BaseURL + req.Reference,
		AccessCode:  "fake_" + req.Reference,
	}, nil
}

func (g *Gateway) Verify(ctx context.Context, reference string) (*payment.VerifyResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.VerifyErr != nil {
		return nil, g.VerifyErr
	}
	if res, ok := g.results[reference]; ok {
		cp := *res
		return &cp, nil
	}
	req, ok := g.initialized[reference]
	if !ok {
		return nil, ErrUnknownReference
	}
	return &payment.VerifyResult{
		Reference:         reference,
		Status:            payment.VerifySucceeded,
		ProviderReference: "fake_txn_" + reference,
		PaidAt:            g.now(),
		Amount:            req.Amount,
		Currency:          req.Currency,
	}, nil
}

// SetResult fixes the Verify answer for reference.
func (g *Gateway) SetResult(reference string, res payment.VerifyResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	res.Reference = reference
	g.results[reference] = &res
}

// Initialized returns the request recorded for reference.
func (g *Gateway) Initialized(reference string) (payment.InitializeRequest, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	req, ok := g.initialized[reference]
	return req, ok
}

// InitializeCount reports how many checkouts were started.
func (g *Gateway) InitializeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.initialized)
}
