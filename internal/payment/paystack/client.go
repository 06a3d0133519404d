// Package paystack is the HTTP adapter for the Paystack transaction API.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"poolpay/internal/payment"
	"poolpay/pkg/platform/circuit"
)

const (
	defaultBaseURL = "https://api.paystack.co"
	defaultTimeout = 10 * time.Second
	maxResponse    = 1 << 20
)

// Client implements payment.Gateway against Paystack.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
	tracer     trace.Tracer
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(secretKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		breaker:    circuit.New("paystack"),
		logger:     slog.Default(),
		tracer:     otel.Tracer("poolpay/payment"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type initializeBody struct {
	Email       string            `json:"email"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency,omitempty"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	Reference string    `json:"reference"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	PaidAt    time.Time `json:"paid_at"`
}

func (c *Client) Initialize(ctx context.Context, req payment.InitializeRequest) (*payment.InitializeResult, error) {
	ctx, span := c.tracer.Start(ctx, "paystack.Initialize",
		trace.WithAttributes(attribute.String("reference", req.Reference)))
	defer span.End()

	body := initializeBody{
		Email:       req.Email,
		Amount:      strconv.FormatInt(req.Amount, 10),
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}
	var out envelope[initializeData]
	if err := c.do(ctx, "initialize", http.MethodPost, "/transaction/initialize", body, &out); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if out.Data.AuthorizationURL == "" {
		err := &payment.ProviderError{Op: "initialize", StatusCode: http.StatusOK, Message: "missing authorization_url"}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &payment.InitializeResult{
		RedirectURL: out.Data.AuthorizationURL,
		AccessCode:  out.Data.AccessCode,
	}, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (*payment.VerifyResult, error) {
	ctx, span := c.tracer.Start(ctx, "paystack.Verify",
		trace.WithAttributes(attribute.String("reference", reference)))
	defer span.End()

	var out envelope[verifyData]
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := c.do(ctx, "verify", http.MethodGet, path, nil, &out); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if out.Data.Reference != "" && out.Data.Reference != reference {
		err := &payment.ProviderError{Op: "verify", StatusCode: http.StatusOK, Message: "reference mismatch"}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	res := &payment.VerifyResult{
		Reference: reference,
		Status:    mapStatus(out.Data.Status),
		Amount:    out.Data.Amount,
		Currency:  out.Data.Currency,
		PaidAt:    out.Data.PaidAt,
	}
	if out.Data.ID != 0 {
		res.ProviderReference = strconv.FormatInt(out.Data.ID, 10)
	}
	span.SetAttributes(attribute.String("status", string(res.Status)))
	return res, nil
}

// mapStatus folds Paystack's transaction states into succeeded/failed/pending.
func mapStatus(s string) payment.VerifyStatus {
	switch s {
	case "success":
		return payment.VerifySucceeded
	case "failed", "abandoned", "reversed":
		return payment.VerifyFailed
	default:
		return payment.VerifyPending
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) error {
	if !c.breaker.Allow() {
		return payment.ErrCircuitOpen
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(ctx, op, err)
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		c.recordFailure(ctx, op, err)
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		perr := &payment.ProviderError{Op: op, StatusCode: resp.StatusCode, Message: providerMessage(raw)}
		c.recordFailure(ctx, op, perr)
		return perr
	}
	// 4xx is the provider rejecting our request; it says nothing about its health.
	c.recordSuccess(ctx)
	if resp.StatusCode >= http.StatusBadRequest {
		return &payment.ProviderError{Op: op, StatusCode: resp.StatusCode, Message: providerMessage(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &payment.ProviderError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response"}
	}
	var head envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &head); err == nil && !head.Status {
		return &payment.ProviderError{Op: op, StatusCode: resp.StatusCode, Message: head.Message}
	}
	return nil
}

func (c *Client) recordFailure(ctx context.Context, op string, err error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "payment gateway circuit opened",
			"breaker", c.breaker.Name(),
			"op", op,
			"error", err,
		)
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "payment gateway circuit closed", "breaker", c.breaker.Name())
	}
}

func providerMessage(raw []byte) string {
	var head envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &head); err == nil && head.Message != "" {
		return head.Message
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return strings.TrimSpace(string(raw))
}
