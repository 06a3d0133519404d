package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"poolpay/internal/payment"
	dErrors "poolpay/pkg/domain-errors"
	"poolpay/pkg/platform/httputil"
	"poolpay/pkg/requestcontext"
)

const (
	maxBodyBytes     = 1 << 20
	defaultReplayTTL = 24 * time.Hour
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Reconciler

// Reconciler applies an authenticated notification.
type Reconciler interface {
	HandleNotification(ctx context.Context, n payment.Notification) (payment.NotificationOutcome, error)
}

// Handler serves the provider notification endpoint.
type Handler struct {
	reconciler Reconciler
	secret     []byte
	cache      ReplayCache
	replayTTL  time.Duration
	logger     *slog.Logger
	limit      func(http.Handler) http.Handler
}

type Option func(*Handler)

func WithReplayCache(c ReplayCache, ttl time.Duration) Option {
	return func(h *Handler) {
		h.cache = c
		if ttl > 0 {
			h.replayTTL = ttl
		}
	}
}

// WithRateLimit guards the endpoint with the given middleware.
func WithRateLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.limit = mw
	}
}

func New(reconciler Reconciler, secret string, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		reconciler: reconciler,
		secret:     []byte(secret),
		replayTTL:  defaultReplayTTL,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type ackResponse struct {
	Status string `json:"status"`
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.limit != nil {
			r.Use(h.limit)
		}
		r.Post("/webhooks/payment", h.handleNotification)
	})
}

func (h *Handler) handleNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unreadable body"))
		return
	}
	if !VerifySignature(h.secret, body, r.Header.Get(SignatureHeader)) {
		h.logger.WarnContext(ctx, "webhook signature rejected",
			"request_id", requestID,
			"client_ip", requestcontext.ClientIP(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid signature"))
		return
	}

	key := DeliveryKey(body)
	if h.cache != nil {
		seen, err := h.cache.Seen(ctx, key)
		if err != nil {
			h.logger.WarnContext(ctx, "webhook replay cache lookup failed",
				"request_id", requestID,
				"error", err,
			)
		} else if seen {
			httputil.WriteJSON(w, http.StatusOK, ackResponse{Status: "duplicate"})
			return
		}
	}

	n, err := ParseNotification(body)
	if err != nil {
		h.logger.WarnContext(ctx, "webhook payload rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	outcome, err := h.reconciler.HandleNotification(ctx, n)
	if err != nil {
		h.writeReconcileError(ctx, w, n, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Remember(ctx, key, h.replayTTL); err != nil {
			h.logger.WarnContext(ctx, "webhook replay cache write failed",
				"request_id", requestID,
				"error", err,
			)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, ackResponse{Status: string(outcome)})
}

// writeReconcileError acknowledges failures a retry cannot fix and lets the
// provider retry everything else.
func (h *Handler) writeReconcileError(ctx context.Context, w http.ResponseWriter, n payment.Notification, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"reference", n.Reference,
		"event", n.Event,
		"error", err,
	}
	switch {
	case dErrors.HasReason(err, dErrors.ReasonAmountMismatch),
		dErrors.HasReason(err, dErrors.ReasonCurrencyMismatch),
		dErrors.HasReason(err, dErrors.ReasonDuplicateContribution):
		h.logger.ErrorContext(ctx, "webhook notification rejected", attrs...)
		httputil.WriteJSON(w, http.StatusOK, ackResponse{Status: "rejected"})
	case dErrors.HasCode(err, dErrors.CodeIntegrityFault):
		h.logger.ErrorContext(ctx, "webhook notification hit integrity fault", attrs...)
		httputil.WriteError(w, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.WarnContext(ctx, "webhook notification timed out", attrs...)
		httputil.WriteError(w, dErrors.New(dErrors.CodeTimeout, "notification timed out"))
	default:
		h.logger.ErrorContext(ctx, "webhook notification failed", attrs...)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "notification failed"))
	}
}
