package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"poolpay/internal/contribution/models"
	"poolpay/internal/contribution/service"
	poolmodels "poolpay/internal/pool/models"
	id "poolpay/pkg/domain"
	dErrors "poolpay/pkg/domain-errors"
	"poolpay/pkg/platform/httputil"
	"poolpay/pkg/requestcontext"
)

// Service defines the contribution operations exposed over HTTP.
type Service interface {
	CreateIntent(ctx context.Context, req service.CreateIntentRequest) (*service.IntentResult, error)
	VerifyAndReconcile(ctx context.Context, ref string) (*models.Contribution, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]models.UserContribution, error)
	ListByPool(ctx context.Context, actor id.UserID, poolID id.PoolID) (*poolmodels.Pool, []*models.Contribution, error)
	CreatorDashboard(ctx context.Context, creatorID id.UserID) (*models.Dashboard, error)
	UpdateDeliveryStatus(ctx context.Context, actor id.UserID, ref string, status models.DeliveryStatus) (*models.Contribution, error)
	AuditPool(ctx context.Context, poolID id.PoolID) (*models.AuditReport, error)
}

// Handler serves the contribution, callback and audit endpoints.
type Handler struct {
	contributions Service
	logger        *slog.Logger
	requireAuth   func(http.Handler) http.Handler
	callbackLimit func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithCallbackRateLimit guards the payment redirect callback.
func WithCallbackRateLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.callbackLimit = mw
	}
}

// New creates a contribution Handler. requireAuth guards the user routes.
func New(contributions Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler, opts ...Option) *Handler {
	h := &Handler{
		contributions: contributions,
		logger:        logger,
		requireAuth:   requireAuth,
		callbackLimit: func(next http.Handler) http.Handler { return next },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the public and authenticated routes.
func (h *Handler) Register(r chi.Router) {
	r.With(h.callbackLimit).Get("/payments/callback", h.handleCallback)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/pools/{poolID}/contributions", h.handleCreateIntent)
		r.Get("/pools/{poolID}/contributions", h.handleListByPool)
		r.Get("/me/contributions", h.handleListMine)
		r.Get("/me/dashboard", h.handleDashboard)
		r.Patch("/contributions/{reference}/delivery", h.handleUpdateDelivery)
	})
}

// RegisterAdmin registers the audit route. The caller supplies the admin guard.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/pools/{poolID}/audit", h.handleAudit)
}

func (h *Handler) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	poolID, err := id.ParsePoolID(chi.URLParam(r, "poolID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateIntentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	email := requestcontext.Email(ctx)
	if email == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "an email address is required to pay"))
		return
	}

	res, err := h.contributions.CreateIntent(ctx, service.CreateIntentRequest{
		PoolID:      poolID,
		UserID:      userID,
		Email:       email,
		Amount:      req.AmountMinor(),
		Currency:    req.Currency,
		Slots:       req.Slots,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create payment intent")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, IntentResponse{
		Contribution: toContributionResponse(res.Contribution, req.Currency),
		RedirectURL:  res.RedirectURL,
		AccessCode:   res.AccessCode,
	})
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ref := r.URL.Query().Get("reference")
	if ref == "" {
		// Some providers send trxref instead.
		ref = r.URL.Query().Get("trxref")
	}
	if ref == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "reference is required"))
		return
	}
	if !models.IsValidReference(ref) {
		h.logger.WarnContext(ctx, "callback with malformed reference",
			"request_id", requestcontext.RequestID(ctx),
			"client_ip", requestcontext.ClientIP(ctx),
		)
		httputil.WriteError(w, dErrors.NewWithReason(dErrors.CodeNotFound, dErrors.ReasonUnknownReference, "unknown payment reference"))
		return
	}

	c, err := h.contributions.VerifyAndReconcile(ctx, ref)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to reconcile payment callback")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCallbackResponse(c))
}

func (h *Handler) handleListByPool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	poolID, err := id.ParsePoolID(chi.URLParam(r, "poolID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, contributions, err := h.contributions.ListByPool(ctx, userID, poolID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list pool contributions")
		return
	}
	resp := PoolContributionsResponse{
		PoolID:        p.ID.String(),
		Contributions: make([]ContributionResponse, 0, len(contributions)),
	}
	for _, c := range contributions {
		resp.Contributions = append(resp.Contributions, toContributionResponse(c, p.Currency))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	rows, err := h.contributions.ListByUser(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list contributions")
		return
	}
	resp := UserContributionsResponse{Contributions: make([]UserContributionResponse, 0, len(rows))}
	for _, row := range rows {
		resp.Contributions = append(resp.Contributions, toUserContributionResponse(row))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	dash, err := h.contributions.CreatorDashboard(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to build dashboard")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDashboardResponse(dash))
}

func (h *Handler) handleUpdateDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ref := chi.URLParam(r, "reference")
	if !models.IsValidReference(ref) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid contribution reference"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateDeliveryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.contributions.UpdateDeliveryStatus(ctx, userID, ref, req.status)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to update delivery status")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toContributionResponse(c, ""))
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	poolID, err := id.ParsePoolID(chi.URLParam(r, "poolID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	report, err := h.contributions.AuditPool(ctx, poolID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to audit pool")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditResponse(report))
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeIntegrityFault:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	default:
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
