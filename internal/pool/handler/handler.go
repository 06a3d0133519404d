package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"poolpay/internal/pool/models"
	"poolpay/internal/pool/service"
	id "poolpay/pkg/domain"
	dErrors "poolpay/pkg/domain-errors"
	"poolpay/pkg/platform/httputil"
	"poolpay/pkg/requestcontext"
)

// Service defines the pool operations exposed over HTTP.
type Service interface {
	CreatePool(ctx context.Context, cmd service.CreatePoolCommand) (*models.Pool, error)
	GetPool(ctx context.Context, poolID id.PoolID) (*models.Pool, error)
	ListByCreator(ctx context.Context, creatorID id.UserID) ([]*models.Pool, error)
	CancelPool(ctx context.Context, actor id.UserID, poolID id.PoolID) (*models.Pool, error)
}

// Handler serves the pool endpoints.
type Handler struct {
	pools       Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

// New creates a pool Handler. requireAuth guards the creator routes.
func New(pools Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{pools: pools, logger: logger, requireAuth: requireAuth}
}

// Register registers the pool routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/pools/{poolID}", h.handleGetPool)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/pools", h.handleCreatePool)
		r.Post("/pools/{poolID}/cancel", h.handleCancelPool)
		r.Get("/me/pools", h.handleListMyPools)
	})
}

func (h *Handler) handleCreatePool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreatePoolRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.pools.CreatePool(ctx, service.CreatePoolCommand{
		CreatorID: userID,
		Title:     req.Title,
		Goal:      req.GoalMinor(),
		Currency:  req.Currency,
		Capacity:  req.Capacity,
		Deadline:  req.Deadline,
	})
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create pool")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPoolResponse(p))
}

func (h *Handler) handleGetPool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	poolID, err := id.ParsePoolID(chi.URLParam(r, "poolID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.pools.GetPool(ctx, poolID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to get pool")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPoolResponse(p))
}

func (h *Handler) handleCancelPool(w http.ResponseWriter, r *http.Request) {
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
	p, err := h.pools.CancelPool(ctx, userID, poolID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to cancel pool")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPoolResponse(p))
}

func (h *Handler) handleListMyPools(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	pools, err := h.pools.ListByCreator(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list pools")
		return
	}
	resp := PoolListResponse{Pools: make([]PoolResponse, 0, len(pools))}
	for _, p := range pools {
		resp.Pools = append(resp.Pools, toPoolResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		// This should never happen if RequireAuth middleware is configured correctly
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
