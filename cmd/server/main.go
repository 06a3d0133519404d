package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	contributionhandler "poolpay/internal/contribution/handler"
	contributionmetrics "poolpay/internal/contribution/metrics"
	contributionservice "poolpay/internal/contribution/service"
	jwttoken "poolpay/internal/jwt_token"
	"poolpay/internal/outbox"
	"poolpay/internal/payment/webhook"
	"poolpay/internal/platform/config"
	"poolpay/internal/platform/httpserver"
	"poolpay/internal/platform/logger"
	"poolpay/internal/platform/metrics"
	"poolpay/internal/platform/otel"
	"poolpay/internal/platform/redis"
	poolhandler "poolpay/internal/pool/handler"
	poolmetrics "poolpay/internal/pool/metrics"
	poolservice "poolpay/internal/pool/service"
	"poolpay/pkg/platform/httputil"
	adminmw "poolpay/pkg/platform/middleware/admin"
	authmw "poolpay/pkg/platform/middleware/auth"
	"poolpay/pkg/platform/middleware/metadata"
	"poolpay/pkg/platform/middleware/ratelimit"
	request "poolpay/pkg/platform/middleware/request"
	"poolpay/pkg/platform/middleware/requesttime"
)

// main wires dependencies and runs the HTTP server and the outbox worker
// until a signal arrives. Business logic lives in internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	shutdownTracing, err := otel.Setup(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.Close()

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	publisher, closePublisher, err := newPublisher(ctx, cfg.Kafka, log)
	if err != nil {
		return fmt.Errorf("create outbox publisher: %w", err)
	}
	defer closePublisher()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(reg)

	pools := poolservice.New(st.pools,
		poolservice.WithLogger(log),
		poolservice.WithMetrics(poolmetrics.New(reg)),
		poolservice.WithDefaultCurrency(cfg.Pools.DefaultCurrency),
	)
	contributions := contributionservice.New(st.contributions, st.pools, st.users, st.outbox, st.tx,
		newGateway(cfg.Gateway, log),
		contributionservice.WithLogger(log),
		contributionservice.WithMetrics(contributionmetrics.New(reg)),
		contributionservice.WithReservationHold(cfg.Pools.ReservationHold),
		contributionservice.WithCallbackURL(cfg.Gateway.CallbackURL),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	requireAuth := authmw.RequireAuth(jwttoken.NewMiddlewareValidator(jwtService), log)

	limiter := ratelimit.New(cfg.Webhook.RatePerSecond, cfg.Webhook.Burst)
	limiter.StartJanitor(ctx)
	perIP := ratelimit.PerIP(limiter, log)

	var replay webhook.ReplayCache = webhook.NewMemoryReplayCache()
	if rdb != nil {
		replay = webhook.NewRedisReplayCache(rdb.Client)
	}
	if cfg.WebhookSecret() == "" {
		log.Warn("no webhook secret configured; all provider notifications will be rejected")
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(httpMetrics.LatencyMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if rdb != nil {
			if err := rdb.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	webhook.New(contributions, cfg.WebhookSecret(), log,
		webhook.WithReplayCache(replay, cfg.Webhook.ReplayTTL),
		webhook.WithRateLimit(perIP),
	).Register(r)

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(cfg.Server.RequestTimeout))
		r.Use(request.ContentTypeJSON)
		poolhandler.New(pools, log, requireAuth).Register(r)

		contributionHandler := contributionhandler.New(contributions, log, requireAuth,
			contributionhandler.WithCallbackRateLimit(perIP),
		)
		contributionHandler.Register(r)
		if cfg.Server.AdminToken != "" {
			r.Group(func(r chi.Router) {
				r.Use(adminmw.RequireAdminToken(cfg.Server.AdminToken, log))
				contributionHandler.RegisterAdmin(r)
			})
		}
	})

	worker := outbox.NewWorker(st.outbox, st.tx, publisher,
		outbox.WithLogger(log),
		outbox.WithMetrics(outbox.NewMetrics(reg)),
		outbox.WithPollInterval(cfg.Outbox.PollInterval),
		outbox.WithBatchSize(cfg.Outbox.BatchSize),
		outbox.WithClaimLease(cfg.Outbox.ClaimLease),
	)

	srv := httpserver.New(cfg.Server, r, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting poolpay", "addr", cfg.Server.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
