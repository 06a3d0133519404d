package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	contributionservice "poolpay/internal/contribution/service"
	contributionstore "poolpay/internal/contribution/store"
	"poolpay/internal/outbox"
	outboxstore "poolpay/internal/outbox/store"
	"poolpay/internal/payment"
	"poolpay/internal/payment/fake"
	"poolpay/internal/payment/paystack"
	"poolpay/internal/platform/config"
	"poolpay/internal/platform/postgres"
	poolservice "poolpay/internal/pool/service"
	poolstore "poolpay/internal/pool/store"
	userstore "poolpay/internal/user/store"
	"poolpay/pkg/platform/circuit"
	txcontext "poolpay/pkg/platform/tx"
)

type outboxStore interface {
	contributionservice.OutboxStore
	outbox.Store
}

type poolStore interface {
	poolservice.Store
	contributionservice.PoolStore
}

// stores groups the persistence backends selected at startup.
type stores struct {
	pools         poolStore
	contributions contributionservice.Store
	users         contributionservice.UserStore
	outbox        outboxStore
	tx            txcontext.Runner
	db            *sql.DB
}

func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		logger.Warn("using in-memory storage; data is lost on restart")
		return &stores{
			pools:         poolstore.NewInMemory(),
			contributions: contributionstore.NewInMemory(),
			users:         userstore.NewInMemory(),
			outbox:        outboxstore.NewInMemory(),
			tx:            txcontext.NewMemoryRunner(),
		}, nil
	}

	db, err := postgres.Open(ctx, postgres.Config{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("connected to postgres")
	return &stores{
		pools:         poolstore.NewPostgres(db),
		contributions: contributionstore.NewPostgres(db),
		users:         userstore.NewPostgres(db),
		outbox:        outboxstore.NewPostgres(db),
		tx:            postgres.NewTxRunner(db),
		db:            db,
	}, nil
}

// newGateway returns the Paystack client, or the in-process fake when no
// secret key is configured.
func newGateway(cfg config.Gateway, logger *slog.Logger) payment.Gateway {
	if cfg.SecretKey == "" {
		logger.Warn("PAYSTACK_SECRET_KEY not set; using fake payment gateway")
		return fake.New()
	}
	breaker := circuit.New("paystack",
		circuit.WithFailureThreshold(cfg.FailureThreshold),
		circuit.WithSuccessThreshold(cfg.SuccessThreshold),
		circuit.WithCooldown(cfg.Cooldown),
	)
	return paystack.New(cfg.SecretKey,
		paystack.WithBaseURL(cfg.BaseURL),
		paystack.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		paystack.WithBreaker(breaker),
		paystack.WithLogger(logger),
	)
}

// newPublisher returns the Kafka publisher when brokers are configured and
// the log publisher otherwise. close is always safe to call.
func newPublisher(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (outbox.Publisher, func(), error) {
	if len(cfg.Brokers) == 0 {
		return outbox.NewLogPublisher(logger), func() {}, nil
	}
	p, err := outbox.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	if err := p.EnsureTopic(ctx, 3, 1); err != nil {
		logger.Warn("could not ensure outbox topic", "topic", cfg.Topic, "error", err)
	}
	return p, p.Close, nil
}
