// Package config loads service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	platformstrings "poolpay/pkg/platform/strings"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config is the full service configuration.
type Config struct {
	Server   Server
	Log      Log
	Auth     Auth
	Storage  Storage
	Postgres PostgresConfig
	Redis    RedisConfig
	Gateway  Gateway
	Webhook  Webhook
	Pools    Pools
	Outbox   Outbox
	Kafka    KafkaConfig
	Otel     Otel
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"POOLPAY_ADDR" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"POOLPAY_REQUEST_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"POOLPAY_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AdminToken      string        `env:"POOLPAY_ADMIN_TOKEN"`
}

type Log struct {
	Level  string `env:"POOLPAY_LOG_LEVEL" envDefault:"info"`
	Format string `env:"POOLPAY_LOG_FORMAT" envDefault:"json"`
}

type Auth struct {
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER"`
	JWTAudience   string `env:"JWT_AUDIENCE"`
}

type Storage struct {
	Driver string `env:"POOLPAY_STORAGE" envDefault:"memory"`
}

type PostgresConfig struct {
	DSN             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig configures the optional Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Gateway configures the payment provider. An empty secret key selects the
// in-process fake gateway.
type Gateway struct {
	BaseURL          string        `env:"PAYSTACK_BASE_URL" envDefault:"https://api.paystack.co"`
	SecretKey        string        `env:"PAYSTACK_SECRET_KEY"`
	CallbackURL      string        `env:"POOLPAY_CALLBACK_URL" envDefault:"http://localhost:8080/payments/callback"`
	Timeout          time.Duration `env:"PAYSTACK_TIMEOUT" envDefault:"10s"`
	FailureThreshold int           `env:"PAYSTACK_BREAKER_FAILURES" envDefault:"5"`
	SuccessThreshold int           `env:"PAYSTACK_BREAKER_SUCCESSES" envDefault:"2"`
	Cooldown         time.Duration `env:"PAYSTACK_BREAKER_COOLDOWN" envDefault:"15s"`
}

// Webhook configures the provider notification endpoint. An empty Secret
// falls back to the gateway secret key, which is what Paystack signs with.
type Webhook struct {
	Secret        string        `env:"POOLPAY_WEBHOOK_SECRET"`
	RatePerSecond float64       `env:"POOLPAY_WEBHOOK_RPS" envDefault:"20"`
	Burst         int           `env:"POOLPAY_WEBHOOK_BURST" envDefault:"40"`
	ReplayTTL     time.Duration `env:"POOLPAY_WEBHOOK_REPLAY_TTL" envDefault:"24h"`
}

type Pools struct {
	ReservationHold time.Duration `env:"POOLPAY_RESERVATION_HOLD" envDefault:"30m"`
	DefaultCurrency string        `env:"POOLPAY_DEFAULT_CURRENCY" envDefault:"NGN"`
}

type Outbox struct {
	PollInterval time.Duration `env:"POOLPAY_OUTBOX_POLL" envDefault:"2s"`
	BatchSize    int           `env:"POOLPAY_OUTBOX_BATCH" envDefault:"100"`
	ClaimLease   time.Duration `env:"POOLPAY_OUTBOX_CLAIM_LEASE" envDefault:"30s"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"poolpay.contributions"`
}

type Otel struct {
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"poolpay"`
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Kafka.Brokers = platformstrings.DedupeAndTrim(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WebhookSecret is the key notification signatures are checked against.
func (c Config) WebhookSecret() string {
	if c.Webhook.Secret != "" {
		return c.Webhook.Secret
	}
	return c.Gateway.SecretKey
}

// Validate rejects combinations the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when POOLPAY_STORAGE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Pools.ReservationHold <= 0 {
		errs = append(errs, errors.New("POOLPAY_RESERVATION_HOLD must be positive"))
	}
	if c.Webhook.RatePerSecond <= 0 || c.Webhook.Burst < 1 {
		errs = append(errs, errors.New("webhook rate limit must be positive"))
	}
	if len(c.Pools.DefaultCurrency) != 3 || strings.ToUpper(c.Pools.DefaultCurrency) != c.Pools.DefaultCurrency {
		errs = append(errs, fmt.Errorf("invalid default currency %q", c.Pools.DefaultCurrency))
	}
	return errors.Join(errs...)
}
