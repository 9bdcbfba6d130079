// Package configs parses the application configuration from environment
// variables.
package configs

import (
	"time"

	"github.com/caarlos0/env/v6"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	// -- Feature flags --

	DisableIdempotencyMiddleware bool `env:"NFT_WALLET_DISABLE_IDEMPOTENCY_MIDDLEWARE" envDefault:"false"`
	DisableRateLimit             bool `env:"NFT_WALLET_DISABLE_RATE_LIMIT" envDefault:"false"`

	// -- Network --

	// Bech32 human-readable part accepted for recipient addresses,
	// e.g. "smr" for Shimmer mainnet or "rms" for its testnet.
	Bech32Hrp string `env:"NFT_WALLET_BECH32_HRP" envDefault:"smr"`

	// -- Wallet daemon --

	// Base URL of the wallet daemon which signs and submits transfers.
	// When empty, transfers are only simulated.
	WalletURL            string        `env:"NFT_WALLET_WALLET_URL"`
	WalletRequestTimeout time.Duration `env:"NFT_WALLET_WALLET_REQUEST_TIMEOUT" envDefault:"30s"`
	WalletMaxAttempts    int           `env:"NFT_WALLET_WALLET_MAX_ATTEMPTS" envDefault:"5"`

	// -- Server --

	Host                 string        `env:"NFT_WALLET_HOST"`
	Port                 int           `env:"NFT_WALLET_PORT" envDefault:"3000"`
	ServerRequestTimeout time.Duration `env:"NFT_WALLET_SERVER_REQUEST_TIMEOUT" envDefault:"60s"`

	// Inbound requests per second accepted by the API, and the burst on top.
	RequestRateLimit float64 `env:"NFT_WALLET_REQUEST_RATE_LIMIT" envDefault:"50"`
	RequestRateBurst int     `env:"NFT_WALLET_REQUEST_RATE_BURST" envDefault:"100"`

	// -- Database --

	DatabaseDSN  string `env:"NFT_WALLET_DATABASE_DSN" envDefault:"wallet.db"`
	DatabaseType string `env:"NFT_WALLET_DATABASE_TYPE" envDefault:"sqlite"`

	// -- Idempotency middleware --

	// One of "local", "shared" or "redis".
	IdempotencyMiddlewareDatabaseType string `env:"NFT_WALLET_IDEMPOTENCY_MIDDLEWARE_DATABASE_TYPE" envDefault:"local"`
	IdempotencyMiddlewareRedisURL     string `env:"NFT_WALLET_IDEMPOTENCY_MIDDLEWARE_REDIS_URL"`

	// -- Workerpool --

	WorkerQueueCapacity      uint          `env:"NFT_WALLET_WORKER_QUEUE_CAPACITY" envDefault:"1000"`
	WorkerCount              uint          `env:"NFT_WALLET_WORKER_COUNT" envDefault:"1"`
	MaxJobErrorCount         int           `env:"NFT_WALLET_MAX_JOB_ERROR_COUNT" envDefault:"10"`
	DBJobPollInterval        time.Duration `env:"NFT_WALLET_DB_JOB_POLL_INTERVAL" envDefault:"30s"`
	AcceptedGracePeriod      time.Duration `env:"NFT_WALLET_ACCEPTED_GRACE_PERIOD" envDefault:"3m"`
	ReSchedulableGracePeriod time.Duration `env:"NFT_WALLET_RESCHEDULABLE_GRACE_PERIOD" envDefault:"1m"`
	JobStatusWebhookUrl      string        `env:"NFT_WALLET_JOB_STATUS_WEBHOOK"`
	JobStatusWebhookTimeout  time.Duration `env:"NFT_WALLET_JOB_STATUS_WEBHOOK_TIMEOUT" envDefault:"30s"`

	// Maximum number of transfers submitted to the wallet daemon per second.
	TransferMaxSendRate int `env:"NFT_WALLET_MAX_TRANSFER_SEND_RATE" envDefault:"10"`

	// -- Tracing --

	TracingEnabled     bool    `env:"NFT_WALLET_TRACING_ENABLED" envDefault:"false"`
	TracingProjectID   string  `env:"NFT_WALLET_TRACING_PROJECT_ID"`
	TracingSampleRatio float64 `env:"NFT_WALLET_TRACING_SAMPLE_RATIO" envDefault:"0.1"`

	LogLevel string `env:"NFT_WALLET_LOG_LEVEL" envDefault:"info"`
}

// Parse parses environment variables into a Config.
func Parse() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ConfigureLogger sets up the global logrus logger.
func ConfigureLogger(logLevel string) {
	log.SetFormatter(&log.JSONFormatter{})

	lvl, err := log.ParseLevel(logLevel)
	if err != nil {
		log.WithFields(log.Fields{"error": err, "level": logLevel}).Warn("Invalid log level, falling back to info")
		lvl = log.InfoLevel
	}

	log.SetLevel(lvl)
}
