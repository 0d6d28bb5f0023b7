package api

import (
	"fmt"
	"slices"

	"github.com/dmitrymomot/leaderboard/core/server"
	"github.com/dmitrymomot/leaderboard/integration/database/pg"
	"github.com/dmitrymomot/leaderboard/integration/database/redis"
	"github.com/dmitrymomot/leaderboard/integration/database/sqlite"
	"github.com/dmitrymomot/leaderboard/pkg/ratelimiter"
	"github.com/dmitrymomot/leaderboard/pkg/tokenguard"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Session stores accepted by SESSION_STORE.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config is the process configuration, loaded with config.Load.
type Config struct {
	Server    server.Config
	DB        pg.Config
	Redis     redis.Config
	SQLite    sqlite.Config
	Token     tokenguard.Config
	RateLimit ratelimiter.Config

	AppName  string `env:"APP_NAME" envDefault:"leaderboard"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SessionStore  string `env:"SESSION_STORE" envDefault:"memory"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	TrustProxyHeaders bool  `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
	RateLimitEnabled  bool  `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	MaxBodySize       int64 `env:"MAX_BODY_SIZE" envDefault:"4096"`
	LiveBufferSize    int   `env:"LIVE_BUFFER_SIZE" envDefault:"16"`
}

// Validate checks the driver selections.
func (c Config) Validate() error {
	if !slices.Contains([]string{StorageMemory, StorageSQLite, StoragePostgres}, c.StorageDriver) {
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.StorageDriver)
	}
	if !slices.Contains([]string{SessionStoreMemory, SessionStoreRedis}, c.SessionStore) {
		return fmt.Errorf("%w: unknown session store %q", ErrInvalidConfig, c.SessionStore)
	}
	if c.MaxBodySize <= 0 {
		return fmt.Errorf("%w: max body size must be positive", ErrInvalidConfig)
	}
	return nil
}

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
