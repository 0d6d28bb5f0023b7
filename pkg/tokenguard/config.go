package tokenguard

import "time"

// Config holds session token settings loaded from the environment.
type Config struct {
	// Secret seeds the signing key. Empty means a random per-process key.
	Secret          string        `env:"TOKEN_SECRET"`
	MaxAge          time.Duration `env:"TOKEN_MAX_AGE" envDefault:"24h"`
	CleanupInterval time.Duration `env:"TOKEN_CLEANUP_INTERVAL" envDefault:"10m"`
	RedisPrefix     string        `env:"TOKEN_REDIS_PREFIX" envDefault:"leaderboard:session:"`
}

// DefaultConfig returns the defaults used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxAge:          24 * time.Hour,
		CleanupInterval: 10 * time.Minute,
		RedisPrefix:     "leaderboard:session:",
	}
}
