package api_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/leaderboard/app/api"
	"github.com/dmitrymomot/leaderboard/core/config"
)

func TestConfig_Load(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("TOKEN_MAX_AGE", "1h")

	var cfg api.Config
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, api.StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, api.SessionStoreMemory, cfg.SessionStore)
	assert.Equal(t, time.Hour, cfg.Token.MaxAge)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "leaderboard.db", cfg.SQLite.Path)
	assert.Equal(t, 30, cfg.RateLimit.Capacity)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.IsProduction())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := api.Config{
		StorageDriver: api.StorageSQLite,
		SessionStore:  api.SessionStoreRedis,
		MaxBodySize:   1024,
	}
	require.NoError(t, valid.Validate())

	badDriver := valid
	badDriver.StorageDriver = "mysql"
	assert.ErrorIs(t, badDriver.Validate(), api.ErrInvalidConfig)

	badSessions := valid
	badSessions.SessionStore = "file"
	assert.ErrorIs(t, badSessions.Validate(), api.ErrInvalidConfig)

	badBody := valid
	badBody.MaxBodySize = 0
	assert.ErrorIs(t, badBody.Validate(), api.ErrInvalidConfig)
}
