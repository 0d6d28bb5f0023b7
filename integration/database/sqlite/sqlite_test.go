package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/leaderboard/integration/database/sqlite"
)

func TestOpenAndMigrate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrations := fstest.MapFS{
		"00001_widgets.sql": {Data: []byte("-- +goose Up\nCREATE TABLE widgets (id INTEGER PRIMARY KEY);\n\n-- +goose Down\nDROP TABLE widgets;\n")},
	}
	require.NoError(t, sqlite.Migrate(ctx, db, migrations, nil))
	require.NoError(t, sqlite.Migrate(ctx, db, migrations, nil), "second run is a no-op")

	_, err = db.ExecContext(ctx, "INSERT INTO widgets (id) VALUES (1)")
	require.NoError(t, err)

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	assert.NoError(t, sqlite.Healthcheck(db)(ctx))
}

func TestOpen_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := sqlite.Open(context.Background(), sqlite.Config{Path: "  "})
	assert.ErrorIs(t, err, sqlite.ErrEmptyPath)
}

func TestHealthcheck_Closed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	assert.ErrorIs(t, sqlite.Healthcheck(db)(ctx), sqlite.ErrHealthcheckFailed)
}

func TestConfig_DSN(t *testing.T) {
	t.Parallel()

	dsn := sqlite.Config{Path: "data/lb.db"}.DSN()
	assert.Contains(t, dsn, "file:data/lb.db?")
	assert.Contains(t, dsn, "busy_timeout(5000)")
	assert.Contains(t, dsn, "_txlock=immediate")
}
