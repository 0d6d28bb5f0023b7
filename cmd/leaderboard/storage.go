package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/leaderboard/app/api"
	"github.com/dmitrymomot/leaderboard/core/health"
	"github.com/dmitrymomot/leaderboard/core/logger"
	"github.com/dmitrymomot/leaderboard/integration/database/pg"
	"github.com/dmitrymomot/leaderboard/integration/database/redis"
	"github.com/dmitrymomot/leaderboard/integration/database/sqlite"
	"github.com/dmitrymomot/leaderboard/leaderboard"
	"github.com/dmitrymomot/leaderboard/leaderboard/memstore"
	"github.com/dmitrymomot/leaderboard/leaderboard/pgstore"
	"github.com/dmitrymomot/leaderboard/leaderboard/sqlitestore"
	"github.com/dmitrymomot/leaderboard/pkg/tokenguard"
)

type storage struct {
	store  leaderboard.Store
	checks []health.Check
	close  func()
}

// openStore connects the configured driver and applies its migrations.
func openStore(ctx context.Context, cfg api.Config, log *slog.Logger) (*storage, error) {
	log = log.With(logger.Component("storage"))

	switch cfg.StorageDriver {
	case api.StorageMemory:
		log.Warn("using in-memory storage, entries are lost on restart")
		return &storage{store: memstore.New(), close: func() {}}, nil

	case api.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db, sqlitestore.Migrations, log); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &storage{
			store:  sqlitestore.New(db),
			checks: []health.Check{{Name: "sqlite", Fn: sqlite.Healthcheck(db)}},
			close:  func() { _ = db.Close() },
		}, nil

	case api.StoragePostgres:
		pool, err := pg.Connect(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, pgstore.Migrations, log); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			store:  pgstore.New(pool),
			checks: []health.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}},
			close:  pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown storage driver %q", api.ErrInvalidConfig, cfg.StorageDriver)
}

type sessionStore struct {
	set    tokenguard.SessionSet
	checks []health.Check
	run    func(context.Context) func() error
	close  func()
}

// openSessions builds the outstanding session set. The memory set comes with
// its reaper; Redis expires keys itself.
func openSessions(ctx context.Context, cfg api.Config, log *slog.Logger) (*sessionStore, error) {
	if cfg.SessionStore == api.SessionStoreRedis {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &sessionStore{
			set:    tokenguard.NewRedisSet(client, cfg.Token.RedisPrefix, cfg.Token.MaxAge),
			checks: []health.Check{{Name: "redis", Fn: redis.Healthcheck(client)}},
			close:  func() { _ = client.Close() },
		}, nil
	}

	set := tokenguard.NewMemorySet(
		tokenguard.WithMaxAge(cfg.Token.MaxAge),
		tokenguard.WithCleanupInterval(cfg.Token.CleanupInterval),
		tokenguard.WithSetLogger(log.With(logger.Component("sessions"))),
	)
	return &sessionStore{set: set, run: set.Run, close: func() {}}, nil
}
