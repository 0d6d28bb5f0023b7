// Command leaderboard serves the bounded top-10 leaderboard API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/leaderboard/app/api"
	"github.com/dmitrymomot/leaderboard/core/config"
	"github.com/dmitrymomot/leaderboard/core/logger"
	"github.com/dmitrymomot/leaderboard/core/server"
	"github.com/dmitrymomot/leaderboard/leaderboard"
	"github.com/dmitrymomot/leaderboard/pkg/ratelimiter"
	"github.com/dmitrymomot/leaderboard/pkg/tokenguard"
)

func main() {
	var cfg api.Config
	config.MustLoad(&cfg)

	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("leaderboard stopped", logger.Error(err))
		os.Exit(1)
	}
}

func newLogger(cfg api.Config) *slog.Logger {
	opts := []logger.Option{logger.WithDevelopment(cfg.AppName)}
	if cfg.IsProduction() {
		opts = []logger.Option{logger.WithProduction(cfg.AppName)}
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	}
	return logger.New(opts...)
}

func run(ctx context.Context, cfg api.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	sessions, err := openSessions(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer sessions.close()

	guard, err := tokenguard.New(sessions.set,
		tokenguard.WithSecret(cfg.Token.Secret),
		tokenguard.WithLogger(log.With(logger.Component("tokenguard"))),
	)
	if err != nil {
		return err
	}

	feed := api.NewFeed(cfg.LiveBufferSize, log.With(logger.Component("live")))
	engine := leaderboard.NewEngine(store.store,
		leaderboard.WithAdmitHook(feed.Publish),
		leaderboard.WithLogger(log.With(logger.Component("leaderboard"))),
	)

	opts := []api.AppOption{
		api.WithLogger(log),
		api.WithFeed(feed),
		api.WithHealthChecks(append(store.checks, sessions.checks...)...),
		api.WithTrustProxyHeaders(cfg.TrustProxyHeaders),
		api.WithMaxBodySize(cfg.MaxBodySize),
		api.WithHSTS(cfg.IsProduction()),
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		opts = append(opts, api.WithCORS(cfg.CORSAllowedOrigins...))
	}

	var limits *ratelimiter.MemoryStore
	if cfg.RateLimitEnabled {
		limits = ratelimiter.NewMemoryStore(
			ratelimiter.WithMemoryStoreLogger(log.With(logger.Component("ratelimiter"))),
		)
		bucket, err := ratelimiter.NewBucket(limits, cfg.RateLimit)
		if err != nil {
			return err
		}
		opts = append(opts, api.WithRateLimiter(bucket))
	}

	app, err := api.New(engine, guard, opts...)
	if err != nil {
		return err
	}

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log.With(logger.Component("server"))))
	if err != nil {
		return err
	}

	log.Info("starting leaderboard",
		slog.String("addr", cfg.Server.Addr),
		slog.String("storage", cfg.StorageDriver),
		slog.String("sessions", cfg.SessionStore))

	if sessions.run != nil {
		g.Go(sessions.run(ctx))
	}
	if limits != nil {
		g.Go(limits.Run(ctx))
	}
	g.Go(srv.Run(ctx, app.Handler()))
	// Hijacked live connections are not drained by the server.
	g.Go(func() error {
		<-ctx.Done()
		return feed.Close()
	})

	return g.Wait()
}
