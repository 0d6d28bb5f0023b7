package server

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/leaderboard/core/logger"
)

// Server owns one http.Server and its listener. Safe for concurrent use.
type Server struct {
	cfg    Config
	tls    *tls.Config
	logger *slog.Logger

	mu   sync.Mutex
	http *http.Server
	ln   net.Listener
}

// New creates a Server on addr with DefaultConfig timeouts.
func New(addr string, opts ...Option) *Server {
	cfg := DefaultConfig()
	cfg.Addr = addr

	s := newServer(cfg)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newServer(cfg Config) *Server {
	return &Server{cfg: cfg, logger: logger.Discard()}
}

// Start listens and serves h. It blocks until ctx is done, returning
// ctx.Err(), or until serving fails. Start does not shut down; call Stop.
func (s *Server) Start(ctx context.Context, h http.Handler) error {
	s.mu.Lock()
	if s.http != nil {
		s.mu.Unlock()
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.mu.Unlock()
		return errors.Join(ErrListen, err)
	}
	if s.tls != nil {
		ln = tls.NewListener(ln, s.tls)
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		MaxHeaderBytes:    s.cfg.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.http, s.ln = srv, ln
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "http server listening",
		slog.String("addr", ln.Addr().String()),
		slog.Bool("tls", s.tls != nil))

	failed := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-failed:
		s.mu.Lock()
		s.http, s.ln = nil, nil
		s.mu.Unlock()
		return errors.Join(ErrListen, err)
	}
}

// Addr returns the bound address while serving, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.cfg.Addr
}

// Stop drains in-flight requests for up to the shutdown timeout, then
// closes what is left. It is a no-op when the server is not serving.
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.http
	s.http, s.ln = nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	began := time.Now()
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
		s.logger.Error("http server shutdown incomplete", logger.Error(err), logger.Elapsed(began))
		return errors.Join(ErrShutdown, err)
	}
	s.logger.Info("http server stopped", logger.Elapsed(began))
	return nil
}

// Run adapts the server to errgroup: it serves until ctx is done, then
// stops gracefully. A listener failure is returned as is.
func (s *Server) Run(ctx context.Context, h http.Handler) func() error {
	return func() error {
		err := s.Start(ctx, h)
		if ctx.Err() == nil {
			return err
		}
		return s.Stop()
	}
}
