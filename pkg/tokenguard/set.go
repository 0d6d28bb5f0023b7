package tokenguard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/leaderboard/core/logger"
)

// SessionSet tracks outstanding session ids.
// Remove must be an atomic remove-if-present: for concurrent calls with the
// same id at most one reports true.
type SessionSet interface {
	Add(ctx context.Context, sessionID string, issuedAt time.Time) error
	Contains(ctx context.Context, sessionID string) (bool, error)
	Remove(ctx context.Context, sessionID string) (bool, error)
}

// MemorySet keeps outstanding sessions in process memory.
// With a positive max age, expired sessions read as absent and are swept by
// the reaper loop started with Start or Run.
type MemorySet struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time

	maxAge          time.Duration
	cleanupInterval time.Duration
	logger          *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// MemorySetOption configures a MemorySet.
type MemorySetOption func(*MemorySet)

// WithMaxAge sets how long an unredeemed session stays valid.
// Zero keeps sessions for the process lifetime.
func WithMaxAge(d time.Duration) MemorySetOption {
	return func(s *MemorySet) {
		if d >= 0 {
			s.maxAge = d
		}
	}
}

// WithCleanupInterval sets how often the reaper sweeps expired sessions.
func WithCleanupInterval(d time.Duration) MemorySetOption {
	return func(s *MemorySet) {
		s.cleanupInterval = d
	}
}

// WithSetLogger sets the logger for the reaper.
func WithSetLogger(l *slog.Logger) MemorySetOption {
	return func(s *MemorySet) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSetClock overrides time.Now.
func WithSetClock(now func() time.Time) MemorySetOption {
	return func(s *MemorySet) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemorySet creates an empty in-memory session set.
func NewMemorySet(opts ...MemorySetOption) *MemorySet {
	s := &MemorySet{
		sessions:        make(map[string]time.Time),
		now:             time.Now,
		maxAge:          24 * time.Hour,
		cleanupInterval: 10 * time.Minute,
		logger:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add implements SessionSet.
func (s *MemorySet) Add(ctx context.Context, sessionID string, issuedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = issuedAt
	return nil
}

// Contains implements SessionSet.
func (s *MemorySet) Contains(ctx context.Context, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	issuedAt, ok := s.sessions[sessionID]
	return ok && !s.expired(issuedAt), nil
}

// Remove implements SessionSet.
func (s *MemorySet) Remove(ctx context.Context, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	issuedAt, ok := s.sessions[sessionID]
	if !ok {
		return false, nil
	}
	delete(s.sessions, sessionID)
	return !s.expired(issuedAt), nil
}

// Len returns the number of tracked sessions, expired ones included.
func (s *MemorySet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemorySet) expired(issuedAt time.Time) bool {
	return s.maxAge > 0 && s.now().Sub(issuedAt) >= s.maxAge
}

// RemoveExpired drops expired sessions and returns how many were removed.
func (s *MemorySet) RemoveExpired() int {
	if s.maxAge <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, issuedAt := range s.sessions {
		if s.expired(issuedAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Start runs the reaper until ctx is canceled or Stop is called.
// It blocks; with a zero max age it only waits for cancellation.
func (s *MemorySet) Start(ctx context.Context) error {
	if s.cleanupInterval <= 0 {
		return errors.New("tokenguard: cleanup interval must be positive")
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.done == done {
			s.cancel = nil
		}
		s.mu.Unlock()
		close(done)
	}()

	if s.maxAge <= 0 {
		s.logger.InfoContext(ctx, "session reaper disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "session reaper started",
		slog.Duration("max_age", s.maxAge),
		slog.Duration("cleanup_interval", s.cleanupInterval))

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.RemoveExpired(); n > 0 {
				s.logger.DebugContext(ctx, "expired sessions removed", logger.Count("removed", n))
			}
		}
	}
}

// Running reports whether the reaper loop is active.
func (s *MemorySet) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Stop ends the reaper and waits for it to exit.
func (s *MemorySet) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()
	<-done
	return nil
}

// Run provides errgroup compatibility.
func (s *MemorySet) Run(ctx context.Context) func() error {
	return func() error {
		err := s.Start(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
}
