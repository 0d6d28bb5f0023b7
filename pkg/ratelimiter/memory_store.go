package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/leaderboard/core/logger"
)

// MemoryStore keeps buckets in process memory. Run sweeps buckets that have
// been idle longer than the stale threshold.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	now           func() time.Time
	sweepInterval time.Duration
	staleAfter    time.Duration
	logger        *slog.Logger
}

type bucket struct {
	tokens     int
	refilledAt time.Time
	seenAt     time.Time
}

// refill credits whole elapsed intervals. The interval count is capped so a
// long idle gap cannot overflow.
func (b *bucket) refill(now time.Time, cfg Config) {
	intervals := int(now.Sub(b.refilledAt) / cfg.RefillInterval)
	if intervals <= 0 {
		return
	}
	intervals = min(intervals, cfg.Capacity/cfg.RefillRate+1)

	b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
	if b.tokens == cfg.Capacity {
		b.refilledAt = now
		return
	}
	b.refilledAt = b.refilledAt.Add(time.Duration(intervals) * cfg.RefillInterval)
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often Run sweeps stale buckets.
func WithCleanupInterval(d time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) { ms.sweepInterval = d }
}

// WithStaleAfter sets how long a bucket may stay idle before it is swept.
func WithStaleAfter(d time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if d > 0 {
			ms.staleAfter = d
		}
	}
}

// WithMemoryStoreLogger sets the sweep logger.
func WithMemoryStoreLogger(l *slog.Logger) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if l != nil {
			ms.logger = l
		}
	}
}

// WithMemoryStoreClock overrides time.Now.
func WithMemoryStoreClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates an empty store. Buckets idle for an hour are swept
// every five minutes once Run is started.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets:       make(map[string]*bucket),
		now:           time.Now,
		sweepInterval: 5 * time.Minute,
		staleAfter:    time.Hour,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

// ConsumeTokens implements Store.
func (ms *MemoryStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	b := ms.buckets[key]
	if b == nil {
		b = &bucket{tokens: cfg.Capacity, refilledAt: now}
		ms.buckets[key] = b
	}
	b.seenAt = now
	b.refill(now, cfg)

	resetAt := b.refilledAt.Add(cfg.RefillInterval)
	if b.tokens < tokens {
		return b.tokens - tokens, resetAt, nil
	}
	b.tokens -= tokens
	return b.tokens, resetAt, nil
}

// Reset implements Store.
func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	delete(ms.buckets, key)
	ms.mu.Unlock()
	return nil
}

// Len is the number of tracked buckets.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.buckets)
}

// RemoveStale drops idle buckets and returns how many went.
func (ms *MemoryStore) RemoveStale() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cutoff := ms.now().Add(-ms.staleAfter)
	removed := 0
	for key, b := range ms.buckets {
		if b.seenAt.Before(cutoff) {
			delete(ms.buckets, key)
			removed++
		}
	}
	return removed
}

// Run returns an errgroup worker that sweeps stale buckets until ctx is
// done. Cancellation is a clean exit.
func (ms *MemoryStore) Run(ctx context.Context) func() error {
	return func() error {
		if ms.sweepInterval <= 0 {
			return fmt.Errorf("%w: cleanup interval must be positive", ErrInvalidConfig)
		}

		ticker := time.NewTicker(ms.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := ms.RemoveStale(); n > 0 {
					ms.logger.DebugContext(ctx, "stale rate limit buckets swept",
						logger.Count("removed", n), logger.Count("remaining", ms.Len()))
				}
			}
		}
	}
}
