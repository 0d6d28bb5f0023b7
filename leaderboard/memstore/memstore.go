// Package memstore is an in-process leaderboard.Store.
//
// Admissions work on a copy of the entries and swap it in on success, so a
// failed admission leaves nothing behind and readers never see a partial one.
package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/leaderboard/leaderboard"
)

// Store keeps entries in ranking order behind a mutex.
type Store struct {
	mu      sync.Mutex
	entries []leaderboard.Entry
	lastID  int64
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Admit implements leaderboard.Store.
func (s *Store) Admit(ctx context.Context, fn func(ctx context.Context, tx leaderboard.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &tx{
		entries: slices.Clone(s.entries),
		lastID:  s.lastID,
		now:     s.now,
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.entries, s.lastID = tx.entries, tx.lastID
	return nil
}

// TopN implements leaderboard.Store.
func (s *Store) TopN(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries[:min(max(limit, 0), len(s.entries))]), nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

type tx struct {
	entries []leaderboard.Entry
	lastID  int64
	now     func() time.Time
}

func (t *tx) Count(context.Context) (int, error) {
	return len(t.entries), nil
}

func (t *tx) ScoreAtRank(_ context.Context, k int) (int64, error) {
	if k < 1 || k > len(t.entries) {
		return 0, leaderboard.ErrNotEnoughRows
	}
	return t.entries[k-1].Score, nil
}

func (t *tx) Insert(_ context.Context, name string, score int64) (leaderboard.Entry, error) {
	t.lastID++
	entry := leaderboard.Entry{
		ID:        t.lastID,
		Name:      name,
		Score:     score,
		CreatedAt: time.UnixMilli(t.now().UnixMilli()).UTC(),
	}
	i, _ := slices.BinarySearchFunc(t.entries, entry, leaderboard.CompareRank)
	t.entries = slices.Insert(t.entries, i, entry)
	return entry, nil
}

func (t *tx) DeleteEvictionMinimum(context.Context) error {
	if n := len(t.entries); n > 0 {
		t.entries = t.entries[:n-1]
	}
	return nil
}
