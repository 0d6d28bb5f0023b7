package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/leaderboard/core/logger"
)

// AdmitHook is called after an entry has been committed.
type AdmitHook func(ctx context.Context, entry Entry)

// Engine applies the admission policy of a bounded top-MaxSlots leaderboard.
type Engine struct {
	store  Store
	mu     sync.Mutex
	hooks  []AdmitHook
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithAdmitHook registers a hook run after each admission.
func WithAdmitHook(hook AdmitHook) Option {
	return func(e *Engine) {
		if hook != nil {
			e.hooks = append(e.hooks, hook)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine over store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit normalizes name and score and tries to admit them.
//
// While fewer than MaxSlots entries are stored the entry is inserted. Once
// full, a score not strictly above the MaxSlots-th ranked score fails with
// ErrBelowCutoff and storage is unchanged; otherwise the eviction minimum is
// deleted and the entry inserted in the same transaction.
func (e *Engine) Submit(ctx context.Context, name string, score float64) (Entry, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Entry{}, err
	}
	s, err := NormalizeScore(score)
	if err != nil {
		return Entry{}, err
	}
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	entry, err := e.admit(ctx, name, s)
	if err != nil {
		return Entry{}, err
	}

	e.logger.InfoContext(ctx, "entry admitted", logger.EntryID(entry.ID), logger.Score(entry.Score))

	for _, hook := range e.hooks {
		hook(ctx, entry)
	}
	return entry, nil
}

func (e *Engine) admit(ctx context.Context, name string, score int64) (Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		entry  Entry
		cutoff int64
	)
	err := e.store.Admit(ctx, func(ctx context.Context, tx Tx) error {
		count, err := tx.Count(ctx)
		if err != nil {
			return err
		}

		if count >= MaxSlots {
			cutoff, err = tx.ScoreAtRank(ctx, MaxSlots)
			if err != nil {
				return err
			}
			if score <= cutoff {
				return ErrBelowCutoff
			}
			if err := tx.DeleteEvictionMinimum(ctx); err != nil {
				return err
			}
		}

		entry, err = tx.Insert(ctx, name, score)
		return err
	})

	switch {
	case err == nil:
		return entry, nil
	case errors.Is(err, ErrBelowCutoff):
		e.logger.DebugContext(ctx, "submission below cutoff", logger.Score(score), logger.Cutoff(cutoff))
		return Entry{}, ErrBelowCutoff
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Entry{}, err
	default:
		e.logger.ErrorContext(ctx, "admission failed", logger.Error(err))
		return Entry{}, errors.Join(ErrStorage, err)
	}
}

// Top returns up to ClampLimit(limit) entries in ranking order.
func (e *Engine) Top(ctx context.Context, limit int) ([]Entry, error) {
	entries, err := e.store.TopN(ctx, ClampLimit(limit))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.Join(ErrStorage, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
