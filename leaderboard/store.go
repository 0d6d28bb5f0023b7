package leaderboard

import "context"

// Tx exposes the storage primitives of one admission.
type Tx interface {
	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)
	// ScoreAtRank returns the score of the k-th ranked entry, or
	// ErrNotEnoughRows.
	ScoreAtRank(ctx context.Context, k int) (int64, error)
	// Insert stores a new entry; the store assigns id and creation time.
	Insert(ctx context.Context, name string, score int64) (Entry, error)
	// DeleteEvictionMinimum deletes exactly one entry, the last in ranking
	// order, if any exist.
	DeleteEvictionMinimum(ctx context.Context) error
}

// Store persists leaderboard entries.
type Store interface {
	// Admit runs fn inside one serializable unit. Changes made through tx
	// are committed only if fn returns nil, and its error is returned as is.
	Admit(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// TopN returns up to limit entries in ranking order.
	TopN(ctx context.Context, limit int) ([]Entry, error)
}
