package leaderboard

import (
	"cmp"
	"time"
)

const (
	// MaxSlots is the number of entries the leaderboard retains.
	MaxSlots = 10

	// DefaultLimit is used by Top when no positive limit is given.
	DefaultLimit = 20

	// MaxLimit caps the number of entries Top returns.
	MaxLimit = 100

	// MaxNameLength is the maximum display name length in runes.
	MaxNameLength = 20
)

// Entry is a stored leaderboard row.
type Entry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// CompareRank orders entries for display: higher score first, then earlier
// creation, then lower id. The eviction order is its exact reverse.
func CompareRank(a, b Entry) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// ClampLimit maps a requested page size into [1, MaxLimit].
// Zero or negative selects DefaultLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}
