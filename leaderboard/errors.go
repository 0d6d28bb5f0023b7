package leaderboard

import "errors"

var (
	// ErrNameRequired is returned when the name is empty after trimming.
	ErrNameRequired = errors.New("leaderboard: name is required")

	// ErrInvalidScore is returned for scores that are not finite,
	// negative, or out of range.
	ErrInvalidScore = errors.New("leaderboard: invalid score")

	// ErrBelowCutoff is returned when a full leaderboard's cutoff score is
	// not strictly exceeded.
	ErrBelowCutoff = errors.New("leaderboard: score below cutoff")

	// ErrStorage wraps unexpected storage failures.
	ErrStorage = errors.New("leaderboard: storage failure")

	// ErrConflict marks a transaction that lost a serialization race.
	// It always arrives wrapped in ErrStorage and is not retried.
	ErrConflict = errors.New("leaderboard: transaction conflict")

	// ErrNotEnoughRows is returned by Tx.ScoreAtRank when fewer than k rows exist.
	ErrNotEnoughRows = errors.New("leaderboard: not enough rows")
)
