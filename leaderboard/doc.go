// Package leaderboard implements a bounded top-K leaderboard.
//
// The Engine keeps at most MaxSlots entries. Entries rank by score
// descending, then creation time ascending, then id ascending; the entry
// evicted when a better score arrives is the last one in that order (lowest
// score, and among equal scores the most recently created).
//
// Admission reads the count and the cutoff, evicts and inserts inside a
// single Store.Admit call, and the Engine also serializes its own calls with
// a mutex. Stores report lost serialization races as ErrConflict, which the
// Engine wraps in ErrStorage without retrying.
//
// Implementations of Store live in the memstore, sqlitestore and pgstore
// subpackages.
package leaderboard
