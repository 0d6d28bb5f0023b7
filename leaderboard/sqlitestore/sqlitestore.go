// Package sqlitestore is a leaderboard.Store on SQLite.
//
// Admissions run in a write transaction. Opened with _txlock=immediate
// (see integration/database/sqlite) that is BEGIN IMMEDIATE, so admissions
// from several processes serialize on the database lock; a lock that cannot
// be acquired within the busy timeout is reported as leaderboard.ErrConflict.
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/dmitrymomot/leaderboard/leaderboard"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations holds the goose migrations for this store.
var Migrations fs.FS = mustSub(migrationFiles, "migrations")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

const (
	rankOrder     = "score DESC, created_at ASC, id ASC"
	evictionOrder = "score ASC, created_at DESC, id DESC"
)

// Store persists entries in the leaderboard_entries table.
type Store struct {
	db  *sql.DB
	now func() time.Time
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

// New wraps an open, migrated database.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
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
	if s == nil || s.db == nil {
		return errors.New("storage is not configured")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("begin: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, &sqlTx{tx: tx, now: s.now}); err != nil {
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// TopN implements leaderboard.Store.
func (s *Store) TopN(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, errors.New("storage is not configured")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, score, created_at FROM leaderboard_entries ORDER BY `+rankOrder+` LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query top entries: %w", err)
	}
	defer rows.Close()

	entries := make([]leaderboard.Entry, 0, limit)
	for rows.Next() {
		var (
			e         leaderboard.Entry
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type sqlTx struct {
	tx  *sql.Tx
	now func() time.Time
}

func (t *sqlTx) Count(ctx context.Context) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM leaderboard_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (t *sqlTx) ScoreAtRank(ctx context.Context, k int) (int64, error) {
	if k < 1 {
		return 0, leaderboard.ErrNotEnoughRows
	}
	var score int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT score FROM leaderboard_entries ORDER BY `+rankOrder+` LIMIT 1 OFFSET ?`,
		k-1).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, leaderboard.ErrNotEnoughRows
	}
	if err != nil {
		return 0, fmt.Errorf("score at rank %d: %w", k, err)
	}
	return score, nil
}

func (t *sqlTx) Insert(ctx context.Context, name string, score int64) (leaderboard.Entry, error) {
	createdAt := toMillis(t.now())
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO leaderboard_entries (name, score, created_at) VALUES (?, ?, ?)`,
		name, score, createdAt)
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("insert entry id: %w", err)
	}
	return leaderboard.Entry{
		ID:        id,
		Name:      name,
		Score:     score,
		CreatedAt: fromMillis(createdAt),
	}, nil
}

func (t *sqlTx) DeleteEvictionMinimum(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM leaderboard_entries WHERE id = (
		   SELECT id FROM leaderboard_entries ORDER BY `+evictionOrder+` LIMIT 1
		 )`)
	if err != nil {
		return fmt.Errorf("delete eviction minimum: %w", err)
	}
	return nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func classify(err error) error {
	if isBusy(err) {
		return errors.Join(leaderboard.ErrConflict, err)
	}
	return err
}

func isBusy(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code() & 0xff
	return code == sqlite3lib.SQLITE_BUSY || code == sqlite3lib.SQLITE_LOCKED
}
