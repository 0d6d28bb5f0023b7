// Package pgstore is a leaderboard.Store on PostgreSQL.
//
// Each admission runs in a SERIALIZABLE transaction. When PostgreSQL aborts
// one for a serialization failure the error matches leaderboard.ErrConflict.
package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/leaderboard/integration/database/pg"
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
	pool *pgxpool.Pool
}

// New wraps a connected, migrated pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Admit implements leaderboard.Store.
func (s *Store) Admit(ctx context.Context, fn func(ctx context.Context, tx leaderboard.Tx) error) error {
	err := pg.InTx(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		return fn(ctx, pgTx{tx})
	})
	if pg.IsSerializationFailure(err) {
		return errors.Join(leaderboard.ErrConflict, err)
	}
	return err
}

// TopN implements leaderboard.Store.
func (s *Store) TopN(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, score, created_at FROM leaderboard_entries ORDER BY `+rankOrder+` LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query top entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leaderboard.Entry, error) {
		var e leaderboard.Entry
		err := row.Scan(&e.ID, &e.Name, &e.Score, &e.CreatedAt)
		e.CreatedAt = e.CreatedAt.UTC()
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect entries: %w", err)
	}
	return entries, nil
}

// Ping checks the pool.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// pgTx runs the admission primitives inside one transaction.
type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) Count(ctx context.Context) (int, error) {
	var n int
	if err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM leaderboard_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (t pgTx) ScoreAtRank(ctx context.Context, k int) (int64, error) {
	if k < 1 {
		return 0, leaderboard.ErrNotEnoughRows
	}
	var score int64
	err := t.tx.QueryRow(ctx,
		`SELECT score FROM leaderboard_entries ORDER BY `+rankOrder+` LIMIT 1 OFFSET $1`,
		k-1).Scan(&score)
	if pg.IsNotFoundError(err) {
		return 0, leaderboard.ErrNotEnoughRows
	}
	if err != nil {
		return 0, fmt.Errorf("score at rank %d: %w", k, err)
	}
	return score, nil
}

func (t pgTx) Insert(ctx context.Context, name string, score int64) (leaderboard.Entry, error) {
	e := leaderboard.Entry{Name: name, Score: score}
	err := t.tx.QueryRow(ctx,
		`INSERT INTO leaderboard_entries (name, score) VALUES ($1, $2) RETURNING id, created_at`,
		name, score).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func (t pgTx) DeleteEvictionMinimum(ctx context.Context) error {
	_, err := t.tx.Exec(ctx,
		`DELETE FROM leaderboard_entries WHERE id = (
		   SELECT id FROM leaderboard_entries ORDER BY `+evictionOrder+` LIMIT 1
		 )`)
	if err != nil {
		return fmt.Errorf("delete eviction minimum: %w", err)
	}
	return nil
}
