package sqlitestore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/leaderboard/integration/database/sqlite"
	"github.com/dmitrymomot/leaderboard/leaderboard"
	"github.com/dmitrymomot/leaderboard/leaderboard/sqlitestore"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.Config{Path: filepath.Join(t.TempDir(), "lb.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db, sqlitestore.Migrations, nil))
	return db
}

func TestStore_TxPrimitives(t *testing.T) {
	t.Parallel()

	s := sqlitestore.New(openDB(t))
	ctx := context.Background()

	err := s.Admit(ctx, func(ctx context.Context, tx leaderboard.Tx) error {
		_, err := tx.ScoreAtRank(ctx, 1)
		assert.ErrorIs(t, err, leaderboard.ErrNotEnoughRows)

		for _, score := range []int64{30, 10, 20, 10} {
			_, err := tx.Insert(ctx, "p", score)
			require.NoError(t, err)
		}

		n, err := tx.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		score, err := tx.ScoreAtRank(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(20), score)

		_, err = tx.ScoreAtRank(ctx, 0)
		assert.ErrorIs(t, err, leaderboard.ErrNotEnoughRows)

		return tx.DeleteEvictionMinimum(ctx)
	})
	require.NoError(t, err)

	top, err := s.TopN(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []int64{1, 3, 2}, []int64{top[0].ID, top[1].ID, top[2].ID})
}

func TestStore_RollbackOnError(t *testing.T) {
	t.Parallel()

	s := sqlitestore.New(openDB(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Admit(ctx, func(ctx context.Context, tx leaderboard.Tx) error {
		_, err := tx.Insert(ctx, "ghost", 1)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, leaderboard.ErrConflict)

	top, err := s.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestStore_IDsNeverReused(t *testing.T) {
	t.Parallel()

	s := sqlitestore.New(openDB(t))
	ctx := context.Background()

	var last int64
	for range 3 {
		require.NoError(t, s.Admit(ctx, func(ctx context.Context, tx leaderboard.Tx) error {
			e, err := tx.Insert(ctx, "p", 1)
			if err != nil {
				return err
			}
			assert.Greater(t, e.ID, last)
			last = e.ID
			return tx.DeleteEvictionMinimum(ctx)
		}))
	}
}

// Separate engines have separate mutexes, so this relies on the database
// transaction alone.
func TestStore_ConcurrentEnginesShareDatabase(t *testing.T) {
	t.Parallel()

	db := openDB(t)
	ctx := context.Background()

	engines := []*leaderboard.Engine{
		leaderboard.NewEngine(sqlitestore.New(db)),
		leaderboard.NewEngine(sqlitestore.New(db)),
		leaderboard.NewEngine(sqlitestore.New(db)),
	}

	var (
		wg        sync.WaitGroup
		admitted  atomic.Int32
		conflicts atomic.Int32
	)
	for i := range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engines[i%len(engines)].Submit(ctx, fmt.Sprintf("p%d", i), float64(100+i))
			switch {
			case err == nil:
				admitted.Add(1)
			case errors.Is(err, leaderboard.ErrConflict):
				conflicts.Add(1)
			default:
				assert.ErrorIs(t, err, leaderboard.ErrBelowCutoff)
			}
		}()
	}
	wg.Wait()

	top, err := engines[0].Top(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, top, min(int(admitted.Load()), leaderboard.MaxSlots))
	t.Logf("admitted=%d conflicts=%d", admitted.Load(), conflicts.Load())
}
