package memstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/leaderboard/leaderboard"
	"github.com/dmitrymomot/leaderboard/leaderboard/memstore"
)

func TestStore_TxPrimitives(t *testing.T) {
	t.Parallel()

	s := memstore.New()
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

		_, err = tx.ScoreAtRank(ctx, 5)
		assert.ErrorIs(t, err, leaderboard.ErrNotEnoughRows)

		return tx.DeleteEvictionMinimum(ctx)
	})
	require.NoError(t, err)

	top, err := s.TopN(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, int64(10), top[2].Score)
	assert.Equal(t, int64(2), top[2].ID, "the later of the tied minimums was evicted")
}

func TestStore_RollbackOnError(t *testing.T) {
	t.Parallel()

	s := memstore.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Admit(ctx, func(ctx context.Context, tx leaderboard.Tx) error {
		_, err := tx.Insert(ctx, "ghost", 1)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	top, err := s.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)

	require.NoError(t, s.Admit(ctx, func(ctx context.Context, tx leaderboard.Tx) error {
		e, err := tx.Insert(ctx, "real", 1)
		assert.Equal(t, int64(1), e.ID, "ids of rolled back inserts are not consumed")
		return err
	}))
}

func TestStore_TopNReturnsCopy(t *testing.T) {
	t.Parallel()

	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Admit(ctx, func(ctx context.Context, tx leaderboard.Tx) error {
		_, err := tx.Insert(ctx, "a", 1)
		return err
	}))

	top, err := s.TopN(ctx, 10)
	require.NoError(t, err)
	top[0].Name = "mutated"

	again, err := s.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Name)
}
