package tokenguard_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/leaderboard/pkg/tokenguard"
)

func TestMemorySet_AddContainsRemove(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	set := tokenguard.NewMemorySet(tokenguard.WithSetClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, set.Add(ctx, "a", clock.Now()))

	ok, err := set.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := set.Remove(ctx, "a")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = set.Remove(ctx, "a")
	require.NoError(t, err)
	assert.False(t, removed)

	ok, err = set.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemorySet_ConcurrentRemove(t *testing.T) {
	t.Parallel()

	set := tokenguard.NewMemorySet()
	ctx := context.Background()
	require.NoError(t, set.Add(ctx, "a", time.Now()))

	var (
		wg      sync.WaitGroup
		removed atomic.Int32
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := set.Remove(ctx, "a"); ok {
				removed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), removed.Load())
}

func TestMemorySet_RemoveExpired(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	set := tokenguard.NewMemorySet(tokenguard.WithSetClock(clock.Now), tokenguard.WithMaxAge(time.Minute))
	ctx := context.Background()

	require.NoError(t, set.Add(ctx, "old", clock.Now()))
	clock.Advance(30 * time.Second)
	require.NoError(t, set.Add(ctx, "new", clock.Now()))
	clock.Advance(30 * time.Second)

	ok, err := set.Contains(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok, "expired session reads as absent")

	assert.Equal(t, 1, set.RemoveExpired())
	assert.Equal(t, 1, set.Len())

	ok, err = set.Contains(ctx, "new")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemorySet_NoMaxAge(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	set := tokenguard.NewMemorySet(tokenguard.WithSetClock(clock.Now), tokenguard.WithMaxAge(0))
	ctx := context.Background()

	require.NoError(t, set.Add(ctx, "a", clock.Now()))
	clock.Advance(365 * 24 * time.Hour)

	assert.Equal(t, 0, set.RemoveExpired())
	ok, err := set.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemorySet_Reaper(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	now := time.Now()
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	set := tokenguard.NewMemorySet(
		tokenguard.WithSetClock(clock),
		tokenguard.WithMaxAge(time.Minute),
		tokenguard.WithCleanupInterval(5*time.Millisecond),
	)
	ctx := context.Background()
	require.NoError(t, set.Add(ctx, "a", clock()))

	runCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- set.Run(runCtx)() }()

	require.Eventually(t, set.Running, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, set.Start(ctx), tokenguard.ErrAlreadyStarted)

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	require.Eventually(t, func() bool { return set.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-errCh)
	assert.False(t, set.Running())
	assert.ErrorIs(t, set.Stop(), tokenguard.ErrNotStarted)
}

func TestMemorySet_Stop(t *testing.T) {
	t.Parallel()

	set := tokenguard.NewMemorySet(tokenguard.WithCleanupInterval(time.Millisecond))
	errCh := make(chan error, 1)
	go func() { errCh <- set.Start(context.Background()) }()

	require.Eventually(t, set.Running, time.Second, time.Millisecond)
	require.NoError(t, set.Stop())
	assert.ErrorIs(t, <-errCh, context.Canceled)
}
