package tokenguard_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/leaderboard/pkg/tokenguard"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestRedisSet(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	prefix := "tokenguard-test:" + uuid.NewString() + ":"
	set := tokenguard.NewRedisSet(client, prefix, time.Minute)

	require.NoError(t, set.Add(ctx, "a", time.Now()))

	ttl, err := client.TTL(ctx, prefix+"a").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	ok, err := set.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	var (
		wg      sync.WaitGroup
		removed atomic.Int32
	)
	for range 20 {
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

	ok, err = set.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSet_WithGuard(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	clock := newFakeClock()
	set := tokenguard.NewRedisSet(client, "tokenguard-test:"+uuid.NewString()+":", time.Minute)

	g, err := tokenguard.New(set, tokenguard.WithSecret("shared"), tokenguard.WithClock(clock.Now))
	require.NoError(t, err)

	token, err := g.Issue(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, g.Validate(ctx, token), tokenguard.ErrTooFast)

	clock.Advance(tokenguard.MinSessionAge)
	assert.NoError(t, g.Validate(ctx, token))
	assert.ErrorIs(t, g.Validate(ctx, token), tokenguard.ErrUnknownOrReplayed)
}
