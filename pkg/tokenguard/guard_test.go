package tokenguard_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/leaderboard/pkg/tokenguard"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newGuard(t *testing.T, clock *fakeClock, opts ...tokenguard.Option) *tokenguard.Guard {
	t.Helper()
	opts = append([]tokenguard.Option{tokenguard.WithClock(clock.Now)}, opts...)
	g, err := tokenguard.New(tokenguard.NewMemorySet(tokenguard.WithSetClock(clock.Now)), opts...)
	require.NoError(t, err)
	return g
}

func sign(key []byte, payload string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestGuard_IssueFormat(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	g := newGuard(t, clock, tokenguard.WithKey(testKey))
	ctx := context.Background()

	token, err := g.Issue(ctx)
	require.NoError(t, err)

	parts := strings.Split(token, ":")
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 32, "session id is 128 bits hex")
	assert.Equal(t, "1740830400000", parts[1])
	assert.Equal(t, sign(testKey, parts[0]+":"+parts[1]), parts[2])

	other, err := g.Issue(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGuard_RoundTrip(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	g := newGuard(t, clock)
	ctx := context.Background()

	token, err := g.Issue(ctx)
	require.NoError(t, err)

	t.Run("too fast", func(t *testing.T) {
		assert.ErrorIs(t, g.Validate(ctx, token), tokenguard.ErrTooFast)
		clock.Advance(4999 * time.Millisecond)
		assert.ErrorIs(t, g.Validate(ctx, token), tokenguard.ErrTooFast)
	})

	t.Run("succeeds once at the floor", func(t *testing.T) {
		clock.Advance(time.Millisecond)
		assert.NoError(t, g.Validate(ctx, token))
	})

	t.Run("replay", func(t *testing.T) {
		assert.ErrorIs(t, g.Validate(ctx, token), tokenguard.ErrUnknownOrReplayed)
	})
}

func TestGuard_Tamper(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	g := newGuard(t, clock)
	ctx := context.Background()

	token, err := g.Issue(ctx)
	require.NoError(t, err)

	sigStart := strings.LastIndex(token, ":") + 1
	for _, elapsed := range []time.Duration{0, 10 * time.Second} {
		clock.Advance(elapsed)
		for i := sigStart; i < len(token); i++ {
			flipped := byte('0')
			if token[i] == '0' {
				flipped = '1'
			}
			tampered := token[:i] + string(flipped) + token[i+1:]
			assert.ErrorIs(t, g.Validate(ctx, tampered), tokenguard.ErrBadSignature, "index %d", i)
		}
	}

	// The genuine token is still outstanding.
	assert.NoError(t, g.Validate(ctx, token))
}

func TestGuard_Malformed(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	g := newGuard(t, clock, tokenguard.WithKey(testKey))
	ctx := context.Background()

	for _, token := range []string{"", "abc", "a:b", "a:b:c:d", "::::"} {
		assert.ErrorIs(t, g.Validate(ctx, token), tokenguard.ErrMalformed, "token %q", token)
	}

	payload := "abcdef:not-a-number"
	assert.ErrorIs(t, g.Validate(ctx, payload+":"+sign(testKey, payload)), tokenguard.ErrMalformed)
}

func TestGuard_UnknownSession(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	g := newGuard(t, clock, tokenguard.WithKey(testKey))

	payload := "00112233445566778899aabbccddeeff:1000"
	err := g.Validate(context.Background(), payload+":"+sign(testKey, payload))
	assert.ErrorIs(t, err, tokenguard.ErrUnknownOrReplayed)
	assert.True(t, tokenguard.IsRejection(err))
}

func TestGuard_ForeignKeyRejected(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	issuer := newGuard(t, clock)
	verifier := newGuard(t, clock)
	ctx := context.Background()

	token, err := issuer.Issue(ctx)
	require.NoError(t, err)
	clock.Advance(time.Minute)

	assert.ErrorIs(t, verifier.Validate(ctx, token), tokenguard.ErrBadSignature)
}

func TestGuard_SharedSecret(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	set := tokenguard.NewMemorySet(tokenguard.WithSetClock(clock.Now))
	ctx := context.Background()

	issuer, err := tokenguard.New(set, tokenguard.WithSecret("s3cret"), tokenguard.WithClock(clock.Now))
	require.NoError(t, err)
	verifier, err := tokenguard.New(set, tokenguard.WithSecret("s3cret"), tokenguard.WithClock(clock.Now))
	require.NoError(t, err)

	token, err := issuer.Issue(ctx)
	require.NoError(t, err)
	clock.Advance(tokenguard.MinSessionAge)

	assert.NoError(t, verifier.Validate(ctx, token))
	assert.ErrorIs(t, issuer.Validate(ctx, token), tokenguard.ErrUnknownOrReplayed)
}

func TestGuard_ConcurrentValidation(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	g := newGuard(t, clock)
	ctx := context.Background()

	token, err := g.Issue(ctx)
	require.NoError(t, err)
	clock.Advance(tokenguard.MinSessionAge)

	const workers = 64
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		replays   atomic.Int32
	)
	start := make(chan struct{})
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			switch err := g.Validate(ctx, token); {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, tokenguard.ErrUnknownOrReplayed):
				replays.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(workers-1), replays.Load())
}

func TestGuard_ExpiredSession(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	set := tokenguard.NewMemorySet(tokenguard.WithSetClock(clock.Now), tokenguard.WithMaxAge(time.Hour))
	g, err := tokenguard.New(set, tokenguard.WithClock(clock.Now))
	require.NoError(t, err)
	ctx := context.Background()

	token, err := g.Issue(ctx)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	assert.ErrorIs(t, g.Validate(ctx, token), tokenguard.ErrUnknownOrReplayed)
}

type failingSet struct{ err error }

func (f failingSet) Add(context.Context, string, time.Time) error   { return f.err }
func (f failingSet) Contains(context.Context, string) (bool, error) { return false, f.err }
func (f failingSet) Remove(context.Context, string) (bool, error)   { return false, f.err }

func TestGuard_SessionStoreFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	g, err := tokenguard.New(failingSet{err: boom}, tokenguard.WithKey(testKey))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = g.Issue(ctx)
	assert.ErrorIs(t, err, tokenguard.ErrSessionStore)
	assert.ErrorIs(t, err, boom)

	payload := "abc:1000"
	err = g.Validate(ctx, payload+":"+sign(testKey, payload))
	assert.ErrorIs(t, err, tokenguard.ErrSessionStore)
	assert.False(t, tokenguard.IsRejection(err))
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := tokenguard.New(nil)
	assert.Error(t, err)

	_, err = tokenguard.New(tokenguard.NewMemorySet(), tokenguard.WithKey([]byte("short")))
	assert.ErrorIs(t, err, tokenguard.ErrInvalidKey)
}
