package tokenguard

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSet keeps outstanding sessions in Redis so several processes can
// share them. Each session is a key with the issue time in unix millis and
// a TTL of the max age; Remove relies on DEL reporting how many keys it
// deleted, which Redis executes atomically.
type RedisSet struct {
	client redis.UniversalClient
	prefix string
	maxAge time.Duration
}

// NewRedisSet creates a Redis-backed set. A zero maxAge stores keys
// without expiry.
func NewRedisSet(client redis.UniversalClient, prefix string, maxAge time.Duration) *RedisSet {
	return &RedisSet{
		client: client,
		prefix: prefix,
		maxAge: max(maxAge, 0),
	}
}

func (s *RedisSet) key(sessionID string) string {
	return s.prefix + sessionID
}

// Add implements SessionSet.
func (s *RedisSet) Add(ctx context.Context, sessionID string, issuedAt time.Time) error {
	return s.client.Set(ctx, s.key(sessionID), strconv.FormatInt(issuedAt.UnixMilli(), 10), s.maxAge).Err()
}

// Contains implements SessionSet.
func (s *RedisSet) Contains(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Remove implements SessionSet.
func (s *RedisSet) Remove(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
