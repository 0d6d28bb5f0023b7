// Package ratelimiter implements token bucket rate limiting.
//
// A Bucket holds Capacity tokens and regains RefillRate tokens every
// RefillInterval. A denied request does not drain the bucket; its Result has
// a negative Remaining and a RetryAfter hint.
//
//	store := ratelimiter.NewMemoryStore()
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       30,
//		RefillRate:     30,
//		RefillInterval: time.Minute,
//	})
//	res, err := limiter.Allow(ctx, clientIP)
//	if err == nil && !res.Allowed() {
//		// 429, Retry-After: res.RetryAfter()
//	}
//
// MemoryStore sweeps idle buckets in a background loop; wire it with
// g.Go(store.Run(ctx)).
package ratelimiter
