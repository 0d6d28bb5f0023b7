// Package redis creates go-redis clients with connection verification.
//
// Connect accepts redis:// and rediss:// URLs, pings the server and retries
// with a doubling interval until ConnectTimeout. Healthcheck returns a ping
// function for readiness probes.
//
//	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: "redis://localhost:6379/0"})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
