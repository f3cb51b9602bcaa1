// Package redis provides Redis client initialization with connection
// validation, retry logic, and health checking.
//
// Connect parses the connection URL, attempts the connection with backoff
// retries, and verifies connectivity with a ping before returning the client.
// Healthcheck returns a func(context.Context) error suitable for readiness
// probes.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// The returned *redis.Client satisfies redis.UniversalClient and plugs
// directly into cache.NewRedisStore.
package redis
