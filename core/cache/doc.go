// Package cache provides a byte-oriented key-value store abstraction with
// per-key expiration, backed by Redis in production and an in-memory map
// in tests.
//
// The Store interface is deliberately small: Get, Set with TTL, Delete.
// Higher-level concerns such as sessions and rate limiting build on it
// without caring which backend is wired in:
//
//	store := cache.NewRedisStore(redisClient)
//	err := store.Set(ctx, "greeting", []byte("hello"), time.Minute)
//	val, err := store.Get(ctx, "greeting")
//
// GetJSON and SetJSON add JSON marshaling on top of any Store for
// structured values.
package cache
