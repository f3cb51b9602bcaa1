// Package ratelimiter provides fixed-window rate limiting over a pluggable
// key-value store.
//
// # Fixed Window Algorithm
//
// Each identifier gets a `{count, firstRequestTime}` record in the store,
// keyed by `prefix:identifier` with TTL equal to the window length. A fresh
// or elapsed window resets the counter; within an active window the counter
// increments while below the limit, and rejections never mutate stored state.
//
// Store unavailability or a corrupted record fails open: the request is
// allowed and the failure logged. Availability wins over strict enforcement
// when the backing store degrades.
//
// # Usage
//
//	store := cache.NewRedisStore(redisClient)
//	limiter, err := ratelimiter.NewFixedWindow(store, ratelimiter.LoginPreset)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := limiter.Allow(ctx, email)
//	if err != nil {
//		return err
//	}
//	if !result.Allowed() {
//		return fmt.Errorf("try again in %s", result.RetryAfter())
//	}
//
// Presets cover the common abuse vectors (registration, login, password
// reset, upload, download, generic API traffic); custom limits use Config
// directly.
package ratelimiter
