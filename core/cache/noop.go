package cache

import (
	"context"
	"time"
)

// noopStore discards writes and always misses on reads.
type noopStore struct{}

// NewNoopStore returns a Store that stores nothing.
// Useful as a default when caching is disabled.
func NewNoopStore() Store {
	return noopStore{}
}

func (noopStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (noopStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (noopStore) Delete(ctx context.Context, key string) error {
	return nil
}
