package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetJSON fetches the value for key and unmarshals it into dest.
// Returns ErrCacheMiss if the key is absent or expired.
func GetJSON(ctx context.Context, store Store, key string, dest any) error {
	data, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache: unmarshal %q: %w", key, err)
	}
	return nil
}

// SetJSON marshals value as JSON and stores it under key.
func SetJSON(ctx context.Context, store Store, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %q: %w", key, err)
	}
	return store.Set(ctx, key, data, ttl)
}
