package ratelimiter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inkpress/core/cache"
	"github.com/dmitrymomot/inkpress/pkg/ratelimiter"
)

// failingStore simulates a degraded backing store.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingStore) Delete(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

func newTestLimiter(t *testing.T, cfg ratelimiter.Config, now *time.Time) *ratelimiter.FixedWindow {
	t.Helper()
	limiter, err := ratelimiter.NewFixedWindow(
		cache.NewMemoryStore(),
		cfg,
		ratelimiter.WithClock(func() time.Time { return *now }),
	)
	require.NoError(t, err)
	return limiter
}

func TestFixedWindowAllowsUpToLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	limiter := newTestLimiter(t, ratelimiter.Config{
		MaxRequests: 3,
		Window:      time.Minute,
		KeyPrefix:   "rl:test",
	}, &now)

	for i := 1; i <= 3; i++ {
		result, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, result.Allowed(), "request %d should be allowed", i)
		assert.Equal(t, i, result.Current)
		assert.Equal(t, 3-i, result.Remaining)
	}

	result, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, result.Allowed())
	assert.Equal(t, 3, result.Current)
	assert.Zero(t, result.Remaining)
	assert.Positive(t, result.RetryAfter())
}

func TestFixedWindowRejectionDoesNotMutateState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	limiter := newTestLimiter(t, ratelimiter.Config{
		MaxRequests: 2,
		Window:      time.Minute,
		KeyPrefix:   "rl:test",
	}, &now)

	_, err := limiter.Allow(ctx, "user@example.com")
	require.NoError(t, err)
	first, err := limiter.Allow(ctx, "user@example.com")
	require.NoError(t, err)
	require.True(t, first.Allowed())

	// Repeated rejections must not extend the window or grow the count.
	var rejected *ratelimiter.Result
	for range 5 {
		rejected, err = limiter.Allow(ctx, "user@example.com")
		require.NoError(t, err)
		assert.False(t, rejected.Allowed())
	}
	assert.Equal(t, 2, rejected.Current)
	assert.Equal(t, first.ResetAt, rejected.ResetAt)
}

func TestFixedWindowResetsAfterWindowElapses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	limiter := newTestLimiter(t, ratelimiter.Config{
		MaxRequests: 1,
		Window:      time.Minute,
		KeyPrefix:   "rl:test",
	}, &now)

	result, err := limiter.Allow(ctx, "id")
	require.NoError(t, err)
	require.True(t, result.Allowed())

	result, err = limiter.Allow(ctx, "id")
	require.NoError(t, err)
	require.False(t, result.Allowed())

	now = now.Add(time.Minute + time.Second)

	result, err = limiter.Allow(ctx, "id")
	require.NoError(t, err)
	assert.True(t, result.Allowed())
	assert.Equal(t, 1, result.Current)
}

func TestFixedWindowIdentifiersAreIndependent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	limiter := newTestLimiter(t, ratelimiter.Config{
		MaxRequests: 1,
		Window:      time.Minute,
		KeyPrefix:   "rl:test",
	}, &now)

	result, err := limiter.Allow(ctx, "first")
	require.NoError(t, err)
	require.True(t, result.Allowed())

	result, err = limiter.Allow(ctx, "second")
	require.NoError(t, err)
	assert.True(t, result.Allowed())
}

func TestFixedWindowFailsOpenOnStoreFailure(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.NewFixedWindow(failingStore{}, ratelimiter.Config{
		MaxRequests: 1,
		Window:      time.Minute,
		KeyPrefix:   "rl:test",
	})
	require.NoError(t, err)

	for range 3 {
		result, err := limiter.Allow(context.Background(), "id")
		require.NoError(t, err)
		assert.True(t, result.Allowed())
	}
}

func TestFixedWindowFailsOpenOnCorruptRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := cache.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "rl:test:id", []byte("not json"), 0))

	limiter, err := ratelimiter.NewFixedWindow(store, ratelimiter.Config{
		MaxRequests: 1,
		Window:      time.Minute,
		KeyPrefix:   "rl:test",
	})
	require.NoError(t, err)

	result, err := limiter.Allow(ctx, "id")
	require.NoError(t, err)
	assert.True(t, result.Allowed())
}

func TestFixedWindowReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	limiter := newTestLimiter(t, ratelimiter.Config{
		MaxRequests: 1,
		Window:      time.Minute,
		KeyPrefix:   "rl:test",
	}, &now)

	_, err := limiter.Allow(ctx, "id")
	require.NoError(t, err)
	result, err := limiter.Allow(ctx, "id")
	require.NoError(t, err)
	require.False(t, result.Allowed())

	require.NoError(t, limiter.Reset(ctx, "id"))

	result, err = limiter.Allow(ctx, "id")
	require.NoError(t, err)
	assert.True(t, result.Allowed())
}

func TestFixedWindowInvalidConfig(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	for _, cfg := range []ratelimiter.Config{
		{MaxRequests: 0, Window: time.Minute, KeyPrefix: "rl:x"},
		{MaxRequests: 5, Window: 0, KeyPrefix: "rl:x"},
		{MaxRequests: 5, Window: time.Minute, KeyPrefix: ""},
	} {
		_, err := ratelimiter.NewFixedWindow(store, cfg)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	}
}

func TestPresetsAreValid(t *testing.T) {
	t.Parallel()

	presets := []ratelimiter.Config{
		ratelimiter.RegistrationPreset,
		ratelimiter.LoginPreset,
		ratelimiter.PasswordResetPreset,
		ratelimiter.UploadPreset,
		ratelimiter.DownloadPreset,
		ratelimiter.APIPreset,
	}

	seen := make(map[string]bool)
	for _, preset := range presets {
		require.NoError(t, preset.Validate())
		assert.False(t, seen[preset.KeyPrefix], "duplicate prefix %s", preset.KeyPrefix)
		seen[preset.KeyPrefix] = true
	}
}
