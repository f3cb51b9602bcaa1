package ratelimiter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/inkpress/core/cache"
)

// RateLimiter is the contract for request admission by rate.
type RateLimiter interface {
	// Allow records and checks a request for the given identifier.
	Allow(ctx context.Context, identifier string) (*Result, error)
}

// Config defines a fixed-window rate limit.
type Config struct {
	// MaxRequests is the number of requests allowed per window. Must be > 0.
	MaxRequests int
	// Window is the length of the counting window. Must be > 0.
	Window time.Duration
	// KeyPrefix namespaces counters in the backing store,
	// so different use cases sharing a store never collide.
	KeyPrefix string
}

// Validate checks config invariants.
func (c Config) Validate() error {
	if c.MaxRequests <= 0 || c.Window <= 0 || c.KeyPrefix == "" {
		return ErrInvalidConfig
	}
	return nil
}

// windowRecord is the persisted counter state for one identifier.
type windowRecord struct {
	Count            int       `json:"count"`
	FirstRequestTime time.Time `json:"first_request_time"`
}

// FixedWindow is a fixed-window counter over a cache.Store.
//
// The counter uses read-modify-write without an atomic increment, so
// concurrent requests for the same identifier can both observe the
// pre-increment count and exceed the limit by a small margin under
// contention. Store failures fail open: availability is preferred over
// strict enforcement when the backing store degrades.
type FixedWindow struct {
	store cache.Store
	cfg   Config
	log   *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// Option configures a FixedWindow limiter.
type Option func(*FixedWindow)

// WithLogger sets the logger for store failures observed during checks.
func WithLogger(log *slog.Logger) Option {
	return func(fw *FixedWindow) {
		if log != nil {
			fw.log = log
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(fw *FixedWindow) {
		if now != nil {
			fw.now = now
		}
	}
}

// NewFixedWindow creates a fixed-window limiter backed by the given store.
func NewFixedWindow(store cache.Store, cfg Config, opts ...Option) (*FixedWindow, error) {
	if store == nil {
		return nil, errors.New("ratelimiter: store must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fw := &FixedWindow{
		store: store,
		cfg:   cfg,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw, nil
}

// Allow checks and records a request for identifier.
//
// A fresh or elapsed window resets the counter to 1 and allows. Within an
// active window the counter increments and allows while below the limit;
// at the limit the request is rejected without mutating the stored count.
// The returned error is always nil for store failures: those allow the
// request and are only logged.
func (fw *FixedWindow) Allow(ctx context.Context, identifier string) (*Result, error) {
	now := fw.now()
	key := fw.cfg.KeyPrefix + ":" + identifier

	record, err := fw.load(ctx, key)
	if err != nil {
		fw.log.WarnContext(ctx, "rate limit check failed open",
			"key", key,
			"error", err,
		)
		return fw.failOpen(now), nil
	}

	// Absent record or elapsed window starts a fresh window.
	if record == nil || !now.Before(record.FirstRequestTime.Add(fw.cfg.Window)) {
		fresh := windowRecord{Count: 1, FirstRequestTime: now}
		if err := fw.persist(ctx, key, fresh); err != nil {
			fw.log.WarnContext(ctx, "rate limit persist failed open",
				"key", key,
				"error", err,
			)
			return fw.failOpen(now), nil
		}
		return fw.result(fresh, true), nil
	}

	if record.Count >= fw.cfg.MaxRequests {
		// Rejection must not push the window forward or mutate the count.
		return fw.result(*record, false), nil
	}

	record.Count++
	if err := fw.persist(ctx, key, *record); err != nil {
		fw.log.WarnContext(ctx, "rate limit persist failed open",
			"key", key,
			"error", err,
		)
		return fw.failOpen(now), nil
	}
	return fw.result(*record, true), nil
}

// Reset clears the counter for identifier.
func (fw *FixedWindow) Reset(ctx context.Context, identifier string) error {
	return fw.store.Delete(ctx, fw.cfg.KeyPrefix+":"+identifier)
}

// Status reports the current window state without consuming a request.
func (fw *FixedWindow) Status(ctx context.Context, identifier string) (*Result, error) {
	now := fw.now()
	record, err := fw.load(ctx, fw.cfg.KeyPrefix+":"+identifier)
	if err != nil || record == nil || !now.Before(record.FirstRequestTime.Add(fw.cfg.Window)) {
		return fw.failOpen(now), nil
	}
	return fw.result(*record, record.Count < fw.cfg.MaxRequests), nil
}

// load returns the stored window record, nil when absent,
// or an error for store/parse failures.
func (fw *FixedWindow) load(ctx context.Context, key string) (*windowRecord, error) {
	data, err := fw.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}

	var record windowRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (fw *FixedWindow) persist(ctx context.Context, key string, record windowRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return fw.store.Set(ctx, key, data, fw.cfg.Window)
}

func (fw *FixedWindow) result(record windowRecord, allowed bool) *Result {
	remaining := fw.cfg.MaxRequests - record.Count
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Limit:     fw.cfg.MaxRequests,
		Current:   record.Count,
		Remaining: remaining,
		ResetAt:   record.FirstRequestTime.Add(fw.cfg.Window),
		allowed:   allowed,
	}
}

// failOpen builds an allowed result for degraded-store conditions.
func (fw *FixedWindow) failOpen(now time.Time) *Result {
	return &Result{
		Limit:     fw.cfg.MaxRequests,
		Current:   0,
		Remaining: fw.cfg.MaxRequests,
		ResetAt:   now.Add(fw.cfg.Window),
		allowed:   true,
	}
}
