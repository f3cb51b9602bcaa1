package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilConfig is returned when a nil pointer is passed to Load.
	ErrNilConfig = errors.New("config: target must be a non-nil pointer to struct")

	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> parsed struct value
)

// Load parses environment variables into the given struct pointer.
// Each struct type is parsed once per process; subsequent calls for the
// same type return the cached value. A .env file in the working directory
// is loaded on first use if present.
func Load(cfg any) error {
	if cfg == nil {
		return ErrNilConfig
	}
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		// Missing .env is not an error; env vars may come from the environment.
		_ = godotenv.Load()
	})

	typ := v.Elem().Type()
	if cached, ok := cache.Load(typ); ok {
		v.Elem().Set(reflect.ValueOf(cached))
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", typ, err)
	}

	cache.Store(typ, v.Elem().Interface())
	return nil
}

// MustLoad is like Load but panics on failure.
// Intended for application startup where a missing required variable
// should abort the process.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
