package ratelimiter

import "errors"

// Package-level error definitions for rate limiter operations.
var (
	ErrInvalidConfig     = errors.New("invalid rate limiter configuration")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)
