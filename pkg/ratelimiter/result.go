package ratelimiter

import "time"

// Result reports the outcome of a rate limit check.
type Result struct {
	// Limit is the maximum number of requests allowed per window.
	Limit int
	// Current is the request count recorded in the active window,
	// including this request when it was allowed.
	Current int
	// Remaining is the number of requests left in the active window.
	Remaining int
	// ResetAt is when the active window ends and the counter resets.
	ResetAt time.Time

	allowed bool
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool {
	return r.allowed
}

// RetryAfter returns how long the caller should wait before retrying.
// Returns zero for allowed requests.
func (r *Result) RetryAfter() time.Duration {
	if r.allowed {
		return 0
	}
	if d := time.Until(r.ResetAt); d > 0 {
		return d
	}
	return 0
}
