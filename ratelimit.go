// Package ratelimit implements admission control over a pluggable key-value
// counter store. It ships three interchangeable algorithms (fixed window,
// sliding window, token bucket), a multi-tier composer, stock key generators
// and HTTP middleware. State lives entirely in the counter store; the engine
// itself is stateless compute and safe for concurrent use.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"
)

// Clock supplies the current wall-clock time. Injectable for tests.
type Clock func() time.Time

// FailurePolicy decides the outcome of an evaluation when the counter store
// cannot be consulted.
type FailurePolicy int

const (
	// FailOpen admits the request when the store is unreachable. Rate
	// limiting must never become a hard dependency of the protected service,
	// so this is the default.
	FailOpen FailurePolicy = iota

	// FailClosed denies the request when the store is unreachable.
	FailClosed
)

var (
	// ErrInvalidConfig is returned by constructors for non-positive limits,
	// windows, capacities or refill rates. It is never returned at request
	// time.
	ErrInvalidConfig = errors.New("invalid rate limiter configuration")

	// ErrStoreUnavailable wraps counter store failures. Evaluate still
	// returns a usable Decision alongside it, resolved by the configured
	// FailurePolicy; callers should log the degradation and honor the
	// Decision rather than fail the request.
	ErrStoreUnavailable = errors.New("counter store unavailable")
)

// Decision is the outcome of a single rate limit evaluation. It is created
// fresh per evaluation and never persisted.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64

	// ResetAt is the time at which the governing window ends or the bucket
	// has refilled enough for the denied request to succeed.
	ResetAt time.Time

	// RetryAfter is how long the caller should wait before retrying. Zero
	// when the request is allowed.
	RetryAfter time.Duration

	// Tier names the denying tier when the decision came from a multi-tier
	// policy. Empty otherwise.
	Tier string
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds, as
// expected by the Retry-After header.
func (d Decision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int64(math.Ceil(d.RetryAfter.Seconds()))
}

// Limiter is the contract shared by every algorithm. The key identifies the
// entity being throttled and is produced by a KeyFunc.
//
// Implementations must return a usable Decision even on error: store
// failures surface as a Decision resolved by the FailurePolicy together with
// an error wrapping ErrStoreUnavailable.
type Limiter interface {
	Evaluate(ctx context.Context, key string) (Decision, error)
}
