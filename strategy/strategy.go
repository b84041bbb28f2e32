// Package strategy implements the rate limiting algorithms: fixed window,
// sliding window, token bucket and the multi-tier composer. Every strategy
// satisfies ratelimit.Limiter and keeps all of its state in a store.Store,
// so instances are stateless and safe to share across goroutines.
//
// The store contract offers no atomic increment, only get and overwrite
// with TTL. All strategies are therefore read-modify-write and tolerate
// lost updates: concurrent requests against the same key may read the same
// state and each persist their own successor, admitting a handful of extra
// requests under contention. That imprecision is the accepted price of
// running against any KV backend.
package strategy

import (
	"fmt"
	"time"

	"github.com/secondsky/ratelimit"
	"github.com/secondsky/ratelimit/logger"
)

// Storage key namespaces, one per algorithm so records never collide.
const (
	fixedPrefix   = "ratelimit:fixed:"
	slidingPrefix = "ratelimit:sliding:"
	bucketPrefix  = "ratelimit:bucket:"
)

// settings are the knobs shared by every strategy.
type settings struct {
	now          ratelimit.Clock
	logger       logger.Logger
	policy       ratelimit.FailurePolicy
	safetyMargin time.Duration
}

// Option configures a strategy.
type Option func(*settings)

func newSettings(opts ...Option) settings {
	s := settings{
		now:          time.Now,
		logger:       logger.NewNoop(),
		policy:       ratelimit.FailOpen,
		safetyMargin: time.Minute,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock sets the clock the strategy reads. Tests pin it and advance it
// manually.
func WithClock(now ratelimit.Clock) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets where store degradation is reported.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFailurePolicy sets the outcome of evaluations when the store is
// unreachable. The default is ratelimit.FailOpen.
func WithFailurePolicy(p ratelimit.FailurePolicy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithSafetyMargin sets the slack added to record TTLs to survive clock
// skew between the store and its callers. The default is one minute.
func WithSafetyMargin(margin time.Duration) Option {
	return func(s *settings) {
		if margin >= 0 {
			s.safetyMargin = margin
		}
	}
}

// storeFailure resolves a store error into a Decision per the configured
// policy. The returned error wraps ratelimit.ErrStoreUnavailable so callers
// can detect the degradation; the Decision is still fully usable.
func (s settings) storeFailure(limit int64, err error) (ratelimit.Decision, error) {
	wrapped := fmt.Errorf("%w: %v", ratelimit.ErrStoreUnavailable, err)
	if s.policy == ratelimit.FailClosed {
		s.logger.Errorf("counter store failure, denying request: %v", err)
		return ratelimit.Decision{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			RetryAfter: time.Second,
		}, wrapped
	}
	s.logger.Errorf("counter store failure, allowing request: %v", err)
	return ratelimit.Decision{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit,
	}, wrapped
}
