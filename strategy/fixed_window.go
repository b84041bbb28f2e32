package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/secondsky/ratelimit"
	"github.com/secondsky/ratelimit/store"
)

var _ ratelimit.Limiter = &FixedWindow{}

// fixedWindowRecord is the persisted counter for one discrete window.
type fixedWindowRecord struct {
	Count int64 `json:"count"`
}

// FixedWindow counts requests within discrete, clock-aligned intervals. Each
// window gets its own storage key derived from the window start, so
// concurrent requests in the same window address the same counter and the
// record expires on its own via TTL once the window has passed.
//
// It is the cheapest algorithm (one read, one write) but permits up to twice
// the limit across a window boundary, since a burst may straddle two
// adjacent windows.
type FixedWindow struct {
	store    store.Store
	limit    int64
	window   time.Duration
	settings settings
}

// NewFixedWindow creates a fixed window limiter admitting limit requests
// per window.
func NewFixedWindow(st store.Store, limit int64, window time.Duration, opts ...Option) (*FixedWindow, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: store must not be nil", ratelimit.ErrInvalidConfig)
	}
	if limit <= 0 || window <= 0 {
		return nil, fmt.Errorf("%w: limit and window must be positive", ratelimit.ErrInvalidConfig)
	}
	return &FixedWindow{
		store:    st,
		limit:    limit,
		window:   window,
		settings: newSettings(opts...),
	}, nil
}

// Evaluate admits or denies one request for key. Denied requests do not
// advance the counter.
func (f *FixedWindow) Evaluate(ctx context.Context, key string) (ratelimit.Decision, error) {
	now := f.settings.now()
	windowMs := f.window.Milliseconds()
	windowStart := now.UnixMilli() - now.UnixMilli()%windowMs
	resetAt := time.UnixMilli(windowStart + windowMs)
	storageKey := fmt.Sprintf("%s%s:%d", fixedPrefix, key, windowStart)

	var rec fixedWindowRecord
	raw, ok, err := f.store.Get(ctx, storageKey)
	if err != nil {
		return f.settings.storeFailure(f.limit, err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			// A corrupt record restarts the window rather than denying.
			rec = fixedWindowRecord{}
		}
	}

	if rec.Count >= f.limit {
		return ratelimit.Decision{
			Allowed:    false,
			Limit:      f.limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	rec.Count++
	buf, err := json.Marshal(rec)
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("failed to encode window record for key %v: %w", key, err)
	}
	// The margin keeps the record alive past the window end under clock
	// skew between the store and this process.
	ttl := f.window + f.settings.safetyMargin
	if err := f.store.SetWithTTL(ctx, storageKey, string(buf), ttl); err != nil {
		return f.settings.storeFailure(f.limit, err)
	}

	return ratelimit.Decision{
		Allowed:   true,
		Limit:     f.limit,
		Remaining: f.limit - rec.Count,
		ResetAt:   resetAt,
	}, nil
}
