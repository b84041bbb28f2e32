package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/secondsky/ratelimit"
	"github.com/secondsky/ratelimit/store"
)

var _ ratelimit.Limiter = &SlidingWindow{}

// slidingWindowRecord is the persisted log of recent request timestamps,
// in Unix milliseconds.
type slidingWindowRecord struct {
	Requests []int64 `json:"requests"`
}

// SlidingWindow keeps a log of request timestamps within the trailing window
// and admits a request only while fewer than limit timestamps remain after
// pruning. Counting is exact under sequential execution, at the cost of
// O(limit) storage and pruning per key; fine for small-to-moderate limits.
type SlidingWindow struct {
	store    store.Store
	limit    int64
	window   time.Duration
	settings settings
}

// NewSlidingWindow creates a log-based sliding window limiter admitting
// limit requests per trailing window.
func NewSlidingWindow(st store.Store, limit int64, window time.Duration, opts ...Option) (*SlidingWindow, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: store must not be nil", ratelimit.ErrInvalidConfig)
	}
	if limit <= 0 || window <= 0 {
		return nil, fmt.Errorf("%w: limit and window must be positive", ratelimit.ErrInvalidConfig)
	}
	return &SlidingWindow{
		store:    st,
		limit:    limit,
		window:   window,
		settings: newSettings(opts...),
	}, nil
}

// Evaluate admits or denies one request for key. A denied request leaves
// stored state untouched: rejected attempts never count against the window.
func (s *SlidingWindow) Evaluate(ctx context.Context, key string) (ratelimit.Decision, error) {
	now := s.settings.now()
	nowMs := now.UnixMilli()
	cutoff := nowMs - s.window.Milliseconds()
	storageKey := slidingPrefix + key

	var rec slidingWindowRecord
	raw, ok, err := s.store.Get(ctx, storageKey)
	if err != nil {
		return s.settings.storeFailure(s.limit, err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			rec = slidingWindowRecord{}
		}
	}

	kept := make([]int64, 0, len(rec.Requests)+1)
	var oldest int64
	for _, ts := range rec.Requests {
		if ts <= cutoff {
			continue
		}
		if oldest == 0 || ts < oldest {
			oldest = ts
		}
		kept = append(kept, ts)
	}

	if int64(len(kept)) >= s.limit {
		resetAt := time.UnixMilli(oldest + s.window.Milliseconds())
		return ratelimit.Decision{
			Allowed:    false,
			Limit:      s.limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	kept = append(kept, nowMs)
	buf, err := json.Marshal(slidingWindowRecord{Requests: kept})
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("failed to encode window record for key %v: %w", key, err)
	}
	ttl := s.window + s.settings.safetyMargin
	if err := s.store.SetWithTTL(ctx, storageKey, string(buf), ttl); err != nil {
		return s.settings.storeFailure(s.limit, err)
	}

	return ratelimit.Decision{
		Allowed:   true,
		Limit:     s.limit,
		Remaining: s.limit - int64(len(kept)),
		ResetAt:   now.Add(s.window),
	}, nil
}
