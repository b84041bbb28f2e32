package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/secondsky/ratelimit"
	"github.com/secondsky/ratelimit/store"
)

var _ ratelimit.Limiter = &TokenBucket{}

// tokenBucketRecord is the persisted bucket state.
type tokenBucketRecord struct {
	Tokens     float64 `json:"tokens"`
	LastRefill int64   `json:"lastRefill"`
}

// TokenBucket refills a per-key bucket continuously at refillRate tokens per
// second, up to capacity, and charges each request its cost in tokens. It is
// the only algorithm supporting variable-cost requests; prefer it when some
// endpoints are more expensive than others.
type TokenBucket struct {
	store      store.Store
	capacity   float64
	refillRate float64
	settings   settings
}

// NewTokenBucket creates a token bucket limiter holding at most capacity
// tokens and earning refillRate tokens per second.
func NewTokenBucket(st store.Store, capacity, refillRate float64, opts ...Option) (*TokenBucket, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: store must not be nil", ratelimit.ErrInvalidConfig)
	}
	if capacity <= 0 || refillRate <= 0 {
		return nil, fmt.Errorf("%w: capacity and refill rate must be positive", ratelimit.ErrInvalidConfig)
	}
	return &TokenBucket{
		store:      st,
		capacity:   capacity,
		refillRate: refillRate,
		settings:   newSettings(opts...),
	}, nil
}

// Evaluate admits or denies one request of cost 1 for key.
func (t *TokenBucket) Evaluate(ctx context.Context, key string) (ratelimit.Decision, error) {
	return t.EvaluateCost(ctx, key, 1)
}

// EvaluateCost admits or denies one request charging cost tokens. Refill is
// applied and persisted before the admission check, even when the request is
// denied, so idle periods are always credited.
func (t *TokenBucket) EvaluateCost(ctx context.Context, key string, cost float64) (ratelimit.Decision, error) {
	if cost <= 0 {
		return ratelimit.Decision{}, fmt.Errorf("%w: cost must be positive", ratelimit.ErrInvalidConfig)
	}

	now := t.settings.now()
	nowMs := now.UnixMilli()
	storageKey := bucketPrefix + key
	limit := int64(math.Floor(t.capacity))

	rec := tokenBucketRecord{Tokens: t.capacity, LastRefill: nowMs}
	raw, ok, err := t.store.Get(ctx, storageKey)
	if err != nil {
		return t.settings.storeFailure(limit, err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			rec = tokenBucketRecord{Tokens: t.capacity, LastRefill: nowMs}
		}
	}

	if elapsed := float64(nowMs-rec.LastRefill) / 1000; elapsed > 0 {
		rec.Tokens = math.Min(t.capacity, rec.Tokens+elapsed*t.refillRate)
	}
	rec.LastRefill = nowMs

	// Long enough for a full refill; afterwards an absent record and a full
	// bucket are indistinguishable, so the key may expire.
	ttl := time.Duration(t.capacity/t.refillRate*float64(time.Second)) + t.settings.safetyMargin

	if rec.Tokens < cost {
		if err := t.persist(ctx, storageKey, rec, ttl); err != nil {
			return t.settings.storeFailure(limit, err)
		}
		wait := time.Duration((cost - rec.Tokens) / t.refillRate * float64(time.Second))
		return ratelimit.Decision{
			Allowed:    false,
			Limit:      limit,
			Remaining:  int64(math.Floor(rec.Tokens)),
			ResetAt:    now.Add(wait),
			RetryAfter: wait,
		}, nil
	}

	rec.Tokens -= cost
	if err := t.persist(ctx, storageKey, rec, ttl); err != nil {
		return t.settings.storeFailure(limit, err)
	}

	refillFull := time.Duration((t.capacity - rec.Tokens) / t.refillRate * float64(time.Second))
	return ratelimit.Decision{
		Allowed:   true,
		Limit:     limit,
		Remaining: int64(math.Floor(rec.Tokens)),
		ResetAt:   now.Add(refillFull),
	}, nil
}

func (t *TokenBucket) persist(ctx context.Context, storageKey string, rec tokenBucketRecord, ttl time.Duration) error {
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode bucket record for key %v: %w", storageKey, err)
	}
	return t.store.SetWithTTL(ctx, storageKey, string(buf), ttl)
}
