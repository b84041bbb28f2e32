package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/secondsky/ratelimit"
	"github.com/secondsky/ratelimit/store"
)

var _ ratelimit.Limiter = &MultiTier{}

// Tier is one independently counted (limit, window) pair within a multi-tier
// policy, e.g. {"1/sec", 1, time.Second}.
type Tier struct {
	Name   string
	Limit  int64
	Window time.Duration
}

// TierLimiterFactory builds the limiter backing one tier. NewMultiTierWith
// uses it to back tiers with any algorithm.
type TierLimiterFactory func(t Tier) (ratelimit.Limiter, error)

type boundTier struct {
	tier    Tier
	limiter ratelimit.Limiter
}

// MultiTier evaluates an ordered list of tiers and stops at the first
// denial. Each tier keeps its own counter under a tier-scoped key, so tiers
// are independent and their order affects only latency, not correctness;
// place tight, cheap tiers (per-second) before loose ones (per-day).
type MultiTier struct {
	tiers []boundTier
}

// NewMultiTier creates a multi-tier limiter backing every tier with a fixed
// window counter over st; the options apply to each of them.
func NewMultiTier(st store.Store, tiers []Tier, opts ...Option) (*MultiTier, error) {
	return NewMultiTierWith(func(t Tier) (ratelimit.Limiter, error) {
		return NewFixedWindow(st, t.Limit, t.Window, opts...)
	}, tiers)
}

// NewMultiTierWith creates a multi-tier limiter whose tiers are backed by
// the limiters the factory builds.
func NewMultiTierWith(factory TierLimiterFactory, tiers []Tier) (*MultiTier, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: tier limiter factory must not be nil", ratelimit.ErrInvalidConfig)
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: at least one tier is required", ratelimit.ErrInvalidConfig)
	}

	seen := make(map[string]struct{}, len(tiers))
	bound := make([]boundTier, 0, len(tiers))
	for _, t := range tiers {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: tier name must not be empty", ratelimit.ErrInvalidConfig)
		}
		if _, dup := seen[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate tier name %q", ratelimit.ErrInvalidConfig, t.Name)
		}
		seen[t.Name] = struct{}{}

		limiter, err := factory(t)
		if err != nil {
			return nil, fmt.Errorf("failed to build limiter for tier %q: %w", t.Name, err)
		}
		bound = append(bound, boundTier{tier: t, limiter: limiter})
	}
	return &MultiTier{tiers: bound}, nil
}

// Evaluate runs the tiers in order against tier-scoped keys. The first
// denying tier short-circuits and its Decision is returned with Tier set to
// the tier's name. When every tier allows, the aggregate Decision reports
// Limit and Remaining as -1, since no single tier's quota describes it.
func (m *MultiTier) Evaluate(ctx context.Context, key string) (ratelimit.Decision, error) {
	var degraded error
	for _, bt := range m.tiers {
		decision, err := bt.limiter.Evaluate(ctx, key+":"+bt.tier.Name)
		if err != nil && degraded == nil {
			degraded = err
		}
		if !decision.Allowed {
			decision.Tier = bt.tier.Name
			return decision, degraded
		}
	}
	return ratelimit.Decision{
		Allowed:   true,
		Limit:     -1,
		Remaining: -1,
	}, degraded
}
