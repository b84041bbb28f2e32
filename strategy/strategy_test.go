package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondsky/ratelimit"
	"github.com/secondsky/ratelimit/store"
)

// brokenStore fails every operation, standing in for an unreachable backend.
type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (brokenStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("connection refused")
}

// failingWrites reads fine but rejects every write.
type failingWrites struct {
	*store.Memory
}

func (failingWrites) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("connection refused")
}

func TestStrategies_FailOpenByDefault(t *testing.T) {
	now := time.Date(2024, time.June, 23, 10, 15, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	fixed, err := NewFixedWindow(brokenStore{}, 5, time.Minute, WithClock(clock))
	require.NoError(t, err)
	sliding, err := NewSlidingWindow(brokenStore{}, 5, time.Minute, WithClock(clock))
	require.NoError(t, err)
	bucket, err := NewTokenBucket(brokenStore{}, 5, 1, WithClock(clock))
	require.NoError(t, err)

	tt := []struct {
		desc    string
		limiter ratelimit.Limiter
	}{
		{desc: "fixed window", limiter: fixed},
		{desc: "sliding window", limiter: sliding},
		{desc: "token bucket", limiter: bucket},
	}

	for _, ts := range tt {
		t.Run(ts.desc, func(t *testing.T) {
			dec, err := ts.limiter.Evaluate(context.Background(), "some-user")
			assert.ErrorIs(t, err, ratelimit.ErrStoreUnavailable)
			assert.True(t, dec.Allowed)
			assert.Equal(t, int64(5), dec.Limit)
		})
	}
}

func TestFixedWindow_FailClosed(t *testing.T) {
	fixed, err := NewFixedWindow(brokenStore{}, 5, time.Minute, WithFailurePolicy(ratelimit.FailClosed))
	require.NoError(t, err)

	dec, err := fixed.Evaluate(context.Background(), "some-user")
	assert.ErrorIs(t, err, ratelimit.ErrStoreUnavailable)
	assert.False(t, dec.Allowed)
	assert.Equal(t, int64(0), dec.Remaining)
	assert.Equal(t, int64(1), dec.RetryAfterSeconds())
}

func TestFixedWindow_FailOpenOnWriteFailure(t *testing.T) {
	st := failingWrites{Memory: store.NewMemory(nil)}

	fixed, err := NewFixedWindow(st, 5, time.Minute)
	require.NoError(t, err)

	dec, err := fixed.Evaluate(context.Background(), "some-user")
	assert.ErrorIs(t, err, ratelimit.ErrStoreUnavailable)
	assert.True(t, dec.Allowed)
}
