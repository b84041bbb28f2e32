// Package store provides counter storage backends for the rate limiting
// strategies. The Store interface is the sole boundary to persistent state:
// any KV-like service with TTL expiry satisfies it, from the in-memory map
// used in tests to a networked Redis.
package store

import (
	"context"
	"time"
)

// Store is a minimal get/put-with-TTL contract over a key-value store.
//
// No atomic increment or compare-and-swap is assumed; SetWithTTL overwrites
// unconditionally (last writer wins) and strategies must stay correct under
// lost updates. Expiry is entirely delegated to the store, no caller ever
// deletes a key explicitly.
type Store interface {
	// Get returns the stored value for key, or ok=false when the key is
	// absent or expired. A missing key is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// SetWithTTL overwrites the value for key and sets or refreshes its
	// expiry.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
}
