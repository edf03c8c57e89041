package ratelimit

import "context"

// Store defines the interface for counter storage.
// Implementations must be safe for concurrent use by any number of goroutines.
type Store interface {
	// Get returns the counter stored for key. The boolean is false when no counter exists.
	Get(ctx context.Context, key string) (Counter, bool, error)

	// Put inserts or replaces the counter for key.
	Put(ctx context.Context, key string, counter Counter) error

	// TryAdd inserts the counter only if key is absent and reports whether it did.
	TryAdd(ctx context.Context, key string, counter Counter) (bool, error)
}
