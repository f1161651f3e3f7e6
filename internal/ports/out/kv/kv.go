package kv

import "context"

// Store is a minimal durable key-value port. The local fallback store is its
// only client: the original design reached for ambient browser storage, here
// it is an injected dependency so tests can run against memory.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores the value under key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error
}
