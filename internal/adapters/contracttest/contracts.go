package contracttest

import (
	"context"
	"testing"

	kvport "github.com/porters-chapel/membership-console/internal/ports/out/kv"
)

type CleanupFunc = func()

type KVStoreFactory func(t *testing.T) (kvport.Store, CleanupFunc)

// RunKVStore exercises the kv.Store contract against any adapter. Both the
// bolt and memory adapters run it so the fallback store behaves identically
// regardless of which one is injected.
func RunKVStore(t *testing.T, newStore KVStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// Missing key.
	_, ok, err := store.Get(ctx, "members")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for missing key")
	}

	// Put then get.
	if err := store.Put(ctx, "members", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, "members")
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Fatalf("unexpected value: %q", string(got))
	}

	// Overwrite semantics.
	if err := store.Put(ctx, "members", []byte(`[]`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, "members")
	if err != nil || !ok || string(got) != `[]` {
		t.Fatalf("expected overwritten value, got ok=%v err=%v value=%q", ok, err, string(got))
	}

	// Keys are independent.
	if err := store.Put(ctx, "session", []byte(`{"user":null}`)); err != nil {
		t.Fatalf("Put second key: %v", err)
	}
	got, ok, err = store.Get(ctx, "members")
	if err != nil || !ok || string(got) != `[]` {
		t.Fatalf("second key clobbered first: ok=%v err=%v value=%q", ok, err, string(got))
	}
}
