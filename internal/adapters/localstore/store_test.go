package localstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oapi-codegen/nullable"
	"go.uber.org/zap"

	memclock "github.com/porters-chapel/membership-console/internal/adapters/memory/clock"
	memkv "github.com/porters-chapel/membership-console/internal/adapters/memory/kv"
	"github.com/porters-chapel/membership-console/internal/domain"
	"github.com/porters-chapel/membership-console/internal/ports/out/memberstore"
)

func newTestStore(t *testing.T) (*Store, *memkv.Store, *memclock.ManualClock) {
	t.Helper()
	kv := memkv.NewStore()
	clk := memclock.NewManualClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewStore(kv, clk, zap.NewNop()), kv, clk
}

func TestStore_ReadMissingAndCorrupt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, kv, _ := newTestStore(t)

	if got := store.Read(ctx); len(got) != 0 {
		t.Fatalf("expected empty read, got %d records", len(got))
	}

	if err := kv.Put(ctx, StorageKey, []byte("{not json")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got := store.Read(ctx); len(got) != 0 {
		t.Fatalf("expected empty read for corrupt blob, got %d records", len(got))
	}
}

func TestStore_CreateAssignsLocalIDAndTimestamps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _, clk := newTestStore(t)

	m, err := store.Create(ctx, memberstore.CreatePayload{
		FullName:      "Ama Boateng",
		Age:           "25",
		DOB:           "1999-04-02",
		PhoneNumber:   "+233241112222",
		MaritalStatus: "SINGLE",
		JoiningDate:   "2022-01-10T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.ID != domain.NewLocalID(clk.Now()) {
		t.Fatalf("id=%q", m.ID)
	}
	if m.CreatedAt == "" || m.CreatedAt != m.UpdatedAt {
		t.Fatalf("createdAt=%q updatedAt=%q", m.CreatedAt, m.UpdatedAt)
	}
	// The returned record is normalized.
	if m.MaritalStatus != "Single" || m.JoiningDate != "2022-01-10" {
		t.Fatalf("maritalStatus=%q joiningDate=%q", m.MaritalStatus, m.JoiningDate)
	}

	got, err := store.Get(ctx, string(m.ID))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FullName != "Ama Boateng" {
		t.Fatalf("fullName=%q", got.FullName)
	}
}

func TestStore_ListFiltersAndNormalizes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	for _, p := range []memberstore.CreatePayload{
		{FullName: "Ama Boateng", Age: "10", MaritalStatus: "single"},
		{FullName: "Kofi Mensah", Age: "25", MaritalStatus: "married", Residence: "Boateng Street"},
	} {
		if _, err := store.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := store.List(ctx, domain.Criteria{Search: "boateng"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both records to match, got %d", len(got))
	}
	for _, m := range got {
		if m.MaritalStatus != "Single" && m.MaritalStatus != "Married" {
			t.Fatalf("statuses not normalized: %q", m.MaritalStatus)
		}
	}

	max := 18
	got, err = store.List(ctx, domain.Criteria{MaxAge: &max})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].FullName != "Ama Boateng" {
		t.Fatalf("unexpected age filter result: %+v", got)
	}
}

func TestStore_UpdateMergesPatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _, clk := newTestStore(t)

	created, err := store.Create(ctx, memberstore.CreatePayload{
		FullName:       "Ama Boateng",
		Residence:      "Accra",
		AltPhoneNumber: "+233201234567",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	clk.Advance(time.Hour)
	updated, err := store.Update(ctx, string(created.ID), memberstore.UpdatePatch{
		Residence:      nullable.NewNullableWithValue("Kumasi"),
		AltPhoneNumber: nullable.NewNullNullable[string](),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Residence != "Kumasi" {
		t.Fatalf("residence=%q", updated.Residence)
	}
	if updated.AltPhoneNumber != "" {
		t.Fatalf("expected altPhoneNumber cleared, got %q", updated.AltPhoneNumber)
	}
	if updated.FullName != "Ama Boateng" {
		t.Fatalf("unspecified field changed: %q", updated.FullName)
	}
	if updated.UpdatedAt == created.UpdatedAt {
		t.Fatalf("updatedAt not refreshed")
	}

	if _, err := store.Update(ctx, "does-not-exist", memberstore.UpdatePatch{}); !errors.Is(err, memberstore.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestStore_TrashOpsRequireRemote(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	if err := store.SoftDelete(ctx, "1"); !errors.Is(err, memberstore.ErrRequiresRemote) {
		t.Fatalf("SoftDelete err=%v", err)
	}
	if _, err := store.Restore(ctx, "1"); !errors.Is(err, memberstore.ErrRequiresRemote) {
		t.Fatalf("Restore err=%v", err)
	}
	if err := store.PermanentDelete(ctx, "1"); !errors.Is(err, memberstore.ErrRequiresRemote) {
		t.Fatalf("PermanentDelete err=%v", err)
	}
	if _, err := store.Stats(ctx); !errors.Is(err, memberstore.ErrRequiresRemote) {
		t.Fatalf("Stats err=%v", err)
	}
}

func TestStore_MirrorLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	m := domain.Member{ID: "42", FullName: "Ama Boateng"}
	store.MirrorUpsert(ctx, m)
	m.FullName = "Ama B. Boateng"
	store.MirrorUpsert(ctx, m)

	records := store.Read(ctx)
	if len(records) != 1 || records[0].FullName != "Ama B. Boateng" {
		t.Fatalf("upsert did not replace: %+v", records)
	}

	deleted := "2024-06-01T12:00:00Z"
	store.MirrorDeletedAt(ctx, "42", &deleted)
	got, err := store.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.InTrash() {
		t.Fatalf("expected record in trash")
	}

	store.MirrorDeletedAt(ctx, "42", nil)
	got, _ = store.Get(ctx, "42")
	if got.InTrash() {
		t.Fatalf("expected record restored")
	}

	store.MirrorRemove(ctx, "42")
	if _, err := store.Get(ctx, "42"); !errors.Is(err, memberstore.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

// failingKV rejects writes so Write's never-fail contract can be observed.
type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (failingKV) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestStore_WriteSwallowsPersistenceFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := memclock.NewManualClock(time.Unix(0, 0))
	store := NewStore(failingKV{}, clk, zap.NewNop())

	if _, err := store.Create(ctx, memberstore.CreatePayload{FullName: "Ama"}); err != nil {
		t.Fatalf("Create must not fail on persistence errors: %v", err)
	}
}
