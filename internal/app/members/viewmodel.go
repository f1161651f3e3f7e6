package members

import (
	"context"
	"strings"
	"sync"

	"github.com/oapi-codegen/nullable"
	"go.uber.org/zap"

	"github.com/porters-chapel/membership-console/internal/domain"
)

// FilterPatch merges into the current criteria. Unspecified fields keep
// their value; explicit nulls reset a field to its zero (unbounded / off).
type FilterPatch struct {
	Search        nullable.Nullable[string]
	MaritalStatus nullable.Nullable[string]
	MinAge        nullable.Nullable[int]
	MaxAge        nullable.Nullable[int]
	Trash         nullable.Nullable[bool]
}

// memberOps is the slice of the Service the view model drives, narrowed so
// tests can substitute failing fakes.
type memberOps interface {
	FetchMembers(ctx context.Context, c domain.Criteria) ([]domain.Member, error)
	DeleteMember(ctx context.Context, id string) error
	RestoreMember(ctx context.Context, id string) (domain.Member, error)
	PermanentlyDeleteMember(ctx context.Context, id string) error
}

// ViewModel holds what the member tables render: the current filter set, the
// held record list, a loading flag and a display error. Mutations are
// optimistic: the record disappears from the held list immediately, then a
// forced reload reconciles with authoritative state whether the backend call
// succeeded or not.
type ViewModel struct {
	ops memberOps
	log *zap.Logger

	mu      sync.Mutex
	filters domain.Criteria
	members []domain.Member
	loading bool
	errMsg  string
}

// NewViewModel starts in the loading state; call Reload to populate.
func NewViewModel(ops memberOps, log *zap.Logger) *ViewModel {
	return &ViewModel{ops: ops, log: log, loading: true}
}

func (vm *ViewModel) Members() []domain.Member {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]domain.Member(nil), vm.members...)
}

func (vm *ViewModel) Loading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loading
}

// Err is the user-visible error message; empty when there is nothing worth
// showing.
func (vm *ViewModel) Err() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.errMsg
}

func (vm *ViewModel) Filters() domain.Criteria {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.filters
}

// SetFilters merges the patch into the current criteria and re-fetches.
func (vm *ViewModel) SetFilters(ctx context.Context, p FilterPatch) error {
	vm.mu.Lock()
	applyFilterPatch(&vm.filters, p)
	vm.mu.Unlock()
	return vm.Reload(ctx)
}

// Reload re-fetches with the current filter set, transitioning through the
// loading state. Fetch failures land in the error state (subject to offline
// suppression) as well as being returned.
func (vm *ViewModel) Reload(ctx context.Context) error {
	vm.mu.Lock()
	vm.loading = true
	vm.errMsg = ""
	filters := vm.filters
	vm.mu.Unlock()

	ms, err := vm.ops.FetchMembers(ctx, filters)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.loading = false
	if err != nil {
		vm.setErrorLocked(errText(err, "failed to load members"))
		return err
	}
	vm.members = ms
	return nil
}

func (vm *ViewModel) DeleteMember(ctx context.Context, id string) error {
	return vm.mutate(ctx, id, "failed to delete member", func(ctx context.Context) error {
		return vm.ops.DeleteMember(ctx, id)
	})
}

func (vm *ViewModel) RestoreMember(ctx context.Context, id string) error {
	return vm.mutate(ctx, id, "failed to restore member", func(ctx context.Context) error {
		_, err := vm.ops.RestoreMember(ctx, id)
		return err
	})
}

func (vm *ViewModel) PermanentlyDeleteMember(ctx context.Context, id string) error {
	return vm.mutate(ctx, id, "failed to permanently delete member", func(ctx context.Context) error {
		return vm.ops.PermanentlyDeleteMember(ctx, id)
	})
}

// mutate is the shared optimistic-mutation protocol: remove the record from
// the held list, run the backend call, then reload. The reload restores the
// pre-mutation state on failure and confirms it on success; the optimistic
// removal alone is never trusted as final.
func (vm *ViewModel) mutate(ctx context.Context, id, fallbackMsg string, op func(context.Context) error) error {
	vm.mu.Lock()
	kept := make([]domain.Member, 0, len(vm.members))
	for _, m := range vm.members {
		if !m.SameID(id) {
			kept = append(kept, m)
		}
	}
	vm.members = kept
	vm.mu.Unlock()

	if err := op(ctx); err != nil {
		if rerr := vm.Reload(ctx); rerr != nil {
			vm.log.Warn("reload after failed mutation also failed", zap.Error(rerr))
		}
		vm.mu.Lock()
		vm.setErrorLocked(errText(err, fallbackMsg))
		vm.mu.Unlock()
		return err
	}
	return vm.Reload(ctx)
}

// setErrorLocked records a display error. Messages carrying the raw
// fetch-failure text are suppressed: the fallback store is already serving
// data, and an offline banner on every keystroke helps no one.
func (vm *ViewModel) setErrorLocked(msg string) {
	if strings.Contains(strings.ToLower(msg), "failed to fetch") {
		return
	}
	vm.errMsg = msg
}

func errText(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

func applyFilterPatch(c *domain.Criteria, p FilterPatch) {
	if p.Search.IsSpecified() {
		c.Search = valueOrZero(p.Search)
	}
	if p.MaritalStatus.IsSpecified() {
		c.MaritalStatus = valueOrZero(p.MaritalStatus)
	}
	if p.MinAge.IsSpecified() {
		c.MinAge = intPtr(p.MinAge)
	}
	if p.MaxAge.IsSpecified() {
		c.MaxAge = intPtr(p.MaxAge)
	}
	if p.Trash.IsSpecified() {
		c.Trash = valueOrZero(p.Trash)
	}
}

func valueOrZero[T any](f nullable.Nullable[T]) T {
	var zero T
	if f.IsNull() {
		return zero
	}
	return f.MustGet()
}

func intPtr(f nullable.Nullable[int]) *int {
	if f.IsNull() {
		return nil
	}
	v := f.MustGet()
	return &v
}
