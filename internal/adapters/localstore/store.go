package localstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oapi-codegen/nullable"
	"go.uber.org/zap"

	"github.com/porters-chapel/membership-console/internal/domain"
	clockport "github.com/porters-chapel/membership-console/internal/ports/out/clock"
	kvport "github.com/porters-chapel/membership-console/internal/ports/out/kv"
	"github.com/porters-chapel/membership-console/internal/ports/out/memberstore"
)

// StorageKey is the fixed key the member array is persisted under. It keeps
// the name earlier browser-based clients used for their localStorage blob.
const StorageKey = "church_members"

// Store is the local fallback backend: one JSON array of member records
// under a single key. It serves reads, creates and updates while the API is
// unreachable, and mirrors successful remote writes so a later outage still
// shows recently synced data.
//
// Trash mutations and stats have no local implementation; they require
// server authority and return memberstore.ErrRequiresRemote.
type Store struct {
	kv  kvport.Store
	clk clockport.Clock
	log *zap.Logger

	newID func(time.Time) domain.FlexString
}

func NewStore(kv kvport.Store, clk clockport.Clock, log *zap.Logger) *Store {
	return &Store{
		kv:    kv,
		clk:   clk,
		log:   log,
		newID: domain.NewLocalID,
	}
}

// Read returns the persisted records. Missing or corrupt data yields an
// empty slice; Read never fails.
func (s *Store) Read(ctx context.Context) []domain.Member {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.log.Warn("fallback store read failed", zap.Error(err))
		return []domain.Member{}
	}
	if !ok {
		return []domain.Member{}
	}
	var ms []domain.Member
	if err := json.Unmarshal(raw, &ms); err != nil {
		s.log.Warn("fallback store corrupt, treating as empty", zap.Error(err))
		return []domain.Member{}
	}
	return ms
}

// Write persists the full array. Persistence failures are logged, not
// returned: losing the mirror must never fail the operation that produced it.
func (s *Store) Write(ctx context.Context, ms []domain.Member) {
	raw, err := json.Marshal(ms)
	if err != nil {
		s.log.Error("fallback store encode failed", zap.Error(err))
		return
	}
	if err := s.kv.Put(ctx, StorageKey, raw); err != nil {
		s.log.Error("fallback store write failed", zap.Error(err))
	}
}

func (s *Store) List(ctx context.Context, c domain.Criteria) ([]domain.Member, error) {
	records := domain.NormalizeAll(s.Read(ctx))
	return domain.Filter(records, c), nil
}

func (s *Store) Get(ctx context.Context, id string) (domain.Member, error) {
	for _, m := range s.Read(ctx) {
		if m.SameID(id) {
			return domain.Normalize(m), nil
		}
	}
	return domain.Member{}, memberstore.ErrNotFound
}

// Create assigns a timestamp-derived id, stamps createdAt/updatedAt and
// appends the record. It never fails: local persistence is the last line of
// degradation.
func (s *Store) Create(ctx context.Context, p memberstore.CreatePayload) (domain.Member, error) {
	now := s.clk.Now().UTC().Format(time.RFC3339)
	m := domain.Member{
		ID:             s.newID(s.clk.Now()),
		FullName:       p.FullName,
		Age:            p.Age,
		DOB:            p.DOB,
		Residence:      p.Residence,
		GPSAddress:     p.GPSAddress,
		PhoneNumber:    p.PhoneNumber,
		AltPhoneNumber: p.AltPhoneNumber,
		Nationality:    p.Nationality,
		MaritalStatus:  p.MaritalStatus,
		JoiningDate:    p.JoiningDate,
		Avatar:         p.Avatar,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.Write(ctx, append(s.Read(ctx), m))
	return domain.Normalize(m), nil
}

// Update merges the patch into the stored record and refreshes updatedAt.
func (s *Store) Update(ctx context.Context, id string, p memberstore.UpdatePatch) (domain.Member, error) {
	ms := s.Read(ctx)
	for i, m := range ms {
		if !m.SameID(id) {
			continue
		}
		applyPatch(&m, p)
		m.UpdatedAt = s.clk.Now().UTC().Format(time.RFC3339)
		ms[i] = m
		s.Write(ctx, ms)
		return domain.Normalize(m), nil
	}
	return domain.Member{}, memberstore.ErrNotFound
}

func (s *Store) SoftDelete(ctx context.Context, id string) error {
	_, _ = ctx, id
	return memberstore.ErrRequiresRemote
}

func (s *Store) Restore(ctx context.Context, id string) (domain.Member, error) {
	_, _ = ctx, id
	return domain.Member{}, memberstore.ErrRequiresRemote
}

func (s *Store) PermanentDelete(ctx context.Context, id string) error {
	_, _ = ctx, id
	return memberstore.ErrRequiresRemote
}

func (s *Store) Stats(ctx context.Context) (memberstore.Stats, error) {
	_ = ctx
	return memberstore.Stats{}, memberstore.ErrRequiresRemote
}

// MirrorUpsert inserts or replaces a record that a reachable server just
// confirmed, keyed by id.
func (s *Store) MirrorUpsert(ctx context.Context, m domain.Member) {
	ms := s.Read(ctx)
	for i, existing := range ms {
		if existing.SameID(string(m.ID)) {
			ms[i] = m
			s.Write(ctx, ms)
			return
		}
	}
	s.Write(ctx, append(ms, m))
}

// MirrorDeletedAt sets or clears the stored record's deletedAt after a
// successful remote soft delete or restore. Absent records are left alone.
func (s *Store) MirrorDeletedAt(ctx context.Context, id string, deletedAt *string) {
	ms := s.Read(ctx)
	for i, m := range ms {
		if m.SameID(id) {
			m.DeletedAt = deletedAt
			ms[i] = m
			s.Write(ctx, ms)
			return
		}
	}
}

// MirrorRemove drops the stored record after a successful remote permanent
// delete.
func (s *Store) MirrorRemove(ctx context.Context, id string) {
	ms := s.Read(ctx)
	for i, m := range ms {
		if m.SameID(id) {
			s.Write(ctx, append(ms[:i], ms[i+1:]...))
			return
		}
	}
}

func applyPatch(m *domain.Member, p memberstore.UpdatePatch) {
	set := func(dst *string, f nullable.Nullable[string]) {
		if !f.IsSpecified() {
			return
		}
		if f.IsNull() {
			*dst = ""
			return
		}
		*dst = f.MustGet()
	}
	set(&m.FullName, p.FullName)
	if p.Age.IsSpecified() {
		if p.Age.IsNull() {
			m.Age = ""
		} else {
			m.Age = domain.FlexString(p.Age.MustGet())
		}
	}
	set(&m.DOB, p.DOB)
	set(&m.Residence, p.Residence)
	set(&m.GPSAddress, p.GPSAddress)
	set(&m.PhoneNumber, p.PhoneNumber)
	set(&m.AltPhoneNumber, p.AltPhoneNumber)
	set(&m.Nationality, p.Nationality)
	set(&m.MaritalStatus, p.MaritalStatus)
	set(&m.JoiningDate, p.JoiningDate)
	set(&m.Avatar, p.Avatar)
}
