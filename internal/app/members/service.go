package members

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/porters-chapel/membership-console/internal/adapters/localstore"
	"github.com/porters-chapel/membership-console/internal/domain"
	clockport "github.com/porters-chapel/membership-console/internal/ports/out/clock"
	"github.com/porters-chapel/membership-console/internal/ports/out/memberstore"
)

// MaxAvatarBytes bounds the encoded avatar data URI.
const MaxAvatarBytes = 5 << 20

const statsCacheKey = "members-stats"

// Service is the member repository: it composes the remote backend with the
// local fallback store, remote-first.
//
// Fallback policy:
//   - reads, creates and updates degrade to the local store when the API is
//     unreachable (memberstore.ErrUnreachable); business errors from a
//     reachable server surface directly, and an empty remote list is trusted
//     as "no members";
//   - trash mutations and stats require a reachable server and fail loudly
//     offline;
//   - every mutation a reachable server confirms is mirrored into the local
//     store, so a later outage still serves recently synced data.
type Service struct {
	remote   memberstore.Backend
	fallback *localstore.Store
	clk      clockport.Clock
	log      *zap.Logger

	statsCache *cache.Cache

	// StatsTTL bounds how long an aggregate snapshot is reused before the
	// server is asked again.
	StatsTTL time.Duration
}

func NewService(remote memberstore.Backend, fallback *localstore.Store, clk clockport.Clock, log *zap.Logger) *Service {
	return &Service{
		remote:     remote,
		fallback:   fallback,
		clk:        clk,
		log:        log,
		statsCache: cache.New(time.Minute, 5*time.Minute),
		StatsTTL:   30 * time.Second,
	}
}

func (s *Service) FetchMembers(ctx context.Context, c domain.Criteria) ([]domain.Member, error) {
	ms, err := s.remote.List(ctx, c)
	if err == nil {
		return ms, nil
	}
	if !errors.Is(err, memberstore.ErrUnreachable) {
		return nil, err
	}
	s.log.Warn("api unreachable, listing from fallback store", zap.Error(err))
	return s.fallback.List(ctx, c)
}

func (s *Service) FetchMember(ctx context.Context, id string) (domain.Member, error) {
	m, err := s.remote.Get(ctx, id)
	if err == nil {
		return m, nil
	}
	if errors.Is(err, memberstore.ErrUnreachable) {
		s.log.Warn("api unreachable, reading fallback store", zap.Error(err), zap.String("id", id))
		m, err = s.fallback.Get(ctx, id)
	}
	if errors.Is(err, memberstore.ErrNotFound) {
		return domain.Member{}, notFound(id)
	}
	return m, err
}

// CreateMember never fails on an unreachable API: it degrades to local
// persistence with a synthesized id.
func (s *Service) CreateMember(ctx context.Context, p memberstore.CreatePayload) (domain.Member, error) {
	if err := s.validateCreate(p); err != nil {
		return domain.Member{}, err
	}
	m, err := s.remote.Create(ctx, p)
	if err == nil {
		s.fallback.MirrorUpsert(ctx, m)
		return m, nil
	}
	if !errors.Is(err, memberstore.ErrUnreachable) {
		return domain.Member{}, err
	}
	s.log.Warn("api unreachable, creating member locally", zap.Error(err))
	return s.fallback.Create(ctx, p)
}

func (s *Service) UpdateMember(ctx context.Context, id string, p memberstore.UpdatePatch) (domain.Member, error) {
	if err := s.validatePatch(p); err != nil {
		return domain.Member{}, err
	}
	m, err := s.remote.Update(ctx, id, p)
	if err == nil {
		s.fallback.MirrorUpsert(ctx, m)
		return m, nil
	}
	if errors.Is(err, memberstore.ErrUnreachable) {
		s.log.Warn("api unreachable, updating member locally", zap.Error(err), zap.String("id", id))
		m, err = s.fallback.Update(ctx, id, p)
	}
	if errors.Is(err, memberstore.ErrNotFound) {
		return domain.Member{}, notFound(id)
	}
	return m, err
}

// DeleteMember soft-deletes on the server. Trash semantics live there; an
// unreachable API is a hard, user-visible failure.
func (s *Service) DeleteMember(ctx context.Context, id string) error {
	if err := s.remote.SoftDelete(ctx, id); err != nil {
		return s.trashErr("delete", id, err)
	}
	deleted := s.clk.Now().UTC().Format(time.RFC3339)
	s.fallback.MirrorDeletedAt(ctx, id, &deleted)
	return nil
}

func (s *Service) RestoreMember(ctx context.Context, id string) (domain.Member, error) {
	m, err := s.remote.Restore(ctx, id)
	if err != nil {
		return domain.Member{}, s.trashErr("restore", id, err)
	}
	s.fallback.MirrorUpsert(ctx, m)
	return m, nil
}

func (s *Service) PermanentlyDeleteMember(ctx context.Context, id string) error {
	if err := s.remote.PermanentDelete(ctx, id); err != nil {
		return s.trashErr("permanently delete", id, err)
	}
	s.fallback.MirrorRemove(ctx, id)
	return nil
}

// FetchStats returns the server aggregate, briefly cached. There is no local
// computation fallback: the aggregate is only authoritative on the server.
func (s *Service) FetchStats(ctx context.Context) (memberstore.Stats, error) {
	if v, ok := s.statsCache.Get(statsCacheKey); ok {
		return v.(memberstore.Stats), nil
	}
	st, err := s.remote.Stats(ctx)
	if err != nil {
		if errors.Is(err, memberstore.ErrUnreachable) {
			return memberstore.Stats{}, &Error{
				Status:  503,
				Code:    "API_UNREACHABLE",
				Message: "member statistics require a reachable API",
			}
		}
		return memberstore.Stats{}, err
	}
	s.statsCache.Set(statsCacheKey, st, s.StatsTTL)
	return st, nil
}

// trashErr translates failures of server-only operations. The unreachable
// case deliberately does NOT carry the raw fetch-failure text: trash
// mutations must be visible failures offline, not silently suppressed ones.
func (s *Service) trashErr(op, id string, err error) error {
	if errors.Is(err, memberstore.ErrUnreachable) || errors.Is(err, memberstore.ErrRequiresRemote) {
		s.log.Warn("trash operation refused offline", zap.String("op", op), zap.String("id", id), zap.Error(err))
		return &Error{
			Status:  503,
			Code:    "API_UNREACHABLE",
			Message: fmt.Sprintf("cannot %s member while the API is unreachable", op),
		}
	}
	if errors.Is(err, memberstore.ErrNotFound) {
		return notFound(id)
	}
	return err
}

func notFound(id string) error {
	return &Error{
		Status:  404,
		Code:    "MEMBER_NOT_FOUND",
		Message: "member not found",
		Details: map[string]any{"id": id},
	}
}

func (s *Service) validateCreate(p memberstore.CreatePayload) error {
	if !domain.ValidMaritalStatus(p.MaritalStatus) {
		return validation("maritalStatus", "must be one of Single, Married, Divorced, Widowed")
	}
	if len(p.Avatar) > MaxAvatarBytes {
		return validation("avatar", "image exceeds the 5 MB limit")
	}
	if age, ok := p.Age.Int(); ok && p.DOB != "" {
		if !s.ageMatchesDOB(age, p.DOB) {
			return validation("age", "does not match the date of birth")
		}
	}
	return nil
}

func (s *Service) validatePatch(p memberstore.UpdatePatch) error {
	if p.MaritalStatus.IsSpecified() && !p.MaritalStatus.IsNull() {
		if !domain.ValidMaritalStatus(p.MaritalStatus.MustGet()) {
			return validation("maritalStatus", "must be one of Single, Married, Divorced, Widowed")
		}
	}
	if p.Avatar.IsSpecified() && !p.Avatar.IsNull() && len(p.Avatar.MustGet()) > MaxAvatarBytes {
		return validation("avatar", "image exceeds the 5 MB limit")
	}
	// Age/dob consistency is only checkable when the patch carries both.
	if p.Age.IsSpecified() && !p.Age.IsNull() && p.DOB.IsSpecified() && !p.DOB.IsNull() {
		if age, ok := domain.FlexString(p.Age.MustGet()).Int(); ok {
			if !s.ageMatchesDOB(age, p.DOB.MustGet()) {
				return validation("age", "does not match the date of birth")
			}
		}
	}
	return nil
}

// ageMatchesDOB checks that the claimed age equals the full years elapsed
// since dob at the current date. Unparseable dates are left to the server.
func (s *Service) ageMatchesDOB(age int, dob string) bool {
	d, err := time.Parse("2006-01-02", domain.TruncateDate(dob))
	if err != nil {
		return true
	}
	now := s.clk.Now().UTC()
	years := now.Year() - d.Year()
	if now.Before(d.AddDate(years, 0, 0)) {
		years--
	}
	return age == years
}

func validation(field, msg string) error {
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid " + field,
		Details: map[string]any{field: msg},
	}
}
