package memberstore

import (
	"context"

	"github.com/oapi-codegen/nullable"

	"github.com/porters-chapel/membership-console/internal/domain"
)

// Stats is the aggregate reported by GET /api/members/stats.
type Stats struct {
	Total   int `json:"total"`
	Kids    int `json:"kids"`
	Adults  int `json:"adults"`
	Singles int `json:"singles"`
	Married int `json:"married"`
	Widows  int `json:"widows"`
}

// CreatePayload carries the fields of a new member. The backend assigns the
// id and timestamps.
type CreatePayload struct {
	FullName       string            `json:"fullName"`
	Age            domain.FlexString `json:"age"`
	DOB            string            `json:"dob"`
	Residence      string            `json:"residence"`
	GPSAddress     string            `json:"gpsAddress"`
	PhoneNumber    string            `json:"phoneNumber"`
	AltPhoneNumber string            `json:"altPhoneNumber"`
	Nationality    string            `json:"nationality"`
	MaritalStatus  string            `json:"maritalStatus"`
	JoiningDate    string            `json:"joiningDate"`
	Avatar         string            `json:"avatar"`
}

// UpdatePatch is a partial member update. Unspecified fields are omitted from
// the PUT body and left untouched on local merge; explicit nulls clear the
// field.
type UpdatePatch struct {
	FullName       nullable.Nullable[string] `json:"fullName,omitempty"`
	Age            nullable.Nullable[string] `json:"age,omitempty"`
	DOB            nullable.Nullable[string] `json:"dob,omitempty"`
	Residence      nullable.Nullable[string] `json:"residence,omitempty"`
	GPSAddress     nullable.Nullable[string] `json:"gpsAddress,omitempty"`
	PhoneNumber    nullable.Nullable[string] `json:"phoneNumber,omitempty"`
	AltPhoneNumber nullable.Nullable[string] `json:"altPhoneNumber,omitempty"`
	Nationality    nullable.Nullable[string] `json:"nationality,omitempty"`
	MaritalStatus  nullable.Nullable[string] `json:"maritalStatus,omitempty"`
	JoiningDate    nullable.Nullable[string] `json:"joiningDate,omitempty"`
	Avatar         nullable.Nullable[string] `json:"avatar,omitempty"`
}

// Backend provides access to one source of member records. Two
// implementations exist: the remote REST API and the local fallback store.
// The app layer composes them remote-first.
//
// Backends return normalized records (domain.Normalize applied).
type Backend interface {
	List(ctx context.Context, c domain.Criteria) ([]domain.Member, error)
	Get(ctx context.Context, id string) (domain.Member, error)
	Create(ctx context.Context, p CreatePayload) (domain.Member, error)
	Update(ctx context.Context, id string, p UpdatePatch) (domain.Member, error)

	// SoftDelete moves the record to trash (sets deletedAt).
	SoftDelete(ctx context.Context, id string) error
	// Restore clears deletedAt and returns the restored record.
	Restore(ctx context.Context, id string) (domain.Member, error)
	// PermanentDelete removes the record for good.
	PermanentDelete(ctx context.Context, id string) error

	Stats(ctx context.Context) (Stats, error)
}
