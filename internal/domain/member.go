package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Marital status values as rendered to users. Upstream sources store them
// case-insensitively; Normalize canonicalizes to these.
const (
	StatusSingle   = "Single"
	StatusMarried  = "Married"
	StatusDivorced = "Divorced"
	StatusWidowed  = "Widowed"
)

// MaritalStatuses lists the accepted values in display order.
var MaritalStatuses = []string{StatusSingle, StatusMarried, StatusDivorced, StatusWidowed}

// FlexString is a string that tolerates JSON numbers on decode. Upstream
// sources disagree about whether ids and ages are strings or numbers, so the
// canonical shape keeps the string form and converts on demand.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Int returns the numeric value when the string parses as a base-10 integer.
func (f FlexString) Int() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(f)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Member is the canonical member record. The same shape is used on the wire
// and in the local fallback store; Normalize maps any raw upstream row into
// it.
type Member struct {
	ID             FlexString `json:"id"`
	FullName       string     `json:"fullName"`
	Age            FlexString `json:"age"`
	DOB            string     `json:"dob"`
	Residence      string     `json:"residence"`
	GPSAddress     string     `json:"gpsAddress"`
	PhoneNumber    string     `json:"phoneNumber"`
	AltPhoneNumber string     `json:"altPhoneNumber"`
	Nationality    string     `json:"nationality"`
	MaritalStatus  string     `json:"maritalStatus"`
	JoiningDate    string     `json:"joiningDate"`
	Avatar         string     `json:"avatar"`
	CreatedAt      string     `json:"createdAt,omitempty"`
	UpdatedAt      string     `json:"updatedAt,omitempty"`
	DeletedAt      *string    `json:"deletedAt"`
}

// InTrash reports whether the record has been soft-deleted.
func (m Member) InTrash() bool { return m.DeletedAt != nil }

// SameID matches an id loosely: server-assigned ids may round-trip as
// numbers, locally assigned ones are always strings.
func (m Member) SameID(id string) bool { return string(m.ID) == id }

// NewLocalID synthesizes an id for records created while the API is
// unreachable. Millisecond timestamps match the upstream convention for
// locally assigned ids.
func NewLocalID(now time.Time) FlexString {
	return FlexString(strconv.FormatInt(now.UnixMilli(), 10))
}
