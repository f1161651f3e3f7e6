package domain

import "strings"

// Normalize maps a member record from any source (remote API or the local
// fallback store) into the canonical shape. It is idempotent: normalizing an
// already-normalized record is a no-op.
func Normalize(m Member) Member {
	return Member{
		ID:             m.ID,
		FullName:       m.FullName,
		Age:            m.Age,
		DOB:            TruncateDate(m.DOB),
		Residence:      m.Residence,
		GPSAddress:     m.GPSAddress,
		PhoneNumber:    m.PhoneNumber,
		AltPhoneNumber: m.AltPhoneNumber,
		Nationality:    m.Nationality,
		MaritalStatus:  CanonicalMaritalStatus(m.MaritalStatus),
		JoiningDate:    TruncateDate(m.JoiningDate),
		Avatar:         m.Avatar,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		DeletedAt:      m.DeletedAt,
	}
}

// NormalizeAll normalizes a slice in place order.
func NormalizeAll(ms []Member) []Member {
	out := make([]Member, 0, len(ms))
	for _, m := range ms {
		out = append(out, Normalize(m))
	}
	return out
}

// TruncateDate keeps only the date portion of an ISO datetime: everything
// before the first 'T'. Date-only strings pass through unchanged.
func TruncateDate(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

// CanonicalMaritalStatus renders a status in title case: first letter upper,
// rest lower. Empty stays empty.
func CanonicalMaritalStatus(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// ValidMaritalStatus reports whether s names one of the accepted statuses,
// ignoring case. The empty string is allowed (status not provided).
func ValidMaritalStatus(s string) bool {
	if s == "" {
		return true
	}
	c := CanonicalMaritalStatus(s)
	for _, v := range MaritalStatuses {
		if c == v {
			return true
		}
	}
	return false
}
