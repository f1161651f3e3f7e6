package domain

import "strings"

// Criteria are the composable listing filters. The zero value lists active
// members with no further filtering.
type Criteria struct {
	// Search matches case-insensitively against fullName, phoneNumber and
	// residence as a substring. Empty matches everything.
	Search string
	// MaritalStatus matches the record's status exactly, ignoring case.
	// Empty matches everything.
	MaritalStatus string
	// MinAge/MaxAge bound the record's numeric age inclusively; nil means
	// unbounded on that side.
	MinAge *int
	MaxAge *int
	// Trash selects the soft-deleted partition. False (the default view)
	// selects active records only.
	Trash bool
}

// Filter applies criteria to records with logical AND, preserving input
// order. It is pure: the input slice is never mutated.
func Filter(records []Member, c Criteria) []Member {
	out := make([]Member, 0, len(records))
	for _, m := range records {
		if Matches(m, c) {
			out = append(out, m)
		}
	}
	return out
}

// Matches reports whether a single record passes every supplied criterion.
func Matches(m Member, c Criteria) bool {
	if m.InTrash() != c.Trash {
		return false
	}
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(m.FullName), q) &&
			!strings.Contains(strings.ToLower(m.PhoneNumber), q) &&
			!strings.Contains(strings.ToLower(m.Residence), q) {
			return false
		}
	}
	if c.MaritalStatus != "" && !strings.EqualFold(m.MaritalStatus, c.MaritalStatus) {
		return false
	}
	if c.MinAge != nil || c.MaxAge != nil {
		age, ok := m.Age.Int()
		if !ok {
			// A record without a numeric age cannot satisfy an age bound.
			return false
		}
		if c.MinAge != nil && age < *c.MinAge {
			return false
		}
		if c.MaxAge != nil && age > *c.MaxAge {
			return false
		}
	}
	return true
}
