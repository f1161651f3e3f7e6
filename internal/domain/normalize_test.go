package domain

import (
	"encoding/json"
	"testing"
)

func unmarshalMember(s string, m *Member) error {
	return json.Unmarshal([]byte(s), m)
}

func TestNormalize_TruncatesDates(t *testing.T) {
	t.Parallel()

	m := Normalize(Member{
		DOB:         "1999-04-02T00:00:00Z",
		JoiningDate: "2022-01-10T15:04:05.000Z",
	})
	if m.DOB != "1999-04-02" {
		t.Fatalf("dob=%q", m.DOB)
	}
	if m.JoiningDate != "2022-01-10" {
		t.Fatalf("joiningDate=%q", m.JoiningDate)
	}
}

func TestNormalize_CanonicalizesMaritalStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"single":   "Single",
		"SINGLE":   "Single",
		"sInGlE":   "Single",
		"married":  "Married",
		"MARRIED":  "Married",
		"divorced": "Divorced",
		"DIVORCED": "Divorced",
		"widowed":  "Widowed",
		"Widowed":  "Widowed",
		"":         "",
	}
	for in, want := range cases {
		got := Normalize(Member{MaritalStatus: in}).MaritalStatus
		if got != want {
			t.Errorf("maritalStatus %q -> %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	deleted := "2024-03-01T10:00:00Z"
	raws := []Member{
		{},
		{ID: "42", FullName: "Ama Boateng", Age: "25", DOB: "1999-04-02T00:00:00Z", MaritalStatus: "SINGLE"},
		{MaritalStatus: "widowed", JoiningDate: "2022-01-10", DeletedAt: &deleted},
	}
	for _, raw := range raws {
		once := Normalize(raw)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("normalize not idempotent: %+v vs %+v", once, twice)
		}
	}
}

func TestNormalize_PassesDeletedAtThrough(t *testing.T) {
	t.Parallel()

	if got := Normalize(Member{}).DeletedAt; got != nil {
		t.Fatalf("deletedAt=%v, want nil", got)
	}
	deleted := "2024-03-01T10:00:00Z"
	if got := Normalize(Member{DeletedAt: &deleted}).DeletedAt; got == nil || *got != deleted {
		t.Fatalf("deletedAt=%v, want %q", got, deleted)
	}
}

func TestFlexString_DecodesStringsAndNumbers(t *testing.T) {
	t.Parallel()

	var m Member
	if err := unmarshalMember(`{"id": 42, "age": "25"}`, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.ID != "42" || m.Age != "25" {
		t.Fatalf("id=%q age=%q", m.ID, m.Age)
	}

	if err := unmarshalMember(`{"id": "abc", "age": 7}`, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.ID != "abc" || m.Age != "7" {
		t.Fatalf("id=%q age=%q", m.ID, m.Age)
	}

	if n, ok := m.Age.Int(); !ok || n != 7 {
		t.Fatalf("age.Int()=%d,%v", n, ok)
	}
	if _, ok := FlexString("not a number").Int(); ok {
		t.Fatalf("expected non-numeric age to fail coercion")
	}
}

func TestValidMaritalStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "single", "MARRIED", "Divorced", "wIdOwEd"} {
		if !ValidMaritalStatus(s) {
			t.Errorf("expected %q valid", s)
		}
	}
	for _, s := range []string{"engaged", "separated", "x"} {
		if ValidMaritalStatus(s) {
			t.Errorf("expected %q invalid", s)
		}
	}
}
