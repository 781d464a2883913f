package groundbase

import "testing"

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()

	if a == b {
		t.Error("consecutive IDs collided")
	}
	if !IsValidID(a) {
		t.Errorf("NewID produced an invalid UUID: %q", a)
	}
	if _, err := ParseID(a); err != nil {
		t.Errorf("ParseID failed on own output: %v", err)
	}
}

func TestIsValidID(t *testing.T) {
	if IsValidID("not-a-uuid") {
		t.Error("garbage accepted as UUID")
	}
	if !IsValidID("018f3b1e-7c1d-7000-8000-000000000000") {
		t.Error("well-formed UUID rejected")
	}
}
