package token

import (
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	s := NewStore(15*time.Minute, false)

	value := s.Issue()
	if value == "" {
		t.Fatal("Issue returned empty token")
	}

	if !s.Validate(value) {
		t.Error("freshly issued token failed validation")
	}

	// Expiry-only semantics: repeated use stays valid
	if !s.Validate(value) {
		t.Error("second validation failed; store is not single-use by default")
	}

	if s.Validate("not-a-token") {
		t.Error("unknown token validated")
	}
}

func TestValidateExpired(t *testing.T) {
	s := NewStore(15*time.Minute, false)

	base := time.Date(2025, 8, 9, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	value := s.Issue()

	s.now = func() time.Time { return base.Add(14 * time.Minute) }
	if !s.Validate(value) {
		t.Error("token expired before its TTL")
	}

	s.now = func() time.Time { return base.Add(15 * time.Minute) }
	if s.Validate(value) {
		t.Error("token still valid at exactly its expiry instant")
	}
}

func TestSweep(t *testing.T) {
	s := NewStore(15*time.Minute, false)

	base := time.Date(2025, 8, 9, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	expired := s.Issue()

	s.now = func() time.Time { return base.Add(10 * time.Minute) }
	fresh := s.Issue()

	s.now = func() time.Time { return base.Add(20 * time.Minute) }
	if removed := s.Sweep(); removed != 1 {
		t.Errorf("Sweep removed %d tokens, expected 1", removed)
	}

	if s.Validate(expired) {
		t.Error("swept token validated")
	}
	if !s.Validate(fresh) {
		t.Error("unexpired token was swept")
	}
}

func TestSingleUse(t *testing.T) {
	s := NewStore(15*time.Minute, true)

	value := s.Issue()
	if !s.Validate(value) {
		t.Fatal("first validation failed")
	}
	if s.Validate(value) {
		t.Error("single-use token validated twice")
	}
}
