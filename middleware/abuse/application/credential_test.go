package application

import (
	"testing"
	"time"
)

type fakeChecker struct {
	blacklisted map[string]bool
	marker      map[string]time.Time
}

func (f fakeChecker) IsBlacklisted(hash string) bool { return f.blacklisted[hash] }

func (f fakeChecker) IsRevokedByMarker(userID string, issuedAt time.Time) bool {
	m, ok := f.marker[userID]
	return ok && issuedAt.Before(m)
}

func TestCredential_ValidWhenNoRegistry(t *testing.T) {
	s := CredentialService{}
	if !s.IsCredentialValid("h", "u1", time.Now()) {
		t.Fatalf("expected valid without registry wired")
	}
}

func TestCredential_BlacklistedHashIsInvalid(t *testing.T) {
	s := CredentialService{Registry: fakeChecker{blacklisted: map[string]bool{"bad": true}}}

	if s.IsCredentialValid("bad", "u1", time.Now()) {
		t.Fatalf("expected blacklisted hash to be invalid")
	}
	if !s.IsCredentialValid("good", "u1", time.Now()) {
		t.Fatalf("expected clean hash to be valid")
	}
}

func TestCredential_MarkerInvalidatesOldIssuedAt(t *testing.T) {
	now := time.Now()
	s := CredentialService{Registry: fakeChecker{
		blacklisted: map[string]bool{},
		marker:      map[string]time.Time{"u1": now},
	}}

	if s.IsCredentialValid("h", "u1", now.Add(-time.Minute)) {
		t.Fatalf("expected credential issued before marker to be invalid")
	}
	if !s.IsCredentialValid("h", "u1", now.Add(time.Minute)) {
		t.Fatalf("expected credential issued after marker to be valid")
	}
}
