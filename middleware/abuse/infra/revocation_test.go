package infra

import (
	"testing"
	"time"
)

func TestRevocation_BlacklistedTokenIsFound(t *testing.T) {
	r := NewRevocationRegistry()

	r.BlacklistToken("hash1", "u1", "logout", time.Now().Add(time.Hour))
	if !r.IsBlacklisted("hash1") {
		t.Fatalf("expected token to be blacklisted")
	}
	if r.IsBlacklisted("other") {
		t.Fatalf("expected unknown hash to be clean")
	}
}

func TestRevocation_NaturalExpiryClearsBlacklist(t *testing.T) {
	r := NewRevocationRegistry()

	r.BlacklistToken("hash1", "u1", "logout", time.Now().Add(2*time.Millisecond))
	time.Sleep(4 * time.Millisecond)

	if n := r.Sweep(); n != 1 {
		t.Fatalf("expected sweep to prune 1 entry, got %d", n)
	}
	if r.IsBlacklisted("hash1") {
		t.Fatalf("expected expired entry to be gone")
	}
}

func TestRevocation_LazyExpiryOnLookup(t *testing.T) {
	r := NewRevocationRegistry()

	r.BlacklistToken("hash1", "u1", "logout", time.Now().Add(2*time.Millisecond))
	time.Sleep(4 * time.Millisecond)

	// sem sweep: a própria consulta apaga e responde false
	if r.IsBlacklisted("hash1") {
		t.Fatalf("expected lookup past natural expiry to be false")
	}
	if got := len(r.Tokens()); got != 0 {
		t.Fatalf("expected entry to be removed on lookup, got %d", got)
	}
}

func TestRevocation_MarkerInvalidatesOlderCredentials(t *testing.T) {
	r := NewRevocationRegistry()

	issuedBefore := time.Now().Add(-time.Minute)
	if r.IsRevokedByMarker("u1", issuedBefore) {
		t.Fatalf("expected credential to be valid before revocation")
	}

	r.RevokeAllForUser("u1")

	if !r.IsRevokedByMarker("u1", issuedBefore) {
		t.Fatalf("expected pre-revocation credential to be invalid")
	}
	issuedAfter := time.Now().Add(time.Second)
	if r.IsRevokedByMarker("u1", issuedAfter) {
		t.Fatalf("expected post-revocation credential to stay valid")
	}
}

func TestRevocation_MarkerIsPerUser(t *testing.T) {
	r := NewRevocationRegistry()

	r.RevokeAllForUser("u1")
	if r.IsRevokedByMarker("u2", time.Now().Add(-time.Hour)) {
		t.Fatalf("expected other user's credentials to be unaffected")
	}
}

func TestRevocation_SessionLifecycle(t *testing.T) {
	r := NewRevocationRegistry()

	s1 := r.RegisterSession("u1", "android/1.0")
	s2 := r.RegisterSession("u1", "web/chrome")
	if s1.SessionID == s2.SessionID {
		t.Fatalf("expected unique session ids")
	}

	if got := len(r.ListSessions("u1")); got != 2 {
		t.Fatalf("expected 2 sessions, got %d", got)
	}

	if !r.RevokeSession(s1.SessionID) {
		t.Fatalf("expected revoke to change state")
	}
	if r.RevokeSession(s1.SessionID) {
		t.Fatalf("expected second revoke to be a no-op")
	}
	if got := len(r.ListSessions("u1")); got != 1 {
		t.Fatalf("expected 1 session left, got %d", got)
	}
}

func TestRevocation_RevokeAllDropsSessions(t *testing.T) {
	r := NewRevocationRegistry()

	r.RegisterSession("u1", "android/1.0")
	r.RegisterSession("u1", "web/chrome")
	r.RevokeAllForUser("u1")

	if got := len(r.ListSessions("u1")); got != 0 {
		t.Fatalf("expected all sessions dropped, got %d", got)
	}
}

func TestRevocation_TouchSessionBumpsLastUsed(t *testing.T) {
	r := NewRevocationRegistry()

	s := r.RegisterSession("u1", "cli")
	time.Sleep(2 * time.Millisecond)
	if !r.TouchSession(s.SessionID) {
		t.Fatalf("expected touch of live session to succeed")
	}

	sessions := r.ListSessions("u1")
	if len(sessions) != 1 || !sessions[0].LastUsedAt.After(s.LastUsedAt) {
		t.Fatalf("expected LastUsedAt to advance")
	}
	if r.TouchSession("missing") {
		t.Fatalf("expected touch of unknown session to fail")
	}
}
