package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeVerifier struct {
	ok  bool
	err error
}

func (f fakeVerifier) Verify(context.Context, string) (bool, error) { return f.ok, f.err }

type ctxCapturingVerifier struct {
	deadline bool
}

func (v *ctxCapturingVerifier) Verify(ctx context.Context, _ string) (bool, error) {
	_, v.deadline = ctx.Deadline()
	return true, nil
}

func TestChallenge_UnconfiguredDefaultsToAllow(t *testing.T) {
	s := ChallengeService{}
	if !s.Verify(context.Background(), "tok") {
		t.Fatalf("expected unconfigured verifier to pass by default")
	}
}

func TestChallenge_UnconfiguredDenyPolicy(t *testing.T) {
	s := ChallengeService{Unconfigured: UnconfiguredDeny}
	if s.Verify(context.Background(), "tok") {
		t.Fatalf("expected deny policy to fail without verifier")
	}
}

func TestChallenge_VerifierResultIsHonored(t *testing.T) {
	if !(ChallengeService{Verifier: fakeVerifier{ok: true}}).Verify(context.Background(), "tok") {
		t.Fatalf("expected pass")
	}
	if (ChallengeService{Verifier: fakeVerifier{ok: false}}).Verify(context.Background(), "tok") {
		t.Fatalf("expected fail")
	}
}

func TestChallenge_ErrorFailsClosed(t *testing.T) {
	s := ChallengeService{Verifier: fakeVerifier{ok: true, err: errors.New("boom")}}
	if s.Verify(context.Background(), "tok") {
		t.Fatalf("expected verifier error to fail closed")
	}
}

func TestChallenge_TimeoutIsApplied(t *testing.T) {
	v := &ctxCapturingVerifier{}
	s := ChallengeService{Verifier: v, Timeout: 50 * time.Millisecond}

	s.Verify(context.Background(), "tok")
	if !v.deadline {
		t.Fatalf("expected verify context to carry a deadline")
	}
}
