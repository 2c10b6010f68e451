package infra

import "testing"

func TestBlockRegistry_BlockIsIdempotent(t *testing.T) {
	r := NewBlockRegistry()

	if !r.Block("a", "manual") {
		t.Fatalf("expected first block to change state")
	}
	if r.Block("a", "manual again") {
		t.Fatalf("expected second block to be a no-op")
	}
	if !r.IsBlocked("a") {
		t.Fatalf("expected actor to be blocked")
	}
}

func TestBlockRegistry_UnblockReportsNoOp(t *testing.T) {
	r := NewBlockRegistry()

	if r.Unblock("a") {
		t.Fatalf("expected unblock of unknown actor to be a no-op")
	}
	r.Block("a", "manual")
	if !r.Unblock("a") {
		t.Fatalf("expected unblock to change state")
	}
	if r.IsBlocked("a") {
		t.Fatalf("expected actor to be unblocked")
	}
}

func TestBlockRegistry_AllowlistTakesPrecedence(t *testing.T) {
	r := NewBlockRegistry()

	r.Block("a", "before allowlist")
	r.AllowlistAdd("a")

	if r.IsBlocked("a") {
		t.Fatalf("expected allowlisted actor to never be blocked")
	}
	if r.Block("a", "try again") {
		t.Fatalf("expected block of allowlisted actor to be a no-op")
	}
}

func TestBlockRegistry_AllowlistAddRemove(t *testing.T) {
	r := NewBlockRegistry()

	if !r.AllowlistAdd("a") {
		t.Fatalf("expected add to change state")
	}
	if r.AllowlistAdd("a") {
		t.Fatalf("expected duplicate add to be a no-op")
	}
	if !r.IsAllowlisted("a") {
		t.Fatalf("expected actor to be allowlisted")
	}
	if !r.AllowlistRemove("a") {
		t.Fatalf("expected remove to change state")
	}
	if r.AllowlistRemove("a") {
		t.Fatalf("expected second remove to be a no-op")
	}
}

func TestBlockRegistry_ReadProjections(t *testing.T) {
	r := NewBlockRegistry()

	r.Block("x", "reason-x")
	r.AllowlistAdd("y")

	blocked := r.Blocked()
	if len(blocked) != 1 || blocked[0].Actor != "x" || blocked[0].Reason != "reason-x" {
		t.Fatalf("unexpected blocked projection: %+v", blocked)
	}
	allowed := r.Allowlisted()
	if len(allowed) != 1 || allowed[0] != "y" {
		t.Fatalf("unexpected allowlist projection: %+v", allowed)
	}
}
