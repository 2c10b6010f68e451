package infra

import (
	"testing"
	"time"

	"sentinela-gateway/middleware/abuse/domain"
)

func TestViolationTracker_CountIncrementsByOne(t *testing.T) {
	tr := NewViolationTracker()

	for i := 1; i <= 5; i++ {
		tr.Record("a", domain.ActionLogin)
		if got := tr.Count("a", domain.ActionLogin); got != i {
			t.Fatalf("expected count %d after %d records, got %d", i, i, got)
		}
	}
}

func TestViolationTracker_CountIsZeroForUnknownPair(t *testing.T) {
	tr := NewViolationTracker()

	if got := tr.Count("a", "search"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestViolationTracker_AllReturnsEveryRecord(t *testing.T) {
	tr := NewViolationTracker()

	tr.Record("a", domain.ActionLogin)
	tr.Record("a", domain.ActionSignup)
	tr.Record("b", domain.ActionLogin)

	if got := len(tr.All()); got != 3 {
		t.Fatalf("expected 3 records, got %d", got)
	}
}

func TestViolationTracker_ByActorFiltersOthers(t *testing.T) {
	tr := NewViolationTracker()

	tr.Record("a", domain.ActionLogin)
	tr.Record("b", domain.ActionLogin)

	recs := tr.ByActor("a")
	if len(recs) != 1 || recs[0].Actor != "a" {
		t.Fatalf("expected only actor a's records, got %+v", recs)
	}
}

func TestViolationTracker_PruneRemovesStaleRecords(t *testing.T) {
	tr := NewViolationTracker()

	tr.Record("a", domain.ActionLogin)
	time.Sleep(4 * time.Millisecond)
	tr.Record("b", domain.ActionLogin)

	if n := tr.Prune(2 * time.Millisecond); n != 1 {
		t.Fatalf("expected 1 pruned record, got %d", n)
	}
	if got := tr.Count("b", domain.ActionLogin); got != 1 {
		t.Fatalf("expected recent record to survive, got %d", got)
	}
}

func TestViolationTracker_FirstAndLastSeenAdvance(t *testing.T) {
	tr := NewViolationTracker()

	tr.Record("a", domain.ActionLogin)
	time.Sleep(2 * time.Millisecond)
	tr.Record("a", domain.ActionLogin)

	recs := tr.ByActor("a")
	if len(recs) != 1 {
		t.Fatalf("expected a single cumulative record, got %d", len(recs))
	}
	if !recs[0].LastSeen.After(recs[0].FirstSeen) {
		t.Fatalf("expected LastSeen to advance past FirstSeen")
	}
}
