package infra

import (
	"sync"
	"testing"
	"time"

	"sentinela-gateway/middleware/abuse/domain"
)

func newTestLimiter() (*WindowLimiter, *ViolationTracker) {
	tracker := NewViolationTracker()
	return NewWindowLimiter(NewCounterCache(), tracker), tracker
}

func TestWindowLimiter_DeniesAfterLimit(t *testing.T) {
	lim, _ := newTestLimiter()
	cfg := domain.TierConfig{Window: time.Minute, Limit: 5}

	for i := 0; i < 5; i++ {
		if res := lim.Check("a", domain.ActionLogin, cfg); !res.Allowed {
			t.Fatalf("expected request %d to be allowed", i+1)
		}
	}

	res := lim.Check("a", domain.ActionLogin, cfg)
	if res.Allowed {
		t.Fatalf("expected 6th request to be denied")
	}
	if res.RetryAfter <= 0 || res.RetryAfter > time.Minute {
		t.Fatalf("expected RetryAfter in (0, 1m], got %s", res.RetryAfter)
	}
}

func TestWindowLimiter_FirstRequestAlwaysAllowed(t *testing.T) {
	lim, _ := newTestLimiter()

	if res := lim.Check("novo", "search", domain.TierConfig{Window: time.Minute, Limit: 1}); !res.Allowed {
		t.Fatalf("expected first request of a fresh actor to be allowed")
	}
}

func TestWindowLimiter_WindowExpiryResets(t *testing.T) {
	lim, _ := newTestLimiter()
	cfg := domain.TierConfig{Window: 5 * time.Millisecond, Limit: 1}

	lim.Check("a", domain.ActionLogin, cfg)
	if res := lim.Check("a", domain.ActionLogin, cfg); res.Allowed {
		t.Fatalf("expected exhausted window to deny")
	}

	time.Sleep(8 * time.Millisecond)

	if res := lim.Check("a", domain.ActionLogin, cfg); !res.Allowed {
		t.Fatalf("expected fresh window after expiry to allow")
	}
}

func TestWindowLimiter_DenyNotifiesTracker(t *testing.T) {
	lim, tracker := newTestLimiter()
	cfg := domain.TierConfig{Window: time.Minute, Limit: 1}

	lim.Check("a", domain.ActionLogin, cfg)
	lim.Check("a", domain.ActionLogin, cfg)
	lim.Check("a", domain.ActionLogin, cfg)

	if got := tracker.Count("a", domain.ActionLogin); got != 2 {
		t.Fatalf("expected 2 recorded violations, got %d", got)
	}
}

func TestWindowLimiter_CountersAreIndependentPerActor(t *testing.T) {
	lim, _ := newTestLimiter()
	cfg := domain.TierConfig{Window: time.Minute, Limit: 1}

	lim.Check("a", domain.ActionLogin, cfg)
	if res := lim.Check("b", domain.ActionLogin, cfg); !res.Allowed {
		t.Fatalf("expected actor b to have its own counter")
	}
}

func TestWindowLimiter_ConcurrentChecksDoNotOvercount(t *testing.T) {
	lim, _ := newTestLimiter()
	cfg := domain.TierConfig{Window: time.Minute, Limit: 10}

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := lim.Check("a", domain.ActionLogin, cfg); res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Fatalf("expected exactly 10 allowed under concurrency, got %d", allowed)
	}
}

func TestWindowLimiter_InvalidateActorDropsCounters(t *testing.T) {
	lim, _ := newTestLimiter()
	cfg := domain.TierConfig{Window: time.Minute, Limit: 1}

	lim.Check("a", domain.ActionLogin, cfg)
	lim.Check("a", "search", cfg)

	if n := lim.InvalidateActor("a"); n != 2 {
		t.Fatalf("expected 2 counters invalidated, got %d", n)
	}
	if res := lim.Check("a", domain.ActionLogin, cfg); !res.Allowed {
		t.Fatalf("expected fresh counter after invalidation")
	}
}
