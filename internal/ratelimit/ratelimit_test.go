package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter(limit int) (*Limiter, *time.Time) {
	l := New(limit)
	current := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestAllowUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(3)

	for i := 0; i < 3; i++ {
		ok, remaining := l.Allow("1.2.3.4")
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if remaining != 3-i-1 {
			t.Fatalf("request %d: remaining = %d, want %d", i+1, remaining, 3-i-1)
		}
	}

	ok, remaining := l.Allow("1.2.3.4")
	if ok || remaining != 0 {
		t.Fatalf("fourth request should be rejected with 0 remaining, got ok=%v remaining=%d", ok, remaining)
	}
}

func TestRejectionDoesNotConsumeBudget(t *testing.T) {
	l, _ := newTestLimiter(1)

	l.Allow("id")
	l.Allow("id")
	l.Allow("id")

	if len(l.counts) != 1 || l.counts[l.key("id", "2025-06-15")] != 1 {
		t.Fatalf("rejected requests must not increment, counts=%v", l.counts)
	}
}

func TestIdentitiesAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1)

	if ok, _ := l.Allow("a"); !ok {
		t.Fatal("first identity should be allowed")
	}
	if ok, _ := l.Allow("b"); !ok {
		t.Fatal("second identity should be allowed")
	}
}

func TestNextDayResetsAndPurges(t *testing.T) {
	l, current := newTestLimiter(1)

	l.Allow("id")
	if ok, _ := l.Allow("id"); ok {
		t.Fatal("second same-day request should be rejected")
	}

	*current = current.Add(24 * time.Hour)

	ok, remaining := l.Allow("id")
	if !ok || remaining != 0 {
		t.Fatalf("next-day request should be admitted, got ok=%v remaining=%d", ok, remaining)
	}

	if len(l.counts) != 1 {
		t.Fatalf("stale day counters should be purged, counts=%v", l.counts)
	}
}
