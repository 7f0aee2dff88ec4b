package entities

import (
	"testing"
	"time"
)

func TestCounterbalanceDecayStepsExactly(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	counter := NewCounterbalance("alice", "VOTE", 3, t0)
	counter = counter.Touch(t0, 300, 5000) // 5.000 VOTE received

	if got := counter.DecayedAt(t0.Add(299*time.Second), 300); got.Amount != 5000 {
		t.Fatalf("expected no decay before a full step, got %d", got.Amount)
	}
	if got := counter.DecayedAt(t0.Add(300*time.Second), 300); got.Amount != 4000 {
		t.Fatalf("expected one whole unit decayed, got %d", got.Amount)
	}
	if got := counter.DecayedAt(t0.Add(3*300*time.Second), 300); got.Amount != 2000 {
		t.Fatalf("expected three whole units decayed, got %d", got.Amount)
	}
	if got := counter.DecayedAt(t0.Add(5*300*time.Second), 300); got.Amount != 0 {
		t.Fatalf("expected full decay after five steps, got %d", got.Amount)
	}
	if got := counter.DecayedAt(t0.Add(50*300*time.Second), 300); got.Amount != 0 {
		t.Fatalf("decay must floor at zero, got %d", got.Amount)
	}
}

func TestCounterbalanceTouchAppliesDecayBeforeDelta(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	counter := NewCounterbalance("bob", "VOTE", 3, t0)
	counter = counter.Touch(t0, 300, 5000)

	// Two steps elapse, then 1.000 more arrives: 5000 - 2000 + 1000.
	t1 := t0.Add(600 * time.Second)
	counter = counter.Touch(t1, 300, 1000)
	if counter.Decayable.Amount != 4000 {
		t.Fatalf("expected 4000 after decay and delta, got %d", counter.Decayable.Amount)
	}
	if !counter.LastDecay.Equal(t1) {
		t.Fatalf("expected decay clock reset to touch time")
	}

	// Sending weight can never push the counter below zero.
	t2 := t1.Add(300 * time.Second)
	counter = counter.Touch(t2, 300, -10000)
	if counter.Decayable.Amount != 0 {
		t.Fatalf("expected floor at zero, got %d", counter.Decayable.Amount)
	}
}

func TestCounterbalanceZeroRateNeverDecays(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	counter := NewCounterbalance("carol", "VOTE", 3, t0)
	counter = counter.Touch(t0, 0, 2500)
	if got := counter.DecayedAt(t0.Add(24*time.Hour), 0); got.Amount != 2500 {
		t.Fatalf("expected no decay at zero rate, got %d", got.Amount)
	}
}
