package entities

import "testing"

func TestWeightQuantityArithmetic(t *testing.T) {
	a := NewWeightQuantity(1500, "vote", 3)
	b := NewWeightQuantity(500, "VOTE", 3)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if sum.Amount != 2000 {
		t.Fatalf("expected 2000, got %d", sum.Amount)
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("sub failed: %v", err)
	}
	if diff.Amount != 1000 {
		t.Fatalf("expected 1000, got %d", diff.Amount)
	}

	other := NewWeightQuantity(100, "GOV", 3)
	if _, err := a.Add(other); err == nil {
		t.Fatalf("expected mismatch error for different codes")
	}
	mismatchedPrecision := NewWeightQuantity(100, "VOTE", 2)
	if _, err := a.Sub(mismatchedPrecision); err == nil {
		t.Fatalf("expected mismatch error for different precisions")
	}
}

func TestWeightQuantityFloorZero(t *testing.T) {
	negative := NewWeightQuantity(-42, "VOTE", 0)
	if got := negative.FloorZero(); got.Amount != 0 {
		t.Fatalf("expected floored zero, got %d", got.Amount)
	}
	positive := NewWeightQuantity(42, "VOTE", 0)
	if got := positive.FloorZero(); got.Amount != 42 {
		t.Fatalf("expected 42 untouched, got %d", got.Amount)
	}
}

func TestWholeUnit(t *testing.T) {
	cases := map[uint8]int64{0: 1, 1: 10, 3: 1000, 6: 1000000}
	for precision, want := range cases {
		if got := WholeUnit(precision); got != want {
			t.Fatalf("precision %d: expected %d, got %d", precision, want, got)
		}
	}
}

func TestWeightQuantityString(t *testing.T) {
	q := NewWeightQuantity(1500, "vote", 3)
	if got := q.String(); got != "1.500 VOTE" {
		t.Fatalf("unexpected string: %q", got)
	}
	whole := NewWeightQuantity(7, "GOV", 0)
	if got := whole.String(); got != "7 GOV" {
		t.Fatalf("unexpected string: %q", got)
	}
}
