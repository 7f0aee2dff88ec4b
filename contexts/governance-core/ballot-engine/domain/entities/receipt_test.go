package entities

import (
	"testing"
	"time"
)

func TestReceiptHasDirection(t *testing.T) {
	receipt := VoteReceipt{Directions: []uint16{0, 2}}
	if !receipt.HasDirection(0) || !receipt.HasDirection(2) {
		t.Fatalf("expected recorded directions to be found")
	}
	if receipt.HasDirection(1) {
		t.Fatalf("expected missing direction to be absent")
	}
}

func TestReceiptStaleFor(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := VoteReceipt{Expiration: end}
	if current.StaleFor(end) {
		t.Fatalf("receipt expiring at the window end is current")
	}
	old := VoteReceipt{Expiration: end.Add(-time.Hour)}
	if !old.StaleFor(end) {
		t.Fatalf("receipt from an earlier cycle must be stale")
	}
}
