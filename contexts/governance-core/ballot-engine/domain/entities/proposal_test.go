package entities

import (
	"testing"
	"time"
)

func TestProposalWindowOpenInclusiveBounds(t *testing.T) {
	begin := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := begin.Add(time.Hour)
	proposal := Proposal{Begin: begin, End: end}

	if !proposal.WindowOpen(begin) {
		t.Fatalf("window must be open at begin")
	}
	if !proposal.WindowOpen(end) {
		t.Fatalf("window must be open at end")
	}
	if proposal.WindowOpen(begin.Add(-time.Second)) {
		t.Fatalf("window must be closed before begin")
	}
	if proposal.WindowOpen(end.Add(time.Second)) {
		t.Fatalf("window must be closed after end")
	}
}

func TestProposalTallyBuckets(t *testing.T) {
	proposal := Proposal{
		NoCount:      ZeroWeight("VOTE", 0),
		YesCount:     ZeroWeight("VOTE", 0),
		AbstainCount: ZeroWeight("VOTE", 0),
	}
	proposal.Tally(DirectionYes).Amount += 10
	proposal.Tally(DirectionNo).Amount += 3
	proposal.Tally(DirectionAbstain).Amount += 1

	if proposal.YesCount.Amount != 10 || proposal.NoCount.Amount != 3 || proposal.AbstainCount.Amount != 1 {
		t.Fatalf("unexpected tallies: yes=%d no=%d abstain=%d",
			proposal.YesCount.Amount, proposal.NoCount.Amount, proposal.AbstainCount.Amount)
	}
	if proposal.Tally(7) != nil {
		t.Fatalf("expected nil bucket for unknown direction")
	}
}

func TestProposalResetForCycle(t *testing.T) {
	begin := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := begin.Add(time.Hour)
	proposal := Proposal{
		NoCount:      NewWeight(30, "VOTE", 3),
		YesCount:     NewWeight(100, "VOTE", 3),
		AbstainCount: NewWeight(5, "VOTE", 3),
		UniqueVoters: 4,
		Status:       ProposalStatusPass,
		Begin:        begin,
		End:          end,
	}

	newBegin := end.Add(time.Hour)
	newEnd := newBegin.Add(time.Hour)
	proposal.ResetForCycle(newBegin, newEnd)

	if proposal.YesCount.Amount != 0 || proposal.NoCount.Amount != 0 || proposal.AbstainCount.Amount != 0 {
		t.Fatalf("expected zeroed tallies")
	}
	if proposal.YesCount.Code != "VOTE" || proposal.YesCount.Precision != 3 {
		t.Fatalf("reset must keep currency identity")
	}
	if proposal.UniqueVoters != 0 {
		t.Fatalf("expected zeroed voter count")
	}
	if proposal.Status != ProposalStatusOpen {
		t.Fatalf("expected status reopened")
	}
	if proposal.CycleCount != 1 {
		t.Fatalf("expected cycle count 1, got %d", proposal.CycleCount)
	}
	if !proposal.Begin.Equal(newBegin) || !proposal.End.Equal(newEnd) {
		t.Fatalf("expected new window installed")
	}
}
