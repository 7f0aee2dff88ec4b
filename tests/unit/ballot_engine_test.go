package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	ballotengine "ballotcore/contexts/governance-core/ballot-engine"
	"ballotcore/contexts/governance-core/ballot-engine/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/ballot-engine/domain/errors"
	httptransport "ballotcore/contexts/governance-core/ballot-engine/transport/http"
)

func TestProposalVoteRecastAndClose(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)
	module.Store.SetCurrency("VOTE", 0, true)
	module.Store.SetWeight("alice", "VOTE", 100)
	module.Store.SetWeight("bob", "VOTE", 40)

	ctx := context.Background()
	created, err := module.Handler.RegisterBallotHandler(ctx, "weightmaster", httptransport.RegisterBallotRequest{
		Kind:  "proposal",
		Code:  "VOTE",
		Begin: t0,
		End:   t0.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("register ballot failed: %v", err)
	}
	if created.BallotID != 1 || created.Kind != "proposal" {
		t.Fatalf("unexpected ballot: id=%d kind=%s", created.BallotID, created.Kind)
	}

	module.Store.SetNow(t0.Add(-time.Minute))
	err = module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionYes})
	if !errors.Is(err, domainerrors.ErrVotingNotOpen) {
		t.Fatalf("expected closed window rejection, got %v", err)
	}

	module.Store.SetNow(t0.Add(5 * time.Minute))
	if err := module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionYes}); err != nil {
		t.Fatalf("alice vote failed: %v", err)
	}
	if err := module.Handler.CastVoteHandler(ctx, "bob", created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionNo}); err != nil {
		t.Fatalf("bob vote failed: %v", err)
	}
	view, err := module.Handler.BallotHandler(ctx, created.BallotID)
	if err != nil {
		t.Fatalf("ballot view failed: %v", err)
	}
	if view.Proposal.YesCount != 100 || view.Proposal.NoCount != 40 || view.Proposal.UniqueVoters != 2 {
		t.Fatalf("unexpected tallies: yes=%d no=%d voters=%d",
			view.Proposal.YesCount, view.Proposal.NoCount, view.Proposal.UniqueVoters)
	}

	// Same-direction recast with unchanged weight is a no-op on the tally.
	if err := module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionYes}); err != nil {
		t.Fatalf("same-direction recast failed: %v", err)
	}
	// Switching direction moves the recorded weight between buckets without
	// counting the voter twice.
	if err := module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionNo}); err != nil {
		t.Fatalf("direction change failed: %v", err)
	}
	view, err = module.Handler.BallotHandler(ctx, created.BallotID)
	if err != nil {
		t.Fatalf("ballot view failed: %v", err)
	}
	if view.Proposal.YesCount != 0 || view.Proposal.NoCount != 140 || view.Proposal.UniqueVoters != 2 {
		t.Fatalf("unexpected tallies after recast: yes=%d no=%d voters=%d",
			view.Proposal.YesCount, view.Proposal.NoCount, view.Proposal.UniqueVoters)
	}

	err = module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: 9})
	if !errors.Is(err, domainerrors.ErrInvalidDirection) {
		t.Fatalf("expected direction range check, got %v", err)
	}

	err = module.Handler.CloseBallotHandler(ctx, "weightmaster", created.BallotID, httptransport.CloseBallotRequest{Status: entities.ProposalStatusFail})
	if !errors.Is(err, domainerrors.ErrVotingStillOpen) {
		t.Fatalf("expected close rejection while open, got %v", err)
	}
	module.Store.SetNow(t0.Add(2 * time.Hour))
	err = module.Handler.CloseBallotHandler(ctx, "weightmaster", created.BallotID, httptransport.CloseBallotRequest{Status: 7})
	if !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected status range check, got %v", err)
	}
	if err := module.Handler.CloseBallotHandler(ctx, "weightmaster", created.BallotID, httptransport.CloseBallotRequest{Status: entities.ProposalStatusFail}); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	view, err = module.Handler.BallotHandler(ctx, created.BallotID)
	if err != nil {
		t.Fatalf("ballot view failed: %v", err)
	}
	if view.Proposal.Status != entities.ProposalStatusFail {
		t.Fatalf("expected failed status, got %d", view.Proposal.Status)
	}
}

func TestProposalRecastDisabledCurrency(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)
	module.Store.SetCurrency("FIRM", 0, false)
	module.Store.SetWeight("alice", "FIRM", 10)

	ctx := context.Background()
	created, err := module.Handler.RegisterBallotHandler(ctx, "weightmaster", httptransport.RegisterBallotRequest{
		Kind:  "proposal",
		Code:  "FIRM",
		Begin: t0,
		End:   t0.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("register ballot failed: %v", err)
	}
	if err := module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionYes}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	err = module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionYes})
	if !errors.Is(err, domainerrors.ErrRecastDisabled) {
		t.Fatalf("expected recast gate, got %v", err)
	}
}

func TestProposalCycleResetsTalliesAndStalesReceipts(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)
	module.Store.SetCurrency("VOTE", 0, true)
	module.Store.SetWeight("alice", "VOTE", 100)

	ctx := context.Background()
	created, err := module.Handler.RegisterBallotHandler(ctx, "weightmaster", httptransport.RegisterBallotRequest{
		Kind:  "proposal",
		Code:  "VOTE",
		Begin: t0,
		End:   t0.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("register ballot failed: %v", err)
	}
	if err := module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionYes}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	nextBegin := t0.Add(3 * time.Hour)
	nextEnd := t0.Add(4 * time.Hour)
	err = module.Handler.AdvanceCycleHandler(ctx, "weightmaster", created.BallotID, httptransport.AdvanceCycleRequest{
		Begin: nextBegin,
		End:   nextEnd,
	})
	if !errors.Is(err, domainerrors.ErrVotingStillOpen) {
		t.Fatalf("expected cycle rejection while open, got %v", err)
	}

	module.Store.SetNow(t0.Add(2 * time.Hour))
	if err := module.Handler.AdvanceCycleHandler(ctx, "weightmaster", created.BallotID, httptransport.AdvanceCycleRequest{
		Begin: nextBegin,
		End:   nextEnd,
	}); err != nil {
		t.Fatalf("advance cycle failed: %v", err)
	}
	view, err := module.Handler.BallotHandler(ctx, created.BallotID)
	if err != nil {
		t.Fatalf("ballot view failed: %v", err)
	}
	if view.Proposal.YesCount != 0 || view.Proposal.UniqueVoters != 0 || view.Proposal.CycleCount != 1 {
		t.Fatalf("expected reset round: yes=%d voters=%d cycle=%d",
			view.Proposal.YesCount, view.Proposal.UniqueVoters, view.Proposal.CycleCount)
	}

	// The receipt left behind by round zero is stale now, so the same voter
	// counts as fresh in the new round.
	module.Store.SetNow(nextBegin.Add(time.Minute))
	if err := module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionNo}); err != nil {
		t.Fatalf("new round vote failed: %v", err)
	}
	view, err = module.Handler.BallotHandler(ctx, created.BallotID)
	if err != nil {
		t.Fatalf("ballot view failed: %v", err)
	}
	if view.Proposal.NoCount != 100 || view.Proposal.UniqueVoters != 1 {
		t.Fatalf("expected fresh vote in new round: no=%d voters=%d",
			view.Proposal.NoCount, view.Proposal.UniqueVoters)
	}
}

func TestLeaderboardSpreadAndStatuses(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	begin := t0.Add(30 * time.Minute)
	end := t0.Add(2 * time.Hour)
	module.Store.SetNow(t0)
	module.Store.SetCurrency("VOTE", 0, true)
	module.Store.SetWeight("alice", "VOTE", 50)
	module.Store.SetWeight("bob", "VOTE", 70)

	ctx := context.Background()
	created, err := module.Handler.RegisterBallotHandler(ctx, "weightmaster", httptransport.RegisterBallotRequest{
		Kind:  "leaderboard",
		Code:  "VOTE",
		Begin: begin,
		End:   end,
	})
	if err != nil {
		t.Fatalf("register ballot failed: %v", err)
	}
	for _, member := range []string{"proj-x", "proj-y", "proj-z"} {
		if err := module.Handler.AddCandidateHandler(ctx, "weightmaster", created.BallotID, httptransport.CandidateRequest{Member: member}); err != nil {
			t.Fatalf("add candidate %s failed: %v", member, err)
		}
	}
	err = module.Handler.AddCandidateHandler(ctx, "weightmaster", created.BallotID, httptransport.CandidateRequest{Member: "proj-x"})
	if !errors.Is(err, domainerrors.ErrCandidateExists) {
		t.Fatalf("expected duplicate candidate rejection, got %v", err)
	}
	if err := module.Handler.SetSeatCountHandler(ctx, "weightmaster", created.BallotID, httptransport.SeatCountRequest{Seats: 2}); err != nil {
		t.Fatalf("set seat count failed: %v", err)
	}

	module.Store.SetNow(begin.Add(time.Minute))
	err = module.Handler.AddCandidateHandler(ctx, "weightmaster", created.BallotID, httptransport.CandidateRequest{Member: "proj-late"})
	if !errors.Is(err, domainerrors.ErrBallotStarted) {
		t.Fatalf("candidate list must freeze at begin, got %v", err)
	}

	// Spreading credits the full weight to every distinct pick.
	if err := module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: 0}); err != nil {
		t.Fatalf("alice first pick failed: %v", err)
	}
	if err := module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: 1}); err != nil {
		t.Fatalf("alice second pick failed: %v", err)
	}
	err = module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: 0})
	if !errors.Is(err, domainerrors.ErrCandidateChosen) {
		t.Fatalf("expected chosen candidate rejection, got %v", err)
	}
	err = module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: 5})
	if !errors.Is(err, domainerrors.ErrInvalidDirection) {
		t.Fatalf("expected candidate index range check, got %v", err)
	}
	if err := module.Handler.CastVoteHandler(ctx, "bob", created.BallotID, httptransport.CastVoteRequest{Direction: 2}); err != nil {
		t.Fatalf("bob pick failed: %v", err)
	}

	view, err := module.Handler.BallotHandler(ctx, created.BallotID)
	if err != nil {
		t.Fatalf("ballot view failed: %v", err)
	}
	votes := []int64{view.Leaderboard.Candidates[0].Votes, view.Leaderboard.Candidates[1].Votes, view.Leaderboard.Candidates[2].Votes}
	if votes[0] != 50 || votes[1] != 50 || votes[2] != 70 {
		t.Fatalf("unexpected standings: %v", votes)
	}
	if view.Leaderboard.UniqueVoters != 2 || view.Leaderboard.AvailableSeats != 2 {
		t.Fatalf("unexpected board state: voters=%d seats=%d",
			view.Leaderboard.UniqueVoters, view.Leaderboard.AvailableSeats)
	}

	err = module.Handler.SetCandidateStatusesHandler(ctx, "weightmaster", created.BallotID, httptransport.CandidateStatusesRequest{Statuses: []uint8{1, 0, 1}})
	if !errors.Is(err, domainerrors.ErrVotingStillOpen) {
		t.Fatalf("expected status stamping rejection while open, got %v", err)
	}
	module.Store.SetNow(end.Add(time.Hour))
	err = module.Handler.SetCandidateStatusesHandler(ctx, "weightmaster", created.BallotID, httptransport.CandidateStatusesRequest{Statuses: []uint8{1, 0}})
	if !errors.Is(err, domainerrors.ErrCandidateNotFound) {
		t.Fatalf("statuses must cover every candidate, got %v", err)
	}
	if err := module.Handler.SetCandidateStatusesHandler(ctx, "weightmaster", created.BallotID, httptransport.CandidateStatusesRequest{Statuses: []uint8{1, 0, 1}}); err != nil {
		t.Fatalf("set statuses failed: %v", err)
	}
	view, err = module.Handler.BallotHandler(ctx, created.BallotID)
	if err != nil {
		t.Fatalf("ballot view failed: %v", err)
	}
	if view.Leaderboard.Candidates[0].Status != 1 || view.Leaderboard.Candidates[1].Status != 0 || view.Leaderboard.Candidates[2].Status != 1 {
		t.Fatalf("unexpected statuses: %+v", view.Leaderboard.Candidates)
	}

	// Leaderboard close takes the same pass/fail result codes as proposals.
	err = module.Handler.CloseBallotHandler(ctx, "weightmaster", created.BallotID, httptransport.CloseBallotRequest{Status: 9})
	if !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected status range check on leaderboard close, got %v", err)
	}
	if err := module.Handler.CloseBallotHandler(ctx, "weightmaster", created.BallotID, httptransport.CloseBallotRequest{Status: entities.ProposalStatusPass}); err != nil {
		t.Fatalf("leaderboard close failed: %v", err)
	}
	view, err = module.Handler.BallotHandler(ctx, created.BallotID)
	if err != nil {
		t.Fatalf("ballot view failed: %v", err)
	}
	if view.Leaderboard.Status != entities.ProposalStatusPass {
		t.Fatalf("expected recorded pass status, got %d", view.Leaderboard.Status)
	}
}

func TestElectionKindIsReserved(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil)
	module.Store.SetCurrency("VOTE", 0, true)
	t0 := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)

	ctx := context.Background()
	_, err := module.Handler.RegisterBallotHandler(ctx, "weightmaster", httptransport.RegisterBallotRequest{
		Kind:  "election",
		Code:  "VOTE",
		Begin: t0,
		End:   t0.Add(time.Hour),
	})
	if !errors.Is(err, domainerrors.ErrElectionUnimplemented) {
		t.Fatalf("expected election rejection, got %v", err)
	}
	_, err = module.Handler.RegisterBallotHandler(ctx, "weightmaster", httptransport.RegisterBallotRequest{
		Kind:  "plebiscite",
		Code:  "VOTE",
		Begin: t0,
		End:   t0.Add(time.Hour),
	})
	if !errors.Is(err, domainerrors.ErrInvalidKind) {
		t.Fatalf("expected unknown kind rejection, got %v", err)
	}
}

func TestUnregisterBallotRules(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)
	module.Store.SetCurrency("VOTE", 0, true)
	module.Store.SetWeight("alice", "VOTE", 10)

	ctx := context.Background()
	pending, err := module.Handler.RegisterBallotHandler(ctx, "weightmaster", httptransport.RegisterBallotRequest{
		Kind:  "proposal",
		Code:  "VOTE",
		Begin: t0.Add(time.Hour),
		End:   t0.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("register pending ballot failed: %v", err)
	}
	err = module.Handler.UnregisterBallotHandler(ctx, "impostor", pending.BallotID)
	if !errors.Is(err, domainerrors.ErrNotPublisher) {
		t.Fatalf("expected publisher check, got %v", err)
	}
	if err := module.Handler.UnregisterBallotHandler(ctx, "weightmaster", pending.BallotID); err != nil {
		t.Fatalf("unregister pending ballot failed: %v", err)
	}
	if _, err := module.Handler.BallotHandler(ctx, pending.BallotID); !errors.Is(err, domainerrors.ErrBallotNotFound) {
		t.Fatalf("expected ballot removed, got %v", err)
	}
	env, err := module.Handler.Queries.Environment(ctx)
	if err != nil {
		t.Fatalf("environment lookup failed: %v", err)
	}
	if env.TotalProposals != 0 {
		t.Fatalf("expected proposal total decremented, got %d", env.TotalProposals)
	}

	started, err := module.Handler.RegisterBallotHandler(ctx, "weightmaster", httptransport.RegisterBallotRequest{
		Kind:  "proposal",
		Code:  "VOTE",
		Begin: t0,
		End:   t0.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("register started ballot failed: %v", err)
	}
	// Ballot ids keep advancing even after an unregistration.
	if started.BallotID != 2 {
		t.Fatalf("expected ballot id 2, got %d", started.BallotID)
	}
	err = module.Handler.UnregisterBallotHandler(ctx, "weightmaster", started.BallotID)
	if !errors.Is(err, domainerrors.ErrBallotStarted) {
		t.Fatalf("expected started ballot rejection, got %v", err)
	}

	module.Store.SetNow(t0.Add(90 * time.Minute))
	if err := module.Handler.AdvanceCycleHandler(ctx, "weightmaster", started.BallotID, httptransport.AdvanceCycleRequest{
		Begin: t0.Add(3 * time.Hour),
		End:   t0.Add(4 * time.Hour),
	}); err != nil {
		t.Fatalf("advance cycle failed: %v", err)
	}
	// Before the new window opens the ballot looks pending again, but a cycled
	// proposal can no longer be withdrawn.
	module.Store.SetNow(t0.Add(2 * time.Hour))
	err = module.Handler.UnregisterBallotHandler(ctx, "weightmaster", started.BallotID)
	if !errors.Is(err, domainerrors.ErrCycleAdvanced) {
		t.Fatalf("expected cycled ballot rejection, got %v", err)
	}
}

func TestVoterReceiptsAndPrune(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)
	module.Store.SetCurrency("VOTE", 0, true)
	module.Store.SetWeight("alice", "VOTE", 25)

	ctx := context.Background()
	created, err := module.Handler.RegisterBallotHandler(ctx, "weightmaster", httptransport.RegisterBallotRequest{
		Kind:  "proposal",
		Code:  "VOTE",
		Begin: t0,
		End:   t0.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("register ballot failed: %v", err)
	}
	if err := module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionAbstain}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	receipts, err := module.Handler.VoterReceiptsHandler(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("receipt lookup failed: %v", err)
	}
	if len(receipts) != 1 {
		t.Fatalf("expected one receipt, got %d", len(receipts))
	}
	if receipts[0].Weight != 25 || !receipts[0].Expiration.Equal(t0.Add(time.Hour)) {
		t.Fatalf("unexpected receipt: %+v", receipts[0])
	}

	// Receipts are current until the window ends, so nothing prunes yet.
	pruned, err := module.Handler.PruneReceiptsHandler(ctx, "alice", httptransport.PruneReceiptsRequest{MaxCount: 10})
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if pruned.Pruned != 0 {
		t.Fatalf("expected nothing pruned while current, got %d", pruned.Pruned)
	}

	module.Store.SetNow(t0.Add(2 * time.Hour))
	pruned, err = module.Handler.PruneReceiptsHandler(ctx, "alice", httptransport.PruneReceiptsRequest{MaxCount: 10})
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if pruned.Pruned != 1 {
		t.Fatalf("expected one receipt pruned, got %d", pruned.Pruned)
	}
	receipts, err = module.Handler.VoterReceiptsHandler(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("receipt lookup failed: %v", err)
	}
	if len(receipts) != 0 {
		t.Fatalf("expected receipts emptied, got %d", len(receipts))
	}
}
