package queries

import (
	"context"
	"strings"

	"ballotcore/contexts/governance-core/ballot-engine/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/ballot-engine/domain/errors"
	"ballotcore/contexts/governance-core/ballot-engine/ports"
)

// BallotView pairs the registry entry with the kind-specific record so one
// lookup serves both tally and standings reads.
type BallotView struct {
	Ballot      entities.Ballot
	Proposal    *entities.Proposal
	Leaderboard *entities.Leaderboard
}

// BallotQueryUseCase serves read-only ballot, tally, and receipt lookups.
type BallotQueryUseCase struct {
	Environments ports.EnvironmentRepository
	Ballots      ports.BallotRepository
	Proposals    ports.ProposalRepository
	Leaderboards ports.LeaderboardRepository
	Receipts     ports.ReceiptRepository
}

func (uc BallotQueryUseCase) Ballot(ctx context.Context, ballotID uint64) (BallotView, error) {
	ballot, err := uc.Ballots.GetBallot(ctx, ballotID)
	if err != nil {
		return BallotView{}, err
	}
	view := BallotView{Ballot: ballot}
	switch ballot.Kind {
	case entities.KindProposal:
		proposal, err := uc.Proposals.GetProposal(ctx, ballot.ReferenceID)
		if err != nil {
			return BallotView{}, err
		}
		view.Proposal = &proposal
	case entities.KindLeaderboard:
		leaderboard, err := uc.Leaderboards.GetLeaderboard(ctx, ballot.ReferenceID)
		if err != nil {
			return BallotView{}, err
		}
		view.Leaderboard = &leaderboard
	default:
		return BallotView{}, domainerrors.ErrElectionUnimplemented
	}
	return view, nil
}

func (uc BallotQueryUseCase) Environment(ctx context.Context) (entities.Environment, error) {
	env, found, err := uc.Environments.GetEnvironment(ctx)
	if err != nil {
		return entities.Environment{}, err
	}
	if !found {
		return entities.Environment{}, nil
	}
	return env, nil
}

func (uc BallotQueryUseCase) VoterReceipts(ctx context.Context, voter string, limit int) ([]entities.VoteReceipt, error) {
	if limit <= 0 {
		limit = 100
	}
	return uc.Receipts.ListReceipts(ctx, strings.TrimSpace(voter), limit)
}
