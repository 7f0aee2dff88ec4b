package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotcore/contexts/governance-core/ballot-engine/application"
	"ballotcore/contexts/governance-core/ballot-engine/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/ballot-engine/domain/errors"
	"ballotcore/contexts/governance-core/ballot-engine/ports"
)

// CastVoteCommand records one voter's choice on one ballot. Direction is a
// tally bucket for proposals and a candidate index for leaderboards.
type CastVoteCommand struct {
	Voter     string
	BallotID  uint64
	Direction uint16
}

// PruneReceiptsCommand garbage-collects a voter's expired receipts, scanning
// at most MaxCount of them.
type PruneReceiptsCommand struct {
	Voter    string
	MaxCount int
}

// VotingUseCase owns vote casting and receipt lifecycle. Weight is read from
// the token ledger at cast time; a receipt left behind by an earlier cycle is
// detected by its stale expiration and treated as absent.
type VotingUseCase struct {
	Ballots      ports.BallotRepository
	Proposals    ports.ProposalRepository
	Leaderboards ports.LeaderboardRepository
	Receipts     ports.ReceiptRepository
	Weights      ports.WeightSource
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc VotingUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) error {
	voter := strings.TrimSpace(cmd.Voter)
	if voter == "" {
		return domainerrors.ErrReceiptNotFound
	}
	ballot, err := uc.Ballots.GetBallot(ctx, cmd.BallotID)
	if err != nil {
		return err
	}
	switch ballot.Kind {
	case entities.KindProposal:
		return uc.voteOnProposal(ctx, voter, ballot, cmd.Direction)
	case entities.KindLeaderboard:
		return uc.voteOnLeaderboard(ctx, voter, ballot, cmd.Direction)
	default:
		return domainerrors.ErrElectionUnimplemented
	}
}

func (uc VotingUseCase) voteOnProposal(
	ctx context.Context,
	voter string,
	ballot entities.Ballot,
	direction uint16,
) error {
	logger := application.ResolveLogger(uc.Logger)
	proposal, err := uc.Proposals.GetProposal(ctx, ballot.ReferenceID)
	if err != nil {
		return err
	}
	now := uc.now()
	if !proposal.WindowOpen(now) {
		return domainerrors.ErrVotingNotOpen
	}
	bucket := proposal.Tally(direction)
	if bucket == nil {
		return domainerrors.ErrInvalidDirection
	}
	currency, err := uc.Weights.Currency(ctx, proposal.YesCount.Code)
	if err != nil {
		return err
	}
	amount, err := uc.Weights.VoterWeight(ctx, voter, currency.Code)
	if err != nil {
		return err
	}
	weight := entities.NewWeight(amount, currency.Code, currency.Precision)

	receipt, found, err := uc.Receipts.GetReceipt(ctx, voter, ballot.BallotID)
	if err != nil {
		return err
	}
	switch {
	case !found || receipt.StaleFor(proposal.End):
		// First vote this cycle. A receipt from an earlier cycle is kept
		// stale in storage and simply overwritten here.
		bucket.Amount += amount
		proposal.UniqueVoters++
		receipt = entities.VoteReceipt{
			Voter:      voter,
			BallotID:   ballot.BallotID,
			Directions: []uint16{direction},
			Weight:     weight,
			Expiration: proposal.End,
		}
		if err := uc.Receipts.SaveReceipt(ctx, receipt); err != nil {
			return err
		}
	case receipt.HasDirection(direction):
		if !currency.Recastable {
			return domainerrors.ErrRecastDisabled
		}
		// Same-direction recast applies the delta against the weight the
		// receipt recorded, and the receipt keeps that recorded weight.
		bucket.Amount += amount - receipt.Weight.Amount
	default:
		previous := proposal.Tally(receipt.Directions[len(receipt.Directions)-1])
		if previous != nil {
			previous.Amount -= receipt.Weight.Amount
		}
		bucket.Amount += amount
		receipt.Directions = []uint16{direction}
		receipt.Weight = weight
		receipt.Expiration = proposal.End
		if err := uc.Receipts.SaveReceipt(ctx, receipt); err != nil {
			return err
		}
	}
	proposal.UpdatedAt = now
	if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
		return err
	}
	if err := uc.appendVoteEvent(ctx, ballot.BallotID, now, voter, direction, amount); err != nil {
		return err
	}
	logger.Info("proposal vote cast",
		"event", "ballot_vote_cast",
		"module", "governance-core/ballot-engine",
		"layer", "application",
		"ballot_id", ballot.BallotID,
		"voter", voter,
		"direction", direction,
		"weight", amount,
	)
	return nil
}

func (uc VotingUseCase) voteOnLeaderboard(
	ctx context.Context,
	voter string,
	ballot entities.Ballot,
	direction uint16,
) error {
	logger := application.ResolveLogger(uc.Logger)
	leaderboard, err := uc.Leaderboards.GetLeaderboard(ctx, ballot.ReferenceID)
	if err != nil {
		return err
	}
	now := uc.now()
	if !leaderboard.WindowOpen(now) {
		return domainerrors.ErrVotingNotOpen
	}
	if int(direction) >= len(leaderboard.Candidates) {
		return domainerrors.ErrInvalidDirection
	}
	amount, err := uc.Weights.VoterWeight(ctx, voter, leaderboard.Code)
	if err != nil {
		return err
	}
	weight := entities.NewWeight(amount, leaderboard.Code, leaderboard.Precision)

	receipt, found, err := uc.Receipts.GetReceipt(ctx, voter, ballot.BallotID)
	if err != nil {
		return err
	}
	switch {
	case !found || receipt.StaleFor(leaderboard.End):
		leaderboard.Candidates[direction].Votes.Amount += amount
		leaderboard.UniqueVoters++
		receipt = entities.VoteReceipt{
			Voter:      voter,
			BallotID:   ballot.BallotID,
			Directions: []uint16{direction},
			Weight:     weight,
			Expiration: leaderboard.End,
		}
	case receipt.HasDirection(direction):
		// Spreading weight credits each candidate once; a chosen candidate
		// cannot be re-selected this cycle regardless of the recast setting.
		return domainerrors.ErrCandidateChosen
	default:
		leaderboard.Candidates[direction].Votes.Amount += amount
		receipt.Directions = append(receipt.Directions, direction)
		receipt.Weight = weight
	}
	if err := uc.Receipts.SaveReceipt(ctx, receipt); err != nil {
		return err
	}
	leaderboard.UpdatedAt = now
	if err := uc.Leaderboards.SaveLeaderboard(ctx, leaderboard); err != nil {
		return err
	}
	if err := uc.appendVoteEvent(ctx, ballot.BallotID, now, voter, direction, amount); err != nil {
		return err
	}
	logger.Info("leaderboard vote cast",
		"event", "ballot_vote_cast",
		"module", "governance-core/ballot-engine",
		"layer", "application",
		"ballot_id", ballot.BallotID,
		"voter", voter,
		"direction", direction,
		"weight", amount,
	)
	return nil
}

// PruneReceipts deletes up to MaxCount of a voter's receipts whose expiration
// has passed and reports how many were removed.
func (uc VotingUseCase) PruneReceipts(ctx context.Context, cmd PruneReceiptsCommand) (int, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.Voter)
	if voter == "" || cmd.MaxCount <= 0 {
		return 0, nil
	}
	receipts, err := uc.Receipts.ListReceipts(ctx, voter, cmd.MaxCount)
	if err != nil {
		return 0, err
	}
	now := uc.now()
	pruned := 0
	for _, receipt := range receipts {
		if !receipt.Expiration.Before(now) {
			continue
		}
		if err := uc.Receipts.DeleteReceipt(ctx, voter, receipt.BallotID); err != nil {
			return pruned, err
		}
		pruned++
	}
	if pruned > 0 {
		logger.Info("expired receipts pruned",
			"event", "ballot_receipts_pruned",
			"module", "governance-core/ballot-engine",
			"layer", "application",
			"voter", voter,
			"pruned", pruned,
		)
	}
	return pruned, nil
}

func (uc VotingUseCase) appendVoteEvent(
	ctx context.Context,
	ballotID uint64,
	occurredAt time.Time,
	voter string,
	direction uint16,
	weight int64,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newBallotEnvelope(eventID, "vote.cast", ballotID, occurredAt, map[string]any{
		"ballot_id": ballotID,
		"voter":     voter,
		"direction": direction,
		"weight":    weight,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc VotingUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
