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

// RegisterBallotCommand allocates a new ballot of the requested kind.
type RegisterBallotCommand struct {
	Publisher string
	Kind      entities.BallotKind
	Code      string
	Begin     time.Time
	End       time.Time
	InfoURL   string
}

// UnregisterBallotCommand removes a ballot that never opened for voting.
type UnregisterBallotCommand struct {
	Publisher string
	BallotID  uint64
}

// CloseBallotCommand records the caller-supplied result after the window ends.
type CloseBallotCommand struct {
	Publisher string
	BallotID  uint64
	Status    uint8
}

// AdvanceCycleCommand opens a fresh voting round on a proposal ballot.
type AdvanceCycleCommand struct {
	Publisher string
	BallotID  uint64
	Begin     time.Time
	End       time.Time
}

// BallotUseCase owns the ballot registry and kind dispatch. Each method is
// one atomic operation: all preconditions are checked against a single
// logical "now" before any record is written.
type BallotUseCase struct {
	Environments ports.EnvironmentRepository
	Ballots      ports.BallotRepository
	Proposals    ports.ProposalRepository
	Leaderboards ports.LeaderboardRepository
	Weights      ports.WeightSource
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc BallotUseCase) RegisterBallot(ctx context.Context, cmd RegisterBallotCommand) (entities.Ballot, error) {
	logger := application.ResolveLogger(uc.Logger)
	publisher := strings.TrimSpace(cmd.Publisher)
	if publisher == "" {
		return entities.Ballot{}, domainerrors.ErrNotPublisher
	}
	if !cmd.Begin.Before(cmd.End) {
		return entities.Ballot{}, domainerrors.ErrInvalidWindow
	}
	if cmd.Kind == entities.KindElection {
		return entities.Ballot{}, domainerrors.ErrElectionUnimplemented
	}
	if cmd.Kind != entities.KindProposal && cmd.Kind != entities.KindLeaderboard {
		return entities.Ballot{}, domainerrors.ErrInvalidKind
	}
	currency, err := uc.Weights.Currency(ctx, strings.TrimSpace(cmd.Code))
	if err != nil {
		return entities.Ballot{}, err
	}

	now := uc.now()
	env, found, err := uc.Environments.GetEnvironment(ctx)
	if err != nil {
		return entities.Ballot{}, err
	}
	if !found {
		env = entities.Environment{Publisher: publisher}
	}
	ballotID := env.NextBallotID()
	env.UpdatedAt = now

	switch cmd.Kind {
	case entities.KindProposal:
		env.TotalProposals++
		proposal := entities.Proposal{
			ID:           ballotID,
			Publisher:    publisher,
			InfoURL:      strings.TrimSpace(cmd.InfoURL),
			NoCount:      entities.ZeroWeight(currency.Code, currency.Precision),
			YesCount:     entities.ZeroWeight(currency.Code, currency.Precision),
			AbstainCount: entities.ZeroWeight(currency.Code, currency.Precision),
			Begin:        cmd.Begin.UTC(),
			End:          cmd.End.UTC(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
			return entities.Ballot{}, err
		}
	case entities.KindLeaderboard:
		env.TotalLeaderboards++
		leaderboard := entities.Leaderboard{
			ID:        ballotID,
			Publisher: publisher,
			InfoURL:   strings.TrimSpace(cmd.InfoURL),
			Code:      currency.Code,
			Precision: currency.Precision,
			Begin:     cmd.Begin.UTC(),
			End:       cmd.End.UTC(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.Leaderboards.SaveLeaderboard(ctx, leaderboard); err != nil {
			return entities.Ballot{}, err
		}
	}

	ballot := entities.Ballot{BallotID: ballotID, Kind: cmd.Kind, ReferenceID: ballotID}
	if err := uc.Ballots.SaveBallot(ctx, ballot); err != nil {
		return entities.Ballot{}, err
	}
	if err := uc.Environments.SaveEnvironment(ctx, env); err != nil {
		return entities.Ballot{}, err
	}
	if err := uc.appendBallotEvent(ctx, "ballot.registered", ballotID, now, map[string]any{
		"ballot_id": ballotID,
		"kind":      cmd.Kind.String(),
		"code":      currency.Code,
		"publisher": publisher,
		"begin":     cmd.Begin.UTC(),
		"end":       cmd.End.UTC(),
	}); err != nil {
		return entities.Ballot{}, err
	}
	logger.Info("ballot registered",
		"event", "ballot_registered",
		"module", "governance-core/ballot-engine",
		"layer", "application",
		"ballot_id", ballotID,
		"kind", cmd.Kind.String(),
		"code", currency.Code,
	)
	return ballot, nil
}

func (uc BallotUseCase) UnregisterBallot(ctx context.Context, cmd UnregisterBallotCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	ballot, err := uc.Ballots.GetBallot(ctx, cmd.BallotID)
	if err != nil {
		return err
	}
	now := uc.now()

	switch ballot.Kind {
	case entities.KindProposal:
		proposal, err := uc.Proposals.GetProposal(ctx, ballot.ReferenceID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(proposal.Publisher, strings.TrimSpace(cmd.Publisher)) {
			return domainerrors.ErrNotPublisher
		}
		if !now.Before(proposal.Begin) {
			return domainerrors.ErrBallotStarted
		}
		if proposal.CycleCount != 0 {
			return domainerrors.ErrCycleAdvanced
		}
		if err := uc.Proposals.DeleteProposal(ctx, ballot.ReferenceID); err != nil {
			return err
		}
	case entities.KindLeaderboard:
		leaderboard, err := uc.Leaderboards.GetLeaderboard(ctx, ballot.ReferenceID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(leaderboard.Publisher, strings.TrimSpace(cmd.Publisher)) {
			return domainerrors.ErrNotPublisher
		}
		if !now.Before(leaderboard.Begin) {
			return domainerrors.ErrBallotStarted
		}
		if err := uc.Leaderboards.DeleteLeaderboard(ctx, ballot.ReferenceID); err != nil {
			return err
		}
	default:
		return domainerrors.ErrElectionUnimplemented
	}

	if err := uc.Ballots.DeleteBallot(ctx, ballot.BallotID); err != nil {
		return err
	}
	env, found, err := uc.Environments.GetEnvironment(ctx)
	if err != nil {
		return err
	}
	if found {
		switch ballot.Kind {
		case entities.KindProposal:
			if env.TotalProposals > 0 {
				env.TotalProposals--
			}
		case entities.KindLeaderboard:
			if env.TotalLeaderboards > 0 {
				env.TotalLeaderboards--
			}
		}
		env.UpdatedAt = now
		if err := uc.Environments.SaveEnvironment(ctx, env); err != nil {
			return err
		}
	}
	logger.Info("ballot unregistered",
		"event", "ballot_unregistered",
		"module", "governance-core/ballot-engine",
		"layer", "application",
		"ballot_id", ballot.BallotID,
		"kind", ballot.Kind.String(),
	)
	return nil
}

func (uc BallotUseCase) CloseBallot(ctx context.Context, cmd CloseBallotCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	ballot, err := uc.Ballots.GetBallot(ctx, cmd.BallotID)
	if err != nil {
		return err
	}
	now := uc.now()

	switch ballot.Kind {
	case entities.KindProposal:
		proposal, err := uc.Proposals.GetProposal(ctx, ballot.ReferenceID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(proposal.Publisher, strings.TrimSpace(cmd.Publisher)) {
			return domainerrors.ErrNotPublisher
		}
		if !now.After(proposal.End) {
			return domainerrors.ErrVotingStillOpen
		}
		if cmd.Status != entities.ProposalStatusPass && cmd.Status != entities.ProposalStatusFail {
			return domainerrors.ErrInvalidStatus
		}
		proposal.Status = cmd.Status
		proposal.UpdatedAt = now
		if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
			return err
		}
	case entities.KindLeaderboard:
		leaderboard, err := uc.Leaderboards.GetLeaderboard(ctx, ballot.ReferenceID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(leaderboard.Publisher, strings.TrimSpace(cmd.Publisher)) {
			return domainerrors.ErrNotPublisher
		}
		if !now.After(leaderboard.End) {
			return domainerrors.ErrVotingStillOpen
		}
		// Leaderboards record the same pass/fail result codes as proposals.
		if cmd.Status != entities.ProposalStatusPass && cmd.Status != entities.ProposalStatusFail {
			return domainerrors.ErrInvalidStatus
		}
		leaderboard.Status = cmd.Status
		leaderboard.UpdatedAt = now
		if err := uc.Leaderboards.SaveLeaderboard(ctx, leaderboard); err != nil {
			return err
		}
	default:
		return domainerrors.ErrElectionUnimplemented
	}

	if err := uc.appendBallotEvent(ctx, "ballot.closed", ballot.BallotID, now, map[string]any{
		"ballot_id": ballot.BallotID,
		"kind":      ballot.Kind.String(),
		"status":    cmd.Status,
	}); err != nil {
		return err
	}
	logger.Info("ballot closed",
		"event", "ballot_closed",
		"module", "governance-core/ballot-engine",
		"layer", "application",
		"ballot_id", ballot.BallotID,
		"status", cmd.Status,
	)
	return nil
}

func (uc BallotUseCase) AdvanceCycle(ctx context.Context, cmd AdvanceCycleCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	ballot, err := uc.Ballots.GetBallot(ctx, cmd.BallotID)
	if err != nil {
		return err
	}
	if ballot.Kind != entities.KindProposal {
		return domainerrors.ErrCycleNotSupported
	}
	if !cmd.Begin.Before(cmd.End) {
		return domainerrors.ErrInvalidWindow
	}
	proposal, err := uc.Proposals.GetProposal(ctx, ballot.ReferenceID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(proposal.Publisher, strings.TrimSpace(cmd.Publisher)) {
		return domainerrors.ErrNotPublisher
	}
	now := uc.now()
	if proposal.WindowOpen(now) {
		return domainerrors.ErrVotingStillOpen
	}

	proposal.ResetForCycle(cmd.Begin.UTC(), cmd.End.UTC())
	proposal.UpdatedAt = now
	if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
		return err
	}
	if err := uc.appendBallotEvent(ctx, "ballot.cycled", ballot.BallotID, now, map[string]any{
		"ballot_id": ballot.BallotID,
		"cycle":     proposal.CycleCount,
		"begin":     proposal.Begin,
		"end":       proposal.End,
	}); err != nil {
		return err
	}
	logger.Info("proposal cycle advanced",
		"event", "ballot_cycle_advanced",
		"module", "governance-core/ballot-engine",
		"layer", "application",
		"ballot_id", ballot.BallotID,
		"cycle", proposal.CycleCount,
	)
	return nil
}

func (uc BallotUseCase) appendBallotEvent(
	ctx context.Context,
	eventType string,
	ballotID uint64,
	occurredAt time.Time,
	data map[string]any,
) error {
	// Outbox is optional for pure in-memory/test wiring, so nil is a no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newBallotEnvelope(eventID, eventType, ballotID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc BallotUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
