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

// AddCandidateCommand appends one candidate before voting opens.
type AddCandidateCommand struct {
	Publisher string
	BallotID  uint64
	Member    string
	InfoLink  string
}

// RemoveCandidateCommand drops one candidate before voting opens.
type RemoveCandidateCommand struct {
	Publisher string
	BallotID  uint64
	Member    string
}

// ReplaceCandidatesCommand rewrites the whole candidate list before voting
// opens.
type ReplaceCandidatesCommand struct {
	Publisher  string
	BallotID   uint64
	Candidates []entities.Candidate
}

// SetCandidateStatusesCommand stamps per-candidate status codes after the
// window closed. Statuses are applied positionally.
type SetCandidateStatusesCommand struct {
	Publisher string
	BallotID  uint64
	Statuses  []uint8
}

// SetSeatCountCommand fixes the number of seats before voting opens.
type SetSeatCountCommand struct {
	Publisher string
	BallotID  uint64
	Seats     uint32
}

// CandidateUseCase owns leaderboard candidate management. List mutations are
// full read-modify-write replacements of the candidate slice.
type CandidateUseCase struct {
	Ballots      ports.BallotRepository
	Leaderboards ports.LeaderboardRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc CandidateUseCase) AddCandidate(ctx context.Context, cmd AddCandidateCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	member := strings.TrimSpace(cmd.Member)
	if member == "" {
		return domainerrors.ErrCandidateNotFound
	}
	now := uc.now()
	leaderboard, err := uc.loadEditable(ctx, cmd.Publisher, cmd.BallotID, now)
	if err != nil {
		return err
	}
	if leaderboard.CandidateIndex(member) >= 0 {
		return domainerrors.ErrCandidateExists
	}
	leaderboard.Candidates = append(leaderboard.Candidates, entities.Candidate{
		Member:   member,
		InfoLink: strings.TrimSpace(cmd.InfoLink),
		Votes:    entities.ZeroWeight(leaderboard.Code, leaderboard.Precision),
	})
	leaderboard.UpdatedAt = now
	if err := uc.Leaderboards.SaveLeaderboard(ctx, leaderboard); err != nil {
		return err
	}
	// Downstream policy modules learn about new candidates through the
	// outbox; the registration itself never waits on them.
	if err := uc.appendCandidateEvent(ctx, "candidate.registered", leaderboard.ID, now, map[string]any{
		"ballot_id": leaderboard.ID,
		"member":    member,
	}); err != nil {
		return err
	}
	logger.Info("candidate added",
		"event", "ballot_candidate_added",
		"module", "governance-core/ballot-engine",
		"layer", "application",
		"ballot_id", leaderboard.ID,
		"member", member,
	)
	return nil
}

func (uc CandidateUseCase) RemoveCandidate(ctx context.Context, cmd RemoveCandidateCommand) error {
	now := uc.now()
	leaderboard, err := uc.loadEditable(ctx, cmd.Publisher, cmd.BallotID, now)
	if err != nil {
		return err
	}
	index := leaderboard.CandidateIndex(strings.TrimSpace(cmd.Member))
	if index < 0 {
		return domainerrors.ErrCandidateNotFound
	}
	leaderboard.Candidates = append(leaderboard.Candidates[:index], leaderboard.Candidates[index+1:]...)
	leaderboard.UpdatedAt = now
	return uc.Leaderboards.SaveLeaderboard(ctx, leaderboard)
}

func (uc CandidateUseCase) ReplaceAllCandidates(ctx context.Context, cmd ReplaceCandidatesCommand) error {
	now := uc.now()
	leaderboard, err := uc.loadEditable(ctx, cmd.Publisher, cmd.BallotID, now)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(cmd.Candidates))
	replacement := make([]entities.Candidate, 0, len(cmd.Candidates))
	for _, candidate := range cmd.Candidates {
		member := strings.TrimSpace(candidate.Member)
		if member == "" {
			return domainerrors.ErrCandidateNotFound
		}
		if _, dup := seen[member]; dup {
			return domainerrors.ErrCandidateExists
		}
		seen[member] = struct{}{}
		replacement = append(replacement, entities.Candidate{
			Member:   member,
			InfoLink: strings.TrimSpace(candidate.InfoLink),
			Votes:    entities.ZeroWeight(leaderboard.Code, leaderboard.Precision),
		})
	}
	leaderboard.Candidates = replacement
	leaderboard.UpdatedAt = now
	return uc.Leaderboards.SaveLeaderboard(ctx, leaderboard)
}

func (uc CandidateUseCase) SetAllCandidateStatuses(ctx context.Context, cmd SetCandidateStatusesCommand) error {
	leaderboard, err := uc.loadOwned(ctx, cmd.Publisher, cmd.BallotID)
	if err != nil {
		return err
	}
	now := uc.now()
	if !now.After(leaderboard.End) {
		return domainerrors.ErrVotingStillOpen
	}
	if len(cmd.Statuses) != len(leaderboard.Candidates) {
		return domainerrors.ErrCandidateNotFound
	}
	for i := range leaderboard.Candidates {
		leaderboard.Candidates[i].Status = cmd.Statuses[i]
	}
	leaderboard.UpdatedAt = now
	return uc.Leaderboards.SaveLeaderboard(ctx, leaderboard)
}

func (uc CandidateUseCase) SetSeatCount(ctx context.Context, cmd SetSeatCountCommand) error {
	now := uc.now()
	leaderboard, err := uc.loadEditable(ctx, cmd.Publisher, cmd.BallotID, now)
	if err != nil {
		return err
	}
	leaderboard.AvailableSeats = cmd.Seats
	leaderboard.UpdatedAt = now
	return uc.Leaderboards.SaveLeaderboard(ctx, leaderboard)
}

// loadOwned resolves a leaderboard ballot and checks the caller owns it.
func (uc CandidateUseCase) loadOwned(ctx context.Context, publisher string, ballotID uint64) (entities.Leaderboard, error) {
	ballot, err := uc.Ballots.GetBallot(ctx, ballotID)
	if err != nil {
		return entities.Leaderboard{}, err
	}
	if ballot.Kind != entities.KindLeaderboard {
		return entities.Leaderboard{}, domainerrors.ErrInvalidKind
	}
	leaderboard, err := uc.Leaderboards.GetLeaderboard(ctx, ballot.ReferenceID)
	if err != nil {
		return entities.Leaderboard{}, err
	}
	if !strings.EqualFold(leaderboard.Publisher, strings.TrimSpace(publisher)) {
		return entities.Leaderboard{}, domainerrors.ErrNotPublisher
	}
	return leaderboard, nil
}

// loadEditable additionally requires the voting window not to have opened.
func (uc CandidateUseCase) loadEditable(
	ctx context.Context,
	publisher string,
	ballotID uint64,
	now time.Time,
) (entities.Leaderboard, error) {
	leaderboard, err := uc.loadOwned(ctx, publisher, ballotID)
	if err != nil {
		return entities.Leaderboard{}, err
	}
	if !now.Before(leaderboard.Begin) {
		return entities.Leaderboard{}, domainerrors.ErrBallotStarted
	}
	return leaderboard, nil
}

func (uc CandidateUseCase) appendCandidateEvent(
	ctx context.Context,
	eventType string,
	ballotID uint64,
	occurredAt time.Time,
	data map[string]any,
) error {
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

func (uc CandidateUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
