package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"ballotcore/contexts/governance-core/ballot-engine/application/commands"
	"ballotcore/contexts/governance-core/ballot-engine/application/queries"
	"ballotcore/contexts/governance-core/ballot-engine/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/ballot-engine/domain/errors"
	httptransport "ballotcore/contexts/governance-core/ballot-engine/transport/http"
)

type Handler struct {
	Ballots    commands.BallotUseCase
	Candidates commands.CandidateUseCase
	Voting     commands.VotingUseCase
	Queries    queries.BallotQueryUseCase
	Logger     *slog.Logger
}

func (h Handler) RegisterBallotHandler(
	ctx context.Context,
	publisher string,
	req httptransport.RegisterBallotRequest,
) (httptransport.BallotResponse, error) {
	kind, ok := entities.ParseBallotKind(strings.TrimSpace(req.Kind))
	if !ok {
		return httptransport.BallotResponse{}, domainerrors.ErrInvalidKind
	}
	ballot, err := h.Ballots.RegisterBallot(ctx, commands.RegisterBallotCommand{
		Publisher: publisher,
		Kind:      kind,
		Code:      req.Code,
		Begin:     req.Begin,
		End:       req.End,
		InfoURL:   req.InfoURL,
	})
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return httptransport.BallotResponse{
		BallotID: ballot.BallotID,
		Kind:     ballot.Kind.String(),
	}, nil
}

func (h Handler) UnregisterBallotHandler(ctx context.Context, publisher string, ballotID uint64) error {
	return h.Ballots.UnregisterBallot(ctx, commands.UnregisterBallotCommand{
		Publisher: publisher,
		BallotID:  ballotID,
	})
}

func (h Handler) CloseBallotHandler(
	ctx context.Context,
	publisher string,
	ballotID uint64,
	req httptransport.CloseBallotRequest,
) error {
	return h.Ballots.CloseBallot(ctx, commands.CloseBallotCommand{
		Publisher: publisher,
		BallotID:  ballotID,
		Status:    req.Status,
	})
}

func (h Handler) AdvanceCycleHandler(
	ctx context.Context,
	publisher string,
	ballotID uint64,
	req httptransport.AdvanceCycleRequest,
) error {
	return h.Ballots.AdvanceCycle(ctx, commands.AdvanceCycleCommand{
		Publisher: publisher,
		BallotID:  ballotID,
		Begin:     req.Begin,
		End:       req.End,
	})
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	voter string,
	ballotID uint64,
	req httptransport.CastVoteRequest,
) error {
	return h.Voting.CastVote(ctx, commands.CastVoteCommand{
		Voter:     voter,
		BallotID:  ballotID,
		Direction: req.Direction,
	})
}

func (h Handler) AddCandidateHandler(
	ctx context.Context,
	publisher string,
	ballotID uint64,
	req httptransport.CandidateRequest,
) error {
	return h.Candidates.AddCandidate(ctx, commands.AddCandidateCommand{
		Publisher: publisher,
		BallotID:  ballotID,
		Member:    req.Member,
		InfoLink:  req.InfoLink,
	})
}

func (h Handler) RemoveCandidateHandler(ctx context.Context, publisher string, ballotID uint64, member string) error {
	return h.Candidates.RemoveCandidate(ctx, commands.RemoveCandidateCommand{
		Publisher: publisher,
		BallotID:  ballotID,
		Member:    member,
	})
}

func (h Handler) ReplaceCandidatesHandler(
	ctx context.Context,
	publisher string,
	ballotID uint64,
	req httptransport.ReplaceCandidatesRequest,
) error {
	candidates := make([]entities.Candidate, 0, len(req.Candidates))
	for _, candidate := range req.Candidates {
		candidates = append(candidates, entities.Candidate{
			Member:   candidate.Member,
			InfoLink: candidate.InfoLink,
		})
	}
	return h.Candidates.ReplaceAllCandidates(ctx, commands.ReplaceCandidatesCommand{
		Publisher:  publisher,
		BallotID:   ballotID,
		Candidates: candidates,
	})
}

func (h Handler) SetCandidateStatusesHandler(
	ctx context.Context,
	publisher string,
	ballotID uint64,
	req httptransport.CandidateStatusesRequest,
) error {
	return h.Candidates.SetAllCandidateStatuses(ctx, commands.SetCandidateStatusesCommand{
		Publisher: publisher,
		BallotID:  ballotID,
		Statuses:  req.Statuses,
	})
}

func (h Handler) SetSeatCountHandler(
	ctx context.Context,
	publisher string,
	ballotID uint64,
	req httptransport.SeatCountRequest,
) error {
	return h.Candidates.SetSeatCount(ctx, commands.SetSeatCountCommand{
		Publisher: publisher,
		BallotID:  ballotID,
		Seats:     req.Seats,
	})
}

func (h Handler) PruneReceiptsHandler(
	ctx context.Context,
	voter string,
	req httptransport.PruneReceiptsRequest,
) (httptransport.PruneReceiptsResponse, error) {
	pruned, err := h.Voting.PruneReceipts(ctx, commands.PruneReceiptsCommand{
		Voter:    voter,
		MaxCount: req.MaxCount,
	})
	if err != nil {
		return httptransport.PruneReceiptsResponse{}, err
	}
	return httptransport.PruneReceiptsResponse{Pruned: pruned}, nil
}

func (h Handler) BallotHandler(ctx context.Context, ballotID uint64) (httptransport.BallotViewResponse, error) {
	view, err := h.Queries.Ballot(ctx, ballotID)
	if err != nil {
		return httptransport.BallotViewResponse{}, err
	}
	response := httptransport.BallotViewResponse{
		BallotID: view.Ballot.BallotID,
		Kind:     view.Ballot.Kind.String(),
	}
	if view.Proposal != nil {
		response.Proposal = &httptransport.ProposalResponse{
			ID:           view.Proposal.ID,
			Publisher:    view.Proposal.Publisher,
			InfoURL:      view.Proposal.InfoURL,
			Code:         view.Proposal.YesCount.Code,
			NoCount:      view.Proposal.NoCount.Amount,
			YesCount:     view.Proposal.YesCount.Amount,
			AbstainCount: view.Proposal.AbstainCount.Amount,
			UniqueVoters: view.Proposal.UniqueVoters,
			Begin:        view.Proposal.Begin,
			End:          view.Proposal.End,
			CycleCount:   view.Proposal.CycleCount,
			Status:       view.Proposal.Status,
		}
	}
	if view.Leaderboard != nil {
		candidates := make([]httptransport.CandidateResponse, 0, len(view.Leaderboard.Candidates))
		for _, candidate := range view.Leaderboard.Candidates {
			candidates = append(candidates, httptransport.CandidateResponse{
				Member:   candidate.Member,
				InfoLink: candidate.InfoLink,
				Votes:    candidate.Votes.Amount,
				Status:   candidate.Status,
			})
		}
		response.Leaderboard = &httptransport.LeaderboardResponse{
			ID:             view.Leaderboard.ID,
			Publisher:      view.Leaderboard.Publisher,
			InfoURL:        view.Leaderboard.InfoURL,
			Code:           view.Leaderboard.Code,
			Candidates:     candidates,
			UniqueVoters:   view.Leaderboard.UniqueVoters,
			AvailableSeats: view.Leaderboard.AvailableSeats,
			Begin:          view.Leaderboard.Begin,
			End:            view.Leaderboard.End,
			Status:         view.Leaderboard.Status,
		}
	}
	return response, nil
}

func (h Handler) VoterReceiptsHandler(ctx context.Context, voter string, limit int) ([]httptransport.ReceiptResponse, error) {
	receipts, err := h.Queries.VoterReceipts(ctx, voter, limit)
	if err != nil {
		return nil, err
	}
	items := make([]httptransport.ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		items = append(items, httptransport.ReceiptResponse{
			BallotID:   receipt.BallotID,
			Directions: receipt.Directions,
			Weight:     receipt.Weight.Amount,
			Code:       receipt.Weight.Code,
			Expiration: receipt.Expiration,
		})
	}
	return items, nil
}
