package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	balloterrors "ballotcore/contexts/governance-core/ballot-engine/domain/errors"
	ballothttp "ballotcore/contexts/governance-core/ballot-engine/transport/http"
)

func (s *Server) handleRegisterBallot(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requireBallotPrincipal(w, r)
	if !ok {
		return
	}
	var req ballothttp.RegisterBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballots.Handler.RegisterBallotHandler(r.Context(), publisher, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetBallot(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := parseBallotID(w, r)
	if !ok {
		return
	}
	resp, err := s.ballots.Handler.BallotHandler(r.Context(), ballotID)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnregisterBallot(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requireBallotPrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := parseBallotID(w, r)
	if !ok {
		return
	}
	if err := s.ballots.Handler.UnregisterBallotHandler(r.Context(), publisher, ballotID); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCloseBallot(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requireBallotPrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := parseBallotID(w, r)
	if !ok {
		return
	}
	var req ballothttp.CloseBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ballots.Handler.CloseBallotHandler(r.Context(), publisher, ballotID, req); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdvanceCycle(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requireBallotPrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := parseBallotID(w, r)
	if !ok {
		return
	}
	var req ballothttp.AdvanceCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ballots.Handler.AdvanceCycleHandler(r.Context(), publisher, ballotID, req); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	voter, ok := requireBallotPrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := parseBallotID(w, r)
	if !ok {
		return
	}
	var req ballothttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ballots.Handler.CastVoteHandler(r.Context(), voter, ballotID, req); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddCandidate(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requireBallotPrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := parseBallotID(w, r)
	if !ok {
		return
	}
	var req ballothttp.CandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ballots.Handler.AddCandidateHandler(r.Context(), publisher, ballotID, req); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleReplaceCandidates(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requireBallotPrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := parseBallotID(w, r)
	if !ok {
		return
	}
	var req ballothttp.ReplaceCandidatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ballots.Handler.ReplaceCandidatesHandler(r.Context(), publisher, ballotID, req); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetCandidateStatuses(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requireBallotPrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := parseBallotID(w, r)
	if !ok {
		return
	}
	var req ballothttp.CandidateStatusesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ballots.Handler.SetCandidateStatusesHandler(r.Context(), publisher, ballotID, req); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveCandidate(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requireBallotPrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := parseBallotID(w, r)
	if !ok {
		return
	}
	member := r.PathValue("member")
	if err := s.ballots.Handler.RemoveCandidateHandler(r.Context(), publisher, ballotID, member); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetSeatCount(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requireBallotPrincipal(w, r)
	if !ok {
		return
	}
	ballotID, ok := parseBallotID(w, r)
	if !ok {
		return
	}
	var req ballothttp.SeatCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ballots.Handler.SetSeatCountHandler(r.Context(), publisher, ballotID, req); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePruneReceipts(w http.ResponseWriter, r *http.Request) {
	var req ballothttp.PruneReceiptsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballots.Handler.PruneReceiptsHandler(r.Context(), r.PathValue("voter"), req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoterReceipts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitRaw := r.URL.Query().Get("limit"); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeBallotError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	resp, err := s.ballots.Handler.VoterReceiptsHandler(r.Context(), r.PathValue("voter"), limit)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireBallotPrincipal(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if principal == "" {
		writeBallotError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return principal, true
}

func parseBallotID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	ballotID, err := strconv.ParseUint(r.PathValue("ballot_id"), 10, 64)
	if err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_ballot_id", "ballot_id must be an unsigned integer")
		return 0, false
	}
	return ballotID, true
}

func writeBallotDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, balloterrors.ErrBallotNotFound),
		errors.Is(err, balloterrors.ErrCandidateNotFound),
		errors.Is(err, balloterrors.ErrReceiptNotFound),
		errors.Is(err, balloterrors.ErrCurrencyUnknown):
		writeBallotError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, balloterrors.ErrNotPublisher):
		writeBallotError(w, http.StatusForbidden, "not_publisher", err.Error())
	case errors.Is(err, balloterrors.ErrElectionUnimplemented):
		writeBallotError(w, http.StatusNotImplemented, "unimplemented_kind", err.Error())
	case errors.Is(err, balloterrors.ErrInvalidWindow),
		errors.Is(err, balloterrors.ErrInvalidKind),
		errors.Is(err, balloterrors.ErrInvalidDirection),
		errors.Is(err, balloterrors.ErrInvalidStatus):
		writeBallotError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, balloterrors.ErrVotingNotOpen),
		errors.Is(err, balloterrors.ErrVotingStillOpen),
		errors.Is(err, balloterrors.ErrBallotStarted),
		errors.Is(err, balloterrors.ErrCycleAdvanced),
		errors.Is(err, balloterrors.ErrCycleNotSupported),
		errors.Is(err, balloterrors.ErrRecastDisabled),
		errors.Is(err, balloterrors.ErrCandidateExists),
		errors.Is(err, balloterrors.ErrCandidateChosen),
		errors.Is(err, balloterrors.ErrConflict):
		writeBallotError(w, http.StatusConflict, "state_conflict", err.Error())
	case errors.Is(err, balloterrors.ErrNoVoteWeight):
		writeBallotError(w, http.StatusUnprocessableEntity, "no_vote_weight", err.Error())
	default:
		writeBallotError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeBallotError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ballothttp.ErrorResponse{Code: code, Message: message})
}
