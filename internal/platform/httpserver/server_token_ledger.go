package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	ledgererrors "ballotcore/contexts/governance-core/token-ledger/domain/errors"
	ledgerhttp "ballotcore/contexts/governance-core/token-ledger/transport/http"
)

func (s *Server) handleRegisterCurrency(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.RegisterCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.RegisterCurrencyHandler(r.Context(), publisher, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetRegistry(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.RegistryHandler(r.Context(), r.PathValue("code"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInitSettings(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ledger.Handler.InitSettingsHandler(r.Context(), publisher, r.PathValue("code"), req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnregisterCurrency(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := s.ledger.Handler.UnregisterCurrencyHandler(r.Context(), publisher, r.PathValue("code")); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	code := r.PathValue("code")
	registry, err := s.ledger.Handler.RegistryHandler(r.Context(), code)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if err := s.ledger.Handler.IssueHandler(r.Context(), publisher, code, registry.Precision, req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClaimAirgrab(w http.ResponseWriter, r *http.Request) {
	claimant, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.ClaimAirgrabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ledger.Handler.ClaimAirgrabHandler(r.Context(), claimant, r.PathValue("code"), req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	owner, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.BurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	code := r.PathValue("code")
	registry, err := s.ledger.Handler.RegistryHandler(r.Context(), code)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if err := s.ledger.Handler.BurnHandler(r.Context(), owner, code, registry.Precision, req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeize(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.SeizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	code := r.PathValue("code")
	registry, err := s.ledger.Handler.RegistryHandler(r.Context(), code)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if err := s.ledger.Handler.SeizeHandler(r.Context(), publisher, code, registry.Precision, req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdjustMax(w http.ResponseWriter, r *http.Request) {
	publisher, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.AdjustMaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	code := r.PathValue("code")
	registry, err := s.ledger.Handler.RegistryHandler(r.Context(), code)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if err := s.ledger.Handler.AdjustMaxHandler(r.Context(), publisher, code, registry.Precision, req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	sender, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	registry, err := s.ledger.Handler.RegistryHandler(r.Context(), req.Code)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if err := s.ledger.Handler.TransferHandler(r.Context(), sender, registry.Precision, req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegisterVoter(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.RegisterVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Voter) == "" {
		req.Voter = strings.TrimSpace(r.Header.Get("X-User-Id"))
	}
	if err := s.ledger.Handler.RegisterVoterHandler(r.Context(), req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleUnregisterVoter(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if strings.TrimSpace(code) == "" {
		writeLedgerError(w, http.StatusBadRequest, "missing_code", "code query parameter is required")
		return
	}
	if err := s.ledger.Handler.UnregisterVoterHandler(r.Context(), r.PathValue("voter"), code); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMirrorcast(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if strings.TrimSpace(code) == "" {
		writeLedgerError(w, http.StatusBadRequest, "missing_code", "code query parameter is required")
		return
	}
	resp, err := s.ledger.Handler.MirrorcastHandler(r.Context(), r.PathValue("voter"), code)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if strings.TrimSpace(code) == "" {
		writeLedgerError(w, http.StatusBadRequest, "missing_code", "code query parameter is required")
		return
	}
	resp, err := s.ledger.Handler.BalanceHandler(r.Context(), code, r.PathValue("voter"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCounterbalance(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if strings.TrimSpace(code) == "" {
		writeLedgerError(w, http.StatusBadRequest, "missing_code", "code query parameter is required")
		return
	}
	resp, err := s.ledger.Handler.CounterbalanceHandler(r.Context(), code, r.PathValue("voter"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requirePrincipal(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if principal == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return principal, true
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrRegistryNotFound),
		errors.Is(err, ledgererrors.ErrBalanceNotFound),
		errors.Is(err, ledgererrors.ErrAirgrabNotFound):
		writeLedgerError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrNotPublisher):
		writeLedgerError(w, http.StatusForbidden, "not_publisher", err.Error())
	case errors.Is(err, ledgererrors.ErrRegistryExists),
		errors.Is(err, ledgererrors.ErrVoterExists),
		errors.Is(err, ledgererrors.ErrConflict):
		writeLedgerError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, ledgererrors.ErrSettingsLocked),
		errors.Is(err, ledgererrors.ErrNotDestructible),
		errors.Is(err, ledgererrors.ErrNotBurnable),
		errors.Is(err, ledgererrors.ErrNotSeizable),
		errors.Is(err, ledgererrors.ErrMaxImmutable),
		errors.Is(err, ledgererrors.ErrNotTransferable):
		writeLedgerError(w, http.StatusConflict, "setting_disabled", err.Error())
	case errors.Is(err, ledgererrors.ErrSupplyCapExceeded),
		errors.Is(err, ledgererrors.ErrMaxBelowSupply),
		errors.Is(err, ledgererrors.ErrInsufficientFunds):
		writeLedgerError(w, http.StatusConflict, "integrity_violation", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidQuantity),
		errors.Is(err, ledgererrors.ErrCurrencyMismatch),
		errors.Is(err, ledgererrors.ErrZeroDecayRate),
		errors.Is(err, ledgererrors.ErrSelfTransfer):
		writeLedgerError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{Code: code, Message: message})
}
