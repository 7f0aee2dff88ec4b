package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	ballotengine "ballotcore/contexts/governance-core/ballot-engine"
	tokenledger "ballotcore/contexts/governance-core/token-ledger"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "ballotcore/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	ledger  tokenledger.Module
	ballots ballotengine.Module
}

func New(
	ledger tokenledger.Module,
	ballots ballotengine.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		ledger:  ledger,
		ballots: ballots,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/ledger/v1/registries", s.handleRegisterCurrency)
	s.mux.HandleFunc("GET /api/ledger/v1/registries/{code}", s.handleGetRegistry)
	s.mux.HandleFunc("PUT /api/ledger/v1/registries/{code}/settings", s.handleInitSettings)
	s.mux.HandleFunc("DELETE /api/ledger/v1/registries/{code}", s.handleUnregisterCurrency)
	s.mux.HandleFunc("POST /api/ledger/v1/registries/{code}/issue", s.handleIssue)
	s.mux.HandleFunc("POST /api/ledger/v1/registries/{code}/claim", s.handleClaimAirgrab)
	s.mux.HandleFunc("POST /api/ledger/v1/registries/{code}/burn", s.handleBurn)
	s.mux.HandleFunc("POST /api/ledger/v1/registries/{code}/seize", s.handleSeize)
	s.mux.HandleFunc("POST /api/ledger/v1/registries/{code}/max", s.handleAdjustMax)
	s.mux.HandleFunc("POST /api/ledger/v1/transfers", s.handleTransfer)
	s.mux.HandleFunc("POST /api/ledger/v1/voters", s.handleRegisterVoter)
	s.mux.HandleFunc("DELETE /api/ledger/v1/voters/{voter}", s.handleUnregisterVoter)
	s.mux.HandleFunc("POST /api/ledger/v1/voters/{voter}/mirrorcast", s.handleMirrorcast)
	s.mux.HandleFunc("GET /api/ledger/v1/balances/{voter}", s.handleGetBalance)
	s.mux.HandleFunc("GET /api/ledger/v1/counterbalances/{voter}", s.handleGetCounterbalance)

	s.mux.HandleFunc("POST /api/ballots/v1/ballots", s.handleRegisterBallot)
	s.mux.HandleFunc("GET /api/ballots/v1/ballots/{ballot_id}", s.handleGetBallot)
	s.mux.HandleFunc("DELETE /api/ballots/v1/ballots/{ballot_id}", s.handleUnregisterBallot)
	s.mux.HandleFunc("POST /api/ballots/v1/ballots/{ballot_id}/close", s.handleCloseBallot)
	s.mux.HandleFunc("POST /api/ballots/v1/ballots/{ballot_id}/cycle", s.handleAdvanceCycle)
	s.mux.HandleFunc("POST /api/ballots/v1/ballots/{ballot_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /api/ballots/v1/ballots/{ballot_id}/candidates", s.handleAddCandidate)
	s.mux.HandleFunc("PUT /api/ballots/v1/ballots/{ballot_id}/candidates", s.handleReplaceCandidates)
	s.mux.HandleFunc("PUT /api/ballots/v1/ballots/{ballot_id}/candidates/status", s.handleSetCandidateStatuses)
	s.mux.HandleFunc("DELETE /api/ballots/v1/ballots/{ballot_id}/candidates/{member}", s.handleRemoveCandidate)
	s.mux.HandleFunc("PUT /api/ballots/v1/ballots/{ballot_id}/seats", s.handleSetSeatCount)
	s.mux.HandleFunc("POST /api/ballots/v1/voters/{voter}/prune", s.handlePruneReceipts)
	s.mux.HandleFunc("GET /api/ballots/v1/voters/{voter}/receipts", s.handleVoterReceipts)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
