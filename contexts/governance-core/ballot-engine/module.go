package ballotengine

import (
	"log/slog"

	httpadapter "ballotcore/contexts/governance-core/ballot-engine/adapters/http"
	"ballotcore/contexts/governance-core/ballot-engine/adapters/memory"
	"ballotcore/contexts/governance-core/ballot-engine/application/commands"
	"ballotcore/contexts/governance-core/ballot-engine/application/queries"
	"ballotcore/contexts/governance-core/ballot-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Environments ports.EnvironmentRepository
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

func NewModule(deps Dependencies) Module {
	ballotUseCase := commands.BallotUseCase{
		Environments: deps.Environments,
		Ballots:      deps.Ballots,
		Proposals:    deps.Proposals,
		Leaderboards: deps.Leaderboards,
		Weights:      deps.Weights,
		Outbox:       deps.Outbox,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	candidateUseCase := commands.CandidateUseCase{
		Ballots:      deps.Ballots,
		Leaderboards: deps.Leaderboards,
		Outbox:       deps.Outbox,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	votingUseCase := commands.VotingUseCase{
		Ballots:      deps.Ballots,
		Proposals:    deps.Proposals,
		Leaderboards: deps.Leaderboards,
		Receipts:     deps.Receipts,
		Weights:      deps.Weights,
		Outbox:       deps.Outbox,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	queryUseCase := queries.BallotQueryUseCase{
		Environments: deps.Environments,
		Ballots:      deps.Ballots,
		Proposals:    deps.Proposals,
		Leaderboards: deps.Leaderboards,
		Receipts:     deps.Receipts,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ballots:    ballotUseCase,
			Candidates: candidateUseCase,
			Voting:     votingUseCase,
			Queries:    queryUseCase,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Environments: store,
		Ballots:      store,
		Proposals:    store,
		Leaderboards: store,
		Receipts:     store,
		Weights:      store,
		Outbox:       store,
		Clock:        store,
		IDGen:        store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
