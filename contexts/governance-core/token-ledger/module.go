package tokenledger

import (
	"log/slog"

	httpadapter "ballotcore/contexts/governance-core/token-ledger/adapters/http"
	"ballotcore/contexts/governance-core/token-ledger/adapters/memory"
	"ballotcore/contexts/governance-core/token-ledger/application/commands"
	"ballotcore/contexts/governance-core/token-ledger/application/queries"
	"ballotcore/contexts/governance-core/token-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Registries ports.RegistryRepository
	Balances   ports.BalanceRepository
	Airgrabs   ports.AirgrabRepository
	Counters   ports.CounterbalanceRepository
	Stake      ports.StakeSource
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	registryUseCase := commands.RegistryUseCase{
		Registries: deps.Registries,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	ledgerUseCase := commands.LedgerUseCase{
		Registries: deps.Registries,
		Balances:   deps.Balances,
		Airgrabs:   deps.Airgrabs,
		Counters:   deps.Counters,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	voterUseCase := commands.VoterUseCase{
		Registries: deps.Registries,
		Balances:   deps.Balances,
		Counters:   deps.Counters,
		Stake:      deps.Stake,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	queryUseCase := queries.LedgerQueryUseCase{
		Registries: deps.Registries,
		Balances:   deps.Balances,
		Airgrabs:   deps.Airgrabs,
		Counters:   deps.Counters,
		Clock:      deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Registry: registryUseCase,
			Ledger:   ledgerUseCase,
			Voters:   voterUseCase,
			Queries:  queryUseCase,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Registries: store,
		Balances:   store,
		Airgrabs:   store,
		Counters:   store,
		Stake:      store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
