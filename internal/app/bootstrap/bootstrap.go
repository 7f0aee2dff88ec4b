package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	ballotengine "ballotcore/contexts/governance-core/ballot-engine"
	ballotpostgres "ballotcore/contexts/governance-core/ballot-engine/adapters/postgres"
	ballotcommands "ballotcore/contexts/governance-core/ballot-engine/application/commands"
	ballotworkers "ballotcore/contexts/governance-core/ballot-engine/application/workers"
	balloterrors "ballotcore/contexts/governance-core/ballot-engine/domain/errors"
	ballotports "ballotcore/contexts/governance-core/ballot-engine/ports"
	tokenledger "ballotcore/contexts/governance-core/token-ledger"
	ledgerpostgres "ballotcore/contexts/governance-core/token-ledger/adapters/postgres"
	ledgerworkers "ballotcore/contexts/governance-core/token-ledger/application/workers"
	ledgererrors "ballotcore/contexts/governance-core/token-ledger/domain/errors"
	ledgerports "ballotcore/contexts/governance-core/token-ledger/ports"
	"ballotcore/internal/platform/config"
	"ballotcore/internal/platform/db"
	"ballotcore/internal/platform/httpserver"
	"ballotcore/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	deposits     ledgerworkers.DepositConsumer
	ledgerRelay  ledgerworkers.OutboxRelay
	ballotRelay  ballotworkers.OutboxRelay
	janitor      ballotworkers.ReceiptJanitor
	relayEnabled bool
	janitorOn    bool
	pollInterval time.Duration
	logger       *slog.Logger
}

// ledgerWeightSource adapts token-ledger read models into the ballot engine's
// WeightSource port. The ballot engine never touches ledger entities directly.
type ledgerWeightSource struct {
	registries ledgerports.RegistryRepository
	balances   ledgerports.BalanceRepository
}

func (s ledgerWeightSource) Currency(ctx context.Context, code string) (ballotports.CurrencyInfo, error) {
	registry, err := s.registries.GetRegistry(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, ledgererrors.ErrRegistryNotFound) {
			return ballotports.CurrencyInfo{}, balloterrors.ErrCurrencyUnknown
		}
		return ballotports.CurrencyInfo{}, err
	}
	return ballotports.CurrencyInfo{
		Code:       registry.Code,
		Precision:  registry.Precision,
		Recastable: registry.Settings.Recastable,
	}, nil
}

func (s ledgerWeightSource) VoterWeight(ctx context.Context, voter string, code string) (int64, error) {
	balance, found, err := s.balances.GetBalance(ctx, strings.ToUpper(strings.TrimSpace(code)), strings.TrimSpace(voter))
	if err != nil {
		return 0, err
	}
	if !found || balance.Quantity.Amount <= 0 {
		return 0, balloterrors.ErrNoVoteWeight
	}
	return balance.Quantity.Amount, nil
}

var _ ballotports.WeightSource = ledgerWeightSource{}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	ledgerModule := tokenledger.NewModule(tokenledger.Dependencies{
		Registries: ledgerRepo,
		Balances:   ledgerRepo,
		Airgrabs:   ledgerRepo,
		Counters:   ledgerRepo,
		Stake:      ledgerRepo,
		Outbox:     ledgerRepo,
		Clock:      ledgerpostgres.SystemClock{},
		IDGen:      ledgerpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	ballotRepo := ballotpostgres.NewRepository(pg.DB, logger)
	ballotModule := ballotengine.NewModule(ballotengine.Dependencies{
		Environments: ballotRepo,
		Ballots:      ballotRepo,
		Proposals:    ballotRepo,
		Leaderboards: ballotRepo,
		Receipts:     ballotRepo,
		Weights: ledgerWeightSource{
			registries: ledgerRepo,
			balances:   ledgerRepo,
		},
		Outbox: ballotRepo,
		Clock:  ballotpostgres.SystemClock{},
		IDGen:  ballotpostgres.UUIDGenerator{},
		Logger: logger,
	})

	server := httpserver.New(ledgerModule, ballotModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	ballotRepo := ballotpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		deposits: ledgerworkers.DepositConsumer{
			Subscriber: kafka,
			Dedup:      ledgerRepo,
			Registries: ledgerRepo,
			Counters:   ledgerRepo,
			Clock:      ledgerpostgres.SystemClock{},
			DedupTTL:   7 * 24 * time.Hour,
			Disabled:   !cfg.EnableDepositConsumer,
			Logger:     logger,
		},
		ledgerRelay: ledgerworkers.OutboxRelay{
			Outbox:    ledgerRepo,
			Publisher: kafka,
			Clock:     ledgerpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		ballotRelay: ballotworkers.OutboxRelay{
			Outbox:    ballotRepo,
			Publisher: kafka,
			Clock:     ballotpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		janitor: ballotworkers.ReceiptJanitor{
			Receipts: ballotRepo,
			Voting: ballotcommands.VotingUseCase{
				Receipts: ballotRepo,
				Clock:    ballotpostgres.SystemClock{},
				Logger:   logger,
			},
			Clock:          ballotpostgres.SystemClock{},
			VoterBatchSize: 50,
			PruneLimit:     100,
			Logger:         logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		janitorOn:    cfg.EnableReceiptJanitor,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.deposits.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if w.janitorOn {
			if _, err := w.janitor.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.relayEnabled {
			if err := w.ledgerRelay.RunOnce(ctx); err != nil {
				return err
			}
			if err := w.ballotRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
