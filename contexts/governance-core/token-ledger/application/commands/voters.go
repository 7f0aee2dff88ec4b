package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotcore/contexts/governance-core/token-ledger/application"
	"ballotcore/contexts/governance-core/token-ledger/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/token-ledger/domain/errors"
	"ballotcore/contexts/governance-core/token-ledger/ports"
)

// RegisterVoterCommand opens a zero balance for a voter in one currency.
type RegisterVoterCommand struct {
	Voter string
	Code  string
}

// UnregisterVoterCommand closes a voter's balance and retires any remaining
// weight from circulating supply.
type UnregisterVoterCommand struct {
	Voter string
	Code  string
}

// MirrorcastCommand converts a voter's external stake into ledger weight,
// discounted by the current decayed counterbalance.
type MirrorcastCommand struct {
	Voter string
	Code  string
}

// VoterUseCase owns voter lifecycle and stake mirroring.
type VoterUseCase struct {
	Registries ports.RegistryRepository
	Balances   ports.BalanceRepository
	Counters   ports.CounterbalanceRepository
	Stake      ports.StakeSource
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc VoterUseCase) RegisterVoter(ctx context.Context, cmd RegisterVoterCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.Voter)
	if voter == "" {
		return domainerrors.ErrInvalidQuantity
	}
	now := uc.now()
	registry, err := uc.Registries.GetRegistry(ctx, strings.TrimSpace(cmd.Code))
	if err != nil {
		return err
	}
	if _, found, err := uc.Balances.GetBalance(ctx, registry.Code, voter); err != nil {
		return err
	} else if found {
		return domainerrors.ErrVoterExists
	}

	balance := entities.Balance{
		Voter:     voter,
		Quantity:  entities.ZeroWeight(registry.Code, registry.Precision),
		UpdatedAt: now,
	}
	if err := uc.Balances.SaveBalance(ctx, registry.Code, balance); err != nil {
		return err
	}
	registry.TotalVoters++
	registry.UpdatedAt = now
	if err := uc.Registries.SaveRegistry(ctx, registry); err != nil {
		return err
	}
	logger.Info("voter registered",
		"event", "ledger_voter_registered",
		"module", "governance-core/token-ledger",
		"layer", "application",
		"code", registry.Code,
		"voter", voter,
	)
	return uc.appendVoterEvent(ctx, "voter.registered", registry.Code, voter, now)
}

func (uc VoterUseCase) UnregisterVoter(ctx context.Context, cmd UnregisterVoterCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.Voter)
	now := uc.now()
	registry, err := uc.Registries.GetRegistry(ctx, strings.TrimSpace(cmd.Code))
	if err != nil {
		return err
	}
	balance, found, err := uc.Balances.GetBalance(ctx, registry.Code, voter)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrBalanceNotFound
	}

	// A non-empty balance leaves circulating supply, which is a burn and so
	// requires the burnable gate.
	if balance.Quantity.IsPositive() {
		if !registry.Settings.Burnable {
			return domainerrors.ErrNotBurnable
		}
		registry.Supply.Amount -= balance.Quantity.Amount
	}
	if err := uc.Balances.DeleteBalance(ctx, registry.Code, voter); err != nil {
		return err
	}
	if registry.TotalVoters > 0 {
		registry.TotalVoters--
	}
	registry.UpdatedAt = now
	if err := uc.Registries.SaveRegistry(ctx, registry); err != nil {
		return err
	}
	logger.Info("voter unregistered",
		"event", "ledger_voter_unregistered",
		"module", "governance-core/token-ledger",
		"layer", "application",
		"code", registry.Code,
		"voter", voter,
		"retired", balance.Quantity.Amount,
	)
	return uc.appendVoterEvent(ctx, "voter.unregistered", registry.Code, voter, now)
}

func (uc VoterUseCase) Mirrorcast(ctx context.Context, cmd MirrorcastCommand) (entities.WeightQuantity, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.Voter)
	now := uc.now()
	registry, err := uc.Registries.GetRegistry(ctx, strings.TrimSpace(cmd.Code))
	if err != nil {
		return entities.WeightQuantity{}, err
	}
	balance, found, err := uc.Balances.GetBalance(ctx, registry.Code, voter)
	if err != nil {
		return entities.WeightQuantity{}, err
	}
	if !found {
		return entities.WeightQuantity{}, domainerrors.ErrBalanceNotFound
	}

	staked, err := uc.Stake.StakedWeight(ctx, voter, registry.Code, registry.Precision)
	if err != nil {
		return entities.WeightQuantity{}, err
	}

	counter, haveCounter, err := uc.Counters.GetCounterbalance(ctx, registry.Code, voter)
	if err != nil {
		return entities.WeightQuantity{}, err
	}
	if !haveCounter {
		counter = entities.NewCounterbalance(voter, registry.Code, registry.Precision, now)
	}
	decayed := counter.DecayedAt(now, registry.Settings.CounterbalanceDecayRate)

	weight := entities.NewWeightQuantity(staked-decayed.Amount, registry.Code, registry.Precision).FloorZero()
	delta := weight.Amount - balance.Quantity.Amount
	supply := registry.Supply.Amount + delta
	if supply > registry.MaxSupply.Amount {
		return entities.WeightQuantity{}, domainerrors.ErrSupplyCapExceeded
	}
	if supply < 0 {
		supply = 0
	}

	balance.Quantity = weight
	balance.UpdatedAt = now
	if err := uc.Balances.SaveBalance(ctx, registry.Code, balance); err != nil {
		return entities.WeightQuantity{}, err
	}

	// Weight conversion counts as a counterbalance touch: decay settles into
	// the stored amount and the decay clock restarts.
	counter = counter.Touch(now, registry.Settings.CounterbalanceDecayRate, 0)
	if err := uc.Counters.SaveCounterbalance(ctx, counter); err != nil {
		return entities.WeightQuantity{}, err
	}

	registry.Supply.Amount = supply
	registry.UpdatedAt = now
	if err := uc.Registries.SaveRegistry(ctx, registry); err != nil {
		return entities.WeightQuantity{}, err
	}
	logger.Info("stake mirrored",
		"event", "ledger_stake_mirrored",
		"module", "governance-core/token-ledger",
		"layer", "application",
		"code", registry.Code,
		"voter", voter,
		"staked", staked,
		"counterbalance", decayed.Amount,
		"weight", weight.Amount,
	)
	return weight, nil
}

func (uc VoterUseCase) appendVoterEvent(
	ctx context.Context,
	eventType string,
	code string,
	voter string,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLedgerEnvelope(eventID, eventType, code, occurredAt, map[string]any{
		"voter": voter,
		"code":  code,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc VoterUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
