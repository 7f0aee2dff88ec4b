package queries

import (
	"context"
	"strings"
	"time"

	"ballotcore/contexts/governance-core/token-ledger/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/token-ledger/domain/errors"
	"ballotcore/contexts/governance-core/token-ledger/ports"
)

// CounterbalanceView exposes both the stored and the currently decayed amount
// so callers can see pending decay without a mutation.
type CounterbalanceView struct {
	Voter      string
	Code       string
	Stored     entities.WeightQuantity
	Decayed    entities.WeightQuantity
	Persistent entities.WeightQuantity
	LastDecay  time.Time
}

// LedgerQueryUseCase serves read-only registry/balance lookups.
type LedgerQueryUseCase struct {
	Registries ports.RegistryRepository
	Balances   ports.BalanceRepository
	Airgrabs   ports.AirgrabRepository
	Counters   ports.CounterbalanceRepository
	Clock      ports.Clock
}

func (uc LedgerQueryUseCase) Registry(ctx context.Context, code string) (entities.Registry, error) {
	return uc.Registries.GetRegistry(ctx, strings.TrimSpace(code))
}

func (uc LedgerQueryUseCase) Balance(ctx context.Context, code string, voter string) (entities.Balance, error) {
	balance, found, err := uc.Balances.GetBalance(ctx, strings.TrimSpace(code), strings.TrimSpace(voter))
	if err != nil {
		return entities.Balance{}, err
	}
	if !found {
		return entities.Balance{}, domainerrors.ErrBalanceNotFound
	}
	return balance, nil
}

func (uc LedgerQueryUseCase) Airgrab(ctx context.Context, code string, recipient string) (entities.Airgrab, error) {
	grab, found, err := uc.Airgrabs.GetAirgrab(ctx, strings.TrimSpace(code), strings.TrimSpace(recipient))
	if err != nil {
		return entities.Airgrab{}, err
	}
	if !found {
		return entities.Airgrab{}, domainerrors.ErrAirgrabNotFound
	}
	return grab, nil
}

func (uc LedgerQueryUseCase) Counterbalance(ctx context.Context, code string, voter string) (CounterbalanceView, error) {
	registry, err := uc.Registries.GetRegistry(ctx, strings.TrimSpace(code))
	if err != nil {
		return CounterbalanceView{}, err
	}
	counter, found, err := uc.Counters.GetCounterbalance(ctx, registry.Code, strings.TrimSpace(voter))
	if err != nil {
		return CounterbalanceView{}, err
	}
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	if !found {
		counter = entities.NewCounterbalance(strings.TrimSpace(voter), registry.Code, registry.Precision, now)
	}
	return CounterbalanceView{
		Voter:      counter.Voter,
		Code:       counter.Code,
		Stored:     counter.Decayable,
		Decayed:    counter.DecayedAt(now, registry.Settings.CounterbalanceDecayRate),
		Persistent: counter.Persistent,
		LastDecay:  counter.LastDecay,
	}, nil
}
