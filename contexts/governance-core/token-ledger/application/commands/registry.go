package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "ballotcore/contexts/governance-core/token-ledger/application"
	"ballotcore/contexts/governance-core/token-ledger/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/token-ledger/domain/errors"
	"ballotcore/contexts/governance-core/token-ledger/ports"
)

// RegisterCurrencyCommand introduces a new weighting currency.
type RegisterCurrencyCommand struct {
	Publisher string
	MaxSupply entities.WeightQuantity
	InfoURL   string
}

// InitSettingsCommand replaces a registry's settings bundle.
type InitSettingsCommand struct {
	Publisher string
	Code      string
	Settings  entities.Settings
}

// UnregisterCurrencyCommand destroys a destructible registry.
type UnregisterCurrencyCommand struct {
	Publisher string
	Code      string
}

// AdjustMaxCommand raises or lowers the issuance cap by a positive amount.
type AdjustMaxCommand struct {
	Publisher string
	Quantity  entities.WeightQuantity
}

// RegistryUseCase owns currency registration and settings lifecycle.
// Each method is one atomic operation: all preconditions are checked against
// a single logical "now" before any record is written.
type RegistryUseCase struct {
	Registries ports.RegistryRepository
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (uc RegistryUseCase) RegisterCurrency(ctx context.Context, cmd RegisterCurrencyCommand) (entities.Registry, error) {
	logger := application.ResolveLogger(uc.Logger)
	publisher := strings.TrimSpace(cmd.Publisher)
	if publisher == "" || cmd.MaxSupply.Code == "" || !cmd.MaxSupply.IsPositive() {
		return entities.Registry{}, domainerrors.ErrInvalidQuantity
	}

	now := uc.now()
	if _, err := uc.Registries.GetRegistry(ctx, cmd.MaxSupply.Code); err == nil {
		return entities.Registry{}, domainerrors.ErrRegistryExists
	} else if !errors.Is(err, domainerrors.ErrRegistryNotFound) {
		return entities.Registry{}, err
	}

	registry := entities.Registry{
		Code:      cmd.MaxSupply.Code,
		Precision: cmd.MaxSupply.Precision,
		Publisher: publisher,
		MaxSupply: cmd.MaxSupply,
		Supply:    entities.ZeroWeight(cmd.MaxSupply.Code, cmd.MaxSupply.Precision),
		InfoURL:   strings.TrimSpace(cmd.InfoURL),
		Settings:  entities.DefaultSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Registries.SaveRegistry(ctx, registry); err != nil {
		return entities.Registry{}, err
	}
	logger.Info("currency registered",
		"event", "ledger_currency_registered",
		"module", "governance-core/token-ledger",
		"layer", "application",
		"code", registry.Code,
		"publisher", registry.Publisher,
		"max_supply", registry.MaxSupply.Amount,
	)
	return registry, nil
}

func (uc RegistryUseCase) InitSettings(ctx context.Context, cmd InitSettingsCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	registry, err := uc.Registries.GetRegistry(ctx, strings.TrimSpace(cmd.Code))
	if err != nil {
		return err
	}
	if !strings.EqualFold(registry.Publisher, strings.TrimSpace(cmd.Publisher)) {
		return domainerrors.ErrNotPublisher
	}
	if cmd.Settings.CounterbalanceDecayRate == 0 {
		return domainerrors.ErrZeroDecayRate
	}
	if registry.Settings.Initialized && registry.Settings.LockAfterInitialize {
		return domainerrors.ErrSettingsLocked
	}

	registry.Settings = cmd.Settings
	registry.Settings.Initialized = true
	registry.UpdatedAt = uc.now()
	if err := uc.Registries.SaveRegistry(ctx, registry); err != nil {
		return err
	}
	logger.Info("registry settings initialized",
		"event", "ledger_settings_initialized",
		"module", "governance-core/token-ledger",
		"layer", "application",
		"code", registry.Code,
		"locked", registry.Settings.LockAfterInitialize,
		"decay_rate", registry.Settings.CounterbalanceDecayRate,
	)
	return nil
}

func (uc RegistryUseCase) UnregisterCurrency(ctx context.Context, cmd UnregisterCurrencyCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	registry, err := uc.Registries.GetRegistry(ctx, strings.TrimSpace(cmd.Code))
	if err != nil {
		return err
	}
	if !strings.EqualFold(registry.Publisher, strings.TrimSpace(cmd.Publisher)) {
		return domainerrors.ErrNotPublisher
	}
	if !registry.Settings.Destructible {
		return domainerrors.ErrNotDestructible
	}
	if err := uc.Registries.DeleteRegistry(ctx, registry.Code); err != nil {
		return err
	}
	logger.Info("currency unregistered",
		"event", "ledger_currency_unregistered",
		"module", "governance-core/token-ledger",
		"layer", "application",
		"code", registry.Code,
	)
	return nil
}

func (uc RegistryUseCase) RaiseMax(ctx context.Context, cmd AdjustMaxCommand) error {
	registry, err := uc.loadMutableMax(ctx, cmd)
	if err != nil {
		return err
	}
	raised, err := registry.MaxSupply.Add(cmd.Quantity)
	if err != nil {
		return domainerrors.ErrCurrencyMismatch
	}
	registry.MaxSupply = raised
	registry.UpdatedAt = uc.now()
	return uc.Registries.SaveRegistry(ctx, registry)
}

func (uc RegistryUseCase) LowerMax(ctx context.Context, cmd AdjustMaxCommand) error {
	registry, err := uc.loadMutableMax(ctx, cmd)
	if err != nil {
		return err
	}
	lowered, err := registry.MaxSupply.Sub(cmd.Quantity)
	if err != nil {
		return domainerrors.ErrCurrencyMismatch
	}
	if lowered.Amount < registry.Supply.Amount {
		return domainerrors.ErrMaxBelowSupply
	}
	registry.MaxSupply = lowered
	registry.UpdatedAt = uc.now()
	return uc.Registries.SaveRegistry(ctx, registry)
}

func (uc RegistryUseCase) loadMutableMax(ctx context.Context, cmd AdjustMaxCommand) (entities.Registry, error) {
	if !cmd.Quantity.IsPositive() {
		return entities.Registry{}, domainerrors.ErrInvalidQuantity
	}
	registry, err := uc.Registries.GetRegistry(ctx, cmd.Quantity.Code)
	if err != nil {
		return entities.Registry{}, err
	}
	if !strings.EqualFold(registry.Publisher, strings.TrimSpace(cmd.Publisher)) {
		return entities.Registry{}, domainerrors.ErrNotPublisher
	}
	if !registry.Settings.MaxMutable {
		return entities.Registry{}, domainerrors.ErrMaxImmutable
	}
	return registry, nil
}

func (uc RegistryUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
