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

// IssueCommand mints new supply, either directly into a balance or into the
// airgrab ledger for later claiming.
type IssueCommand struct {
	Publisher string
	Recipient string
	Quantity  entities.WeightQuantity
	Airgrab   bool
}

// ClaimAirgrabCommand moves a pending allocation into the claimant's balance.
type ClaimAirgrabCommand struct {
	Claimant string
	Issuer   string
	Code     string
}

// BurnCommand retires weight from the caller's own balance.
type BurnCommand struct {
	Owner    string
	Quantity entities.WeightQuantity
}

// SeizeCommand moves weight from a holder's balance into the publisher's.
type SeizeCommand struct {
	Publisher string
	Holder    string
	Quantity  entities.WeightQuantity
}

// SeizeAirgrabCommand consumes a pending airgrab into the publisher's balance.
type SeizeAirgrabCommand struct {
	Publisher string
	Recipient string
	Quantity  entities.WeightQuantity
}

// SeizeBatchCommand seizes the same quantity from every listed holder.
type SeizeBatchCommand struct {
	Publisher string
	Holders   []string
	Quantity  entities.WeightQuantity
}

// TransferCommand moves weight between two existing balance records and
// updates both parties' counterbalances.
type TransferCommand struct {
	Sender    string
	Recipient string
	Quantity  entities.WeightQuantity
}

// LedgerUseCase owns supply and balance mutations. Every method checks its
// settings gate and all integrity preconditions before the first write, so a
// rejected call leaves the ledger untouched.
type LedgerUseCase struct {
	Registries ports.RegistryRepository
	Balances   ports.BalanceRepository
	Airgrabs   ports.AirgrabRepository
	Counters   ports.CounterbalanceRepository
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc LedgerUseCase) Issue(ctx context.Context, cmd IssueCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.Quantity.IsPositive() || strings.TrimSpace(cmd.Recipient) == "" {
		return domainerrors.ErrInvalidQuantity
	}
	now := uc.now()
	registry, err := uc.Registries.GetRegistry(ctx, cmd.Quantity.Code)
	if err != nil {
		return err
	}
	if !strings.EqualFold(registry.Publisher, strings.TrimSpace(cmd.Publisher)) {
		return domainerrors.ErrNotPublisher
	}
	if !registry.Supply.SameCurrency(cmd.Quantity) {
		return domainerrors.ErrCurrencyMismatch
	}

	supply, err := registry.Supply.Add(cmd.Quantity)
	if err != nil {
		return domainerrors.ErrCurrencyMismatch
	}
	if supply.Amount > registry.MaxSupply.Amount {
		return domainerrors.ErrSupplyCapExceeded
	}

	recipient := strings.TrimSpace(cmd.Recipient)
	if cmd.Airgrab {
		grab, found, err := uc.Airgrabs.GetAirgrab(ctx, registry.Code, recipient)
		if err != nil {
			return err
		}
		if !found {
			grab = entities.Airgrab{
				Recipient: recipient,
				Quantity:  entities.ZeroWeight(registry.Code, registry.Precision),
				CreatedAt: now,
			}
		}
		pending, err := grab.Quantity.Add(cmd.Quantity)
		if err != nil {
			return domainerrors.ErrCurrencyMismatch
		}
		grab.Quantity = pending
		if err := uc.Airgrabs.SaveAirgrab(ctx, registry.Code, grab); err != nil {
			return err
		}
	} else {
		if err := uc.creditBalance(ctx, registry, recipient, cmd.Quantity, now); err != nil {
			return err
		}
	}

	registry.Supply = supply
	registry.UpdatedAt = now
	if err := uc.Registries.SaveRegistry(ctx, registry); err != nil {
		return err
	}
	logger.Info("weight issued",
		"event", "ledger_weight_issued",
		"module", "governance-core/token-ledger",
		"layer", "application",
		"code", registry.Code,
		"recipient", recipient,
		"amount", cmd.Quantity.Amount,
		"airgrab", cmd.Airgrab,
	)
	return uc.appendLedgerEvent(ctx, "token.issued", registry.Code, now, map[string]any{
		"recipient": recipient,
		"amount":    cmd.Quantity.Amount,
		"airgrab":   cmd.Airgrab,
	})
}

func (uc LedgerUseCase) ClaimAirgrab(ctx context.Context, cmd ClaimAirgrabCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.now()
	registry, err := uc.Registries.GetRegistry(ctx, strings.TrimSpace(cmd.Code))
	if err != nil {
		return err
	}
	if !strings.EqualFold(registry.Publisher, strings.TrimSpace(cmd.Issuer)) {
		return domainerrors.ErrNotPublisher
	}

	claimant := strings.TrimSpace(cmd.Claimant)
	grab, found, err := uc.Airgrabs.GetAirgrab(ctx, registry.Code, claimant)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrAirgrabNotFound
	}
	if err := uc.creditBalance(ctx, registry, claimant, grab.Quantity, now); err != nil {
		return err
	}
	if err := uc.Airgrabs.DeleteAirgrab(ctx, registry.Code, claimant); err != nil {
		return err
	}
	logger.Info("airgrab claimed",
		"event", "ledger_airgrab_claimed",
		"module", "governance-core/token-ledger",
		"layer", "application",
		"code", registry.Code,
		"claimant", claimant,
		"amount", grab.Quantity.Amount,
	)
	return nil
}

func (uc LedgerUseCase) Burn(ctx context.Context, cmd BurnCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.Quantity.IsPositive() {
		return domainerrors.ErrInvalidQuantity
	}
	now := uc.now()
	registry, err := uc.Registries.GetRegistry(ctx, cmd.Quantity.Code)
	if err != nil {
		return err
	}
	if !registry.Settings.Burnable {
		return domainerrors.ErrNotBurnable
	}

	owner := strings.TrimSpace(cmd.Owner)
	balance, found, err := uc.Balances.GetBalance(ctx, registry.Code, owner)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrBalanceNotFound
	}
	debited, err := balance.Quantity.Sub(cmd.Quantity)
	if err != nil {
		return domainerrors.ErrCurrencyMismatch
	}
	if debited.IsNegative() {
		return domainerrors.ErrInsufficientFunds
	}

	balance.Quantity = debited
	balance.UpdatedAt = now
	if err := uc.Balances.SaveBalance(ctx, registry.Code, balance); err != nil {
		return err
	}
	registry.Supply.Amount -= cmd.Quantity.Amount
	registry.UpdatedAt = now
	if err := uc.Registries.SaveRegistry(ctx, registry); err != nil {
		return err
	}
	logger.Info("weight burned",
		"event", "ledger_weight_burned",
		"module", "governance-core/token-ledger",
		"layer", "application",
		"code", registry.Code,
		"owner", owner,
		"amount", cmd.Quantity.Amount,
	)
	return nil
}

func (uc LedgerUseCase) Seize(ctx context.Context, cmd SeizeCommand) error {
	registry, err := uc.loadSeizable(ctx, cmd.Publisher, cmd.Quantity)
	if err != nil {
		return err
	}
	now := uc.now()
	if err := uc.seizeFromHolder(ctx, registry, strings.TrimSpace(cmd.Holder), cmd.Quantity, now); err != nil {
		return err
	}
	return uc.creditBalance(ctx, registry, registry.Publisher, cmd.Quantity, now)
}

func (uc LedgerUseCase) SeizeAirgrab(ctx context.Context, cmd SeizeAirgrabCommand) error {
	registry, err := uc.loadSeizable(ctx, cmd.Publisher, cmd.Quantity)
	if err != nil {
		return err
	}
	now := uc.now()

	recipient := strings.TrimSpace(cmd.Recipient)
	grab, found, err := uc.Airgrabs.GetAirgrab(ctx, registry.Code, recipient)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrAirgrabNotFound
	}
	remaining, err := grab.Quantity.Sub(cmd.Quantity)
	if err != nil {
		return domainerrors.ErrCurrencyMismatch
	}
	if remaining.IsNegative() {
		return domainerrors.ErrInsufficientFunds
	}
	if remaining.IsZero() {
		if err := uc.Airgrabs.DeleteAirgrab(ctx, registry.Code, recipient); err != nil {
			return err
		}
	} else {
		grab.Quantity = remaining
		if err := uc.Airgrabs.SaveAirgrab(ctx, registry.Code, grab); err != nil {
			return err
		}
	}
	return uc.creditBalance(ctx, registry, registry.Publisher, cmd.Quantity, now)
}

func (uc LedgerUseCase) SeizeBatch(ctx context.Context, cmd SeizeBatchCommand) error {
	registry, err := uc.loadSeizable(ctx, cmd.Publisher, cmd.Quantity)
	if err != nil {
		return err
	}
	now := uc.now()

	// Validate every holder before the first debit so a failing entry keeps
	// the whole batch untouched. A holder listed twice is debited twice, so
	// each balance is checked against the aggregate the batch would take.
	holders := make([]string, 0, len(cmd.Holders))
	required := make(map[string]int64, len(cmd.Holders))
	for _, holder := range cmd.Holders {
		holder = strings.TrimSpace(holder)
		balance, found, err := uc.Balances.GetBalance(ctx, registry.Code, holder)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrBalanceNotFound
		}
		required[holder] += cmd.Quantity.Amount
		if balance.Quantity.Amount < required[holder] {
			return domainerrors.ErrInsufficientFunds
		}
		holders = append(holders, holder)
	}
	for _, holder := range holders {
		if err := uc.seizeFromHolder(ctx, registry, holder, cmd.Quantity, now); err != nil {
			return err
		}
		if err := uc.creditBalance(ctx, registry, registry.Publisher, cmd.Quantity, now); err != nil {
			return err
		}
	}
	return nil
}

func (uc LedgerUseCase) Transfer(ctx context.Context, cmd TransferCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.Quantity.IsPositive() {
		return domainerrors.ErrInvalidQuantity
	}
	sender := strings.TrimSpace(cmd.Sender)
	recipient := strings.TrimSpace(cmd.Recipient)
	if strings.EqualFold(sender, recipient) {
		return domainerrors.ErrSelfTransfer
	}

	now := uc.now()
	registry, err := uc.Registries.GetRegistry(ctx, cmd.Quantity.Code)
	if err != nil {
		return err
	}
	if !registry.Settings.Transferable {
		return domainerrors.ErrNotTransferable
	}

	from, found, err := uc.Balances.GetBalance(ctx, registry.Code, sender)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrBalanceNotFound
	}
	to, found, err := uc.Balances.GetBalance(ctx, registry.Code, recipient)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrBalanceNotFound
	}

	debited, err := from.Quantity.Sub(cmd.Quantity)
	if err != nil {
		return domainerrors.ErrCurrencyMismatch
	}
	if debited.IsNegative() {
		return domainerrors.ErrInsufficientFunds
	}
	credited, err := to.Quantity.Add(cmd.Quantity)
	if err != nil {
		return domainerrors.ErrCurrencyMismatch
	}

	from.Quantity = debited
	from.UpdatedAt = now
	to.Quantity = credited
	to.UpdatedAt = now
	if err := uc.Balances.SaveBalance(ctx, registry.Code, from); err != nil {
		return err
	}
	if err := uc.Balances.SaveBalance(ctx, registry.Code, to); err != nil {
		return err
	}

	// Sent weight shrinks the sender's counterbalance, received weight grows
	// the recipient's; decay is applied before either delta.
	if err := uc.touchCounterbalance(ctx, registry, sender, -cmd.Quantity.Amount, now); err != nil {
		return err
	}
	if err := uc.touchCounterbalance(ctx, registry, recipient, cmd.Quantity.Amount, now); err != nil {
		return err
	}

	logger.Info("weight transferred",
		"event", "ledger_weight_transferred",
		"module", "governance-core/token-ledger",
		"layer", "application",
		"code", registry.Code,
		"sender", sender,
		"recipient", recipient,
		"amount", cmd.Quantity.Amount,
	)
	return uc.appendLedgerEvent(ctx, "token.transferred", registry.Code, now, map[string]any{
		"sender":    sender,
		"recipient": recipient,
		"amount":    cmd.Quantity.Amount,
	})
}

func (uc LedgerUseCase) loadSeizable(
	ctx context.Context,
	publisher string,
	quantity entities.WeightQuantity,
) (entities.Registry, error) {
	if !quantity.IsPositive() {
		return entities.Registry{}, domainerrors.ErrInvalidQuantity
	}
	registry, err := uc.Registries.GetRegistry(ctx, quantity.Code)
	if err != nil {
		return entities.Registry{}, err
	}
	if !strings.EqualFold(registry.Publisher, strings.TrimSpace(publisher)) {
		return entities.Registry{}, domainerrors.ErrNotPublisher
	}
	if !registry.Settings.Seizable {
		return entities.Registry{}, domainerrors.ErrNotSeizable
	}
	return registry, nil
}

func (uc LedgerUseCase) seizeFromHolder(
	ctx context.Context,
	registry entities.Registry,
	holder string,
	quantity entities.WeightQuantity,
	now time.Time,
) error {
	balance, found, err := uc.Balances.GetBalance(ctx, registry.Code, holder)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrBalanceNotFound
	}
	debited, err := balance.Quantity.Sub(quantity)
	if err != nil {
		return domainerrors.ErrCurrencyMismatch
	}
	if debited.IsNegative() {
		return domainerrors.ErrInsufficientFunds
	}
	balance.Quantity = debited
	balance.UpdatedAt = now
	return uc.Balances.SaveBalance(ctx, registry.Code, balance)
}

func (uc LedgerUseCase) creditBalance(
	ctx context.Context,
	registry entities.Registry,
	owner string,
	quantity entities.WeightQuantity,
	now time.Time,
) error {
	balance, found, err := uc.Balances.GetBalance(ctx, registry.Code, owner)
	if err != nil {
		return err
	}
	if !found {
		balance = entities.Balance{
			Voter:    owner,
			Quantity: entities.ZeroWeight(registry.Code, registry.Precision),
		}
	}
	credited, err := balance.Quantity.Add(quantity)
	if err != nil {
		return domainerrors.ErrCurrencyMismatch
	}
	balance.Quantity = credited
	balance.UpdatedAt = now
	return uc.Balances.SaveBalance(ctx, registry.Code, balance)
}

func (uc LedgerUseCase) touchCounterbalance(
	ctx context.Context,
	registry entities.Registry,
	voter string,
	delta int64,
	now time.Time,
) error {
	counter, found, err := uc.Counters.GetCounterbalance(ctx, registry.Code, voter)
	if err != nil {
		return err
	}
	if !found {
		counter = entities.NewCounterbalance(voter, registry.Code, registry.Precision, now)
	}
	counter = counter.Touch(now, registry.Settings.CounterbalanceDecayRate, delta)
	return uc.Counters.SaveCounterbalance(ctx, counter)
}

func (uc LedgerUseCase) appendLedgerEvent(
	ctx context.Context,
	eventType string,
	code string,
	occurredAt time.Time,
	data map[string]any,
) error {
	// Outbox is optional for pure in-memory/test wiring, so nil is a no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLedgerEnvelope(eventID, eventType, code, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc LedgerUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
