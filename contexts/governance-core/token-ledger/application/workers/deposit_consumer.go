package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "ballotcore/contexts/governance-core/token-ledger/application"
	"ballotcore/contexts/governance-core/token-ledger/domain/entities"
	domainerrors "ballotcore/contexts/governance-core/token-ledger/domain/errors"
	"ballotcore/contexts/governance-core/token-ledger/ports"
)

const (
	settlementDepositTopic    = "settlement.deposit"
	settlementWithdrawalTopic = "settlement.withdrawal"
	defaultDepositCG          = "token-ledger-settlement-cg"
)

// DepositConsumer is the one inbound interface of the voting substrate: the
// settlement-currency ledger notifies it whenever value moves into or out of
// a tracked account, and the notification drives the counterbalance update.
type DepositConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Registries    ports.RegistryRepository
	Counters      ports.CounterbalanceRepository
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

type settlementMovement struct {
	Account string `json:"account"`
	Code    string `json:"code"`
	Amount  int64  `json:"amount"`
}

func (c DepositConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("deposit consumer disabled by feature flag",
			"event", "ledger_deposit_consumer_disabled",
			"module", "governance-core/token-ledger",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultDepositCG
	}
	if err := c.Subscriber.Subscribe(ctx, settlementDepositTopic, group, c.handleDeposit); err != nil {
		return err
	}
	if err := c.Subscriber.Subscribe(ctx, settlementWithdrawalTopic, group, c.handleWithdrawal); err != nil {
		return err
	}
	logger.Info("deposit consumer subscriptions active",
		"event", "ledger_deposit_consumer_started",
		"module", "governance-core/token-ledger",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c DepositConsumer) handleDeposit(ctx context.Context, event ports.EventEnvelope) error {
	return c.applyMovement(ctx, event, +1)
}

func (c DepositConsumer) handleWithdrawal(ctx context.Context, event ports.EventEnvelope) error {
	return c.applyMovement(ctx, event, -1)
}

func (c DepositConsumer) applyMovement(ctx context.Context, event ports.EventEnvelope, sign int64) error {
	logger := application.ResolveLogger(c.Logger)
	if alreadyProcessed, err := c.reserveEvent(ctx, event); err != nil {
		return err
	} else if alreadyProcessed {
		logger.Debug("settlement movement replay skipped",
			"event", "ledger_settlement_movement_replayed",
			"module", "governance-core/token-ledger",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	var payload settlementMovement
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("settlement movement decode failed",
			"event", "ledger_settlement_movement_decode_failed",
			"module", "governance-core/token-ledger",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if payload.Amount <= 0 || strings.TrimSpace(payload.Account) == "" {
		return nil
	}

	registry, err := c.Registries.GetRegistry(ctx, strings.ToUpper(strings.TrimSpace(payload.Code)))
	if err != nil {
		if errors.Is(err, domainerrors.ErrRegistryNotFound) {
			// Movements in currencies this engine does not track are ignored.
			return nil
		}
		return err
	}

	now := c.now()
	account := strings.TrimSpace(payload.Account)
	counter, found, err := c.Counters.GetCounterbalance(ctx, registry.Code, account)
	if err != nil {
		return err
	}
	if !found {
		counter = entities.NewCounterbalance(account, registry.Code, registry.Precision, now)
	}
	counter = counter.Touch(now, registry.Settings.CounterbalanceDecayRate, sign*payload.Amount)
	if err := c.Counters.SaveCounterbalance(ctx, counter); err != nil {
		return err
	}

	logger.Info("settlement movement applied to counterbalance",
		"event", "ledger_settlement_movement_applied",
		"module", "governance-core/token-ledger",
		"layer", "worker",
		"event_id", event.EventID,
		"account", account,
		"code", registry.Code,
		"delta", sign*payload.Amount,
	)
	return nil
}

func (c DepositConsumer) reserveEvent(ctx context.Context, event ports.EventEnvelope) (bool, error) {
	if c.Dedup == nil {
		return false, nil
	}
	sum := sha256.Sum256(event.Data)
	ttl := c.DedupTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hex.EncodeToString(sum[:]), c.now().Add(ttl))
	if err != nil {
		return false, err
	}
	return alreadyProcessed, nil
}

func (c DepositConsumer) now() time.Time {
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return now
}
