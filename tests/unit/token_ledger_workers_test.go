package unit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	tokenledger "ballotcore/contexts/governance-core/token-ledger"
	"ballotcore/contexts/governance-core/token-ledger/application/workers"
	"ballotcore/contexts/governance-core/token-ledger/ports"
	httptransport "ballotcore/contexts/governance-core/token-ledger/transport/http"
)

type recordingSubscriber struct {
	handlers map[string]func(context.Context, ports.EventEnvelope) error
}

func (s *recordingSubscriber) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	if s.handlers == nil {
		s.handlers = make(map[string]func(context.Context, ports.EventEnvelope) error)
	}
	s.handlers[topic] = handler
	return nil
}

func settlementEnvelope(t *testing.T, eventID string, account string, code string, amount int64) ports.EventEnvelope {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"account": account,
		"code":    code,
		"amount":  amount,
	})
	if err != nil {
		t.Fatalf("marshal movement failed: %v", err)
	}
	return ports.EventEnvelope{
		EventID:    eventID,
		EventType:  "settlement.deposit",
		OccurredAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Data:       data,
	}
}

func TestDepositConsumerUpdatesCounterbalance(t *testing.T) {
	module := tokenledger.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)

	ctx := context.Background()
	if _, err := module.Handler.RegisterCurrencyHandler(ctx, "weightmaster", httptransport.RegisterCurrencyRequest{
		Code:      "VOTE",
		Precision: 0,
		MaxSupply: 100_000,
	}); err != nil {
		t.Fatalf("register currency failed: %v", err)
	}

	subscriber := &recordingSubscriber{}
	consumer := workers.DepositConsumer{
		Subscriber: subscriber,
		Dedup:      module.Store,
		Registries: module.Store,
		Counters:   module.Store,
		Clock:      module.Store,
		DedupTTL:   time.Hour,
	}
	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("consumer start failed: %v", err)
	}
	deposit := subscriber.handlers["settlement.deposit"]
	withdrawal := subscriber.handlers["settlement.withdrawal"]
	if deposit == nil || withdrawal == nil {
		t.Fatalf("expected both settlement subscriptions, got %v", subscriber.handlers)
	}

	if err := deposit(ctx, settlementEnvelope(t, "evt-1", "alice", "VOTE", 5_000)); err != nil {
		t.Fatalf("deposit handling failed: %v", err)
	}
	counter, err := module.Handler.CounterbalanceHandler(ctx, "VOTE", "alice")
	if err != nil {
		t.Fatalf("counterbalance lookup failed: %v", err)
	}
	if counter.Stored != 5_000 {
		t.Fatalf("expected deposit recorded, got %d", counter.Stored)
	}

	// Redelivery of the same event id must not double-count.
	if err := deposit(ctx, settlementEnvelope(t, "evt-1", "alice", "VOTE", 5_000)); err != nil {
		t.Fatalf("redelivery handling failed: %v", err)
	}
	counter, err = module.Handler.CounterbalanceHandler(ctx, "VOTE", "alice")
	if err != nil {
		t.Fatalf("counterbalance lookup failed: %v", err)
	}
	if counter.Stored != 5_000 {
		t.Fatalf("replayed deposit must be skipped, got %d", counter.Stored)
	}

	if err := withdrawal(ctx, settlementEnvelope(t, "evt-2", "alice", "VOTE", 2_000)); err != nil {
		t.Fatalf("withdrawal handling failed: %v", err)
	}
	counter, err = module.Handler.CounterbalanceHandler(ctx, "VOTE", "alice")
	if err != nil {
		t.Fatalf("counterbalance lookup failed: %v", err)
	}
	if counter.Stored != 3_000 {
		t.Fatalf("expected withdrawal debited, got %d", counter.Stored)
	}

	// Movements in untracked currencies are dropped silently.
	if err := deposit(ctx, settlementEnvelope(t, "evt-3", "alice", "OTHER", 9_000)); err != nil {
		t.Fatalf("untracked currency must be ignored, got %v", err)
	}
}

func TestDepositConsumerDedupExpiresOnLogicalClock(t *testing.T) {
	module := tokenledger.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)

	ctx := context.Background()
	if _, err := module.Handler.RegisterCurrencyHandler(ctx, "weightmaster", httptransport.RegisterCurrencyRequest{
		Code:      "VOTE",
		Precision: 0,
		MaxSupply: 100_000,
	}); err != nil {
		t.Fatalf("register currency failed: %v", err)
	}
	// A very slow decay keeps the counterbalance arithmetic out of the way.
	if err := module.Handler.InitSettingsHandler(ctx, "weightmaster", "VOTE", httptransport.SettingsRequest{
		CounterbalanceDecayRate: 1_000_000,
	}); err != nil {
		t.Fatalf("init settings failed: %v", err)
	}

	subscriber := &recordingSubscriber{}
	consumer := workers.DepositConsumer{
		Subscriber: subscriber,
		Dedup:      module.Store,
		Registries: module.Store,
		Counters:   module.Store,
		Clock:      module.Store,
		DedupTTL:   time.Hour,
	}
	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("consumer start failed: %v", err)
	}
	deposit := subscriber.handlers["settlement.deposit"]

	if err := deposit(ctx, settlementEnvelope(t, "evt-9", "alice", "VOTE", 5_000)); err != nil {
		t.Fatalf("deposit handling failed: %v", err)
	}
	module.Store.SetNow(t0.Add(30 * time.Minute))
	if err := deposit(ctx, settlementEnvelope(t, "evt-9", "alice", "VOTE", 5_000)); err != nil {
		t.Fatalf("in-TTL redelivery failed: %v", err)
	}
	counter, err := module.Handler.CounterbalanceHandler(ctx, "VOTE", "alice")
	if err != nil {
		t.Fatalf("counterbalance lookup failed: %v", err)
	}
	if counter.Stored != 5_000 {
		t.Fatalf("redelivery inside the TTL must be skipped, got %d", counter.Stored)
	}

	// Past the TTL the reservation lapses; a redelivered movement is a new
	// movement again. Expiry follows the pinned clock, not wall time.
	module.Store.SetNow(t0.Add(2 * time.Hour))
	if err := deposit(ctx, settlementEnvelope(t, "evt-9", "alice", "VOTE", 5_000)); err != nil {
		t.Fatalf("post-TTL redelivery failed: %v", err)
	}
	counter, err = module.Handler.CounterbalanceHandler(ctx, "VOTE", "alice")
	if err != nil {
		t.Fatalf("counterbalance lookup failed: %v", err)
	}
	if counter.Stored != 10_000 {
		t.Fatalf("expected lapsed reservation reapplied, got %d", counter.Stored)
	}
}

func TestDepositConsumerDisabledFlag(t *testing.T) {
	subscriber := &recordingSubscriber{}
	consumer := workers.DepositConsumer{
		Subscriber: subscriber,
		Disabled:   true,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("disabled start failed: %v", err)
	}
	if len(subscriber.handlers) != 0 {
		t.Fatalf("disabled consumer must not subscribe, got %v", subscriber.handlers)
	}
}
