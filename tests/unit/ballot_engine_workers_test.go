package unit

import (
	"context"
	"testing"
	"time"

	ballotengine "ballotcore/contexts/governance-core/ballot-engine"
	"ballotcore/contexts/governance-core/ballot-engine/application/workers"
	"ballotcore/contexts/governance-core/ballot-engine/domain/entities"
	"ballotcore/contexts/governance-core/ballot-engine/ports"
	httptransport "ballotcore/contexts/governance-core/ballot-engine/transport/http"
)

type capturingPublisher struct {
	topics []string
	events []ports.EventEnvelope
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestBallotOutboxRelayPublishesOnce(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)
	module.Store.SetCurrency("VOTE", 0, true)
	module.Store.SetWeight("alice", "VOTE", 10)

	ctx := context.Background()
	created, err := module.Handler.RegisterBallotHandler(ctx, "weightmaster", httptransport.RegisterBallotRequest{
		Kind:  "proposal",
		Code:  "VOTE",
		Begin: t0,
		End:   t0.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("register ballot failed: %v", err)
	}
	if err := module.Handler.CastVoteHandler(ctx, "alice", created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionYes}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	publisher := &capturingPublisher{}
	relay := workers.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
		Clock:     module.Store,
		BatchSize: 10,
	}
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected registration and vote events, got %d", len(publisher.events))
	}
	seen := map[string]bool{}
	for _, topic := range publisher.topics {
		seen[topic] = true
	}
	if !seen["ballot.registered"] || !seen["vote.cast"] {
		t.Fatalf("unexpected topics: %v", publisher.topics)
	}

	// A second cycle finds every row already marked sent.
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("relay must not republish sent rows, got %d events", len(publisher.events))
	}
}

func TestReceiptJanitorSweepsExpired(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)
	module.Store.SetCurrency("VOTE", 0, true)
	module.Store.SetWeight("alice", "VOTE", 10)
	module.Store.SetWeight("bob", "VOTE", 20)

	ctx := context.Background()
	created, err := module.Handler.RegisterBallotHandler(ctx, "weightmaster", httptransport.RegisterBallotRequest{
		Kind:  "proposal",
		Code:  "VOTE",
		Begin: t0,
		End:   t0.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("register ballot failed: %v", err)
	}
	for _, voter := range []string{"alice", "bob"} {
		if err := module.Handler.CastVoteHandler(ctx, voter, created.BallotID, httptransport.CastVoteRequest{Direction: entities.DirectionYes}); err != nil {
			t.Fatalf("vote by %s failed: %v", voter, err)
		}
	}

	janitor := workers.ReceiptJanitor{
		Receipts:       module.Store,
		Voting:         module.Handler.Voting,
		Clock:          module.Store,
		VoterBatchSize: 10,
		PruneLimit:     10,
	}
	pruned, err := janitor.RunOnce(ctx)
	if err != nil {
		t.Fatalf("janitor run failed: %v", err)
	}
	if pruned != 0 {
		t.Fatalf("current receipts must survive the sweep, got %d", pruned)
	}

	module.Store.SetNow(t0.Add(2 * time.Hour))
	pruned, err = janitor.RunOnce(ctx)
	if err != nil {
		t.Fatalf("janitor run failed: %v", err)
	}
	if pruned != 2 {
		t.Fatalf("expected both expired receipts pruned, got %d", pruned)
	}
	for _, voter := range []string{"alice", "bob"} {
		receipts, err := module.Handler.VoterReceiptsHandler(ctx, voter, 10)
		if err != nil {
			t.Fatalf("receipt lookup failed: %v", err)
		}
		if len(receipts) != 0 {
			t.Fatalf("expected %s receipts emptied, got %d", voter, len(receipts))
		}
	}
}
