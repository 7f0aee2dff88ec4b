package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	tokenledger "ballotcore/contexts/governance-core/token-ledger"
	domainerrors "ballotcore/contexts/governance-core/token-ledger/domain/errors"
	httptransport "ballotcore/contexts/governance-core/token-ledger/transport/http"
)

func TestLedgerSupplyCapAndTransferConservation(t *testing.T) {
	module := tokenledger.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)

	ctx := context.Background()
	if _, err := module.Handler.RegisterCurrencyHandler(ctx, "weightmaster", httptransport.RegisterCurrencyRequest{
		Code:      "VOTE",
		Precision: 3,
		MaxSupply: 1_000_000,
	}); err != nil {
		t.Fatalf("register currency failed: %v", err)
	}
	if err := module.Handler.InitSettingsHandler(ctx, "weightmaster", "VOTE", httptransport.SettingsRequest{
		Transferable:            true,
		Burnable:                true,
		Recastable:              true,
		CounterbalanceDecayRate: 300,
	}); err != nil {
		t.Fatalf("init settings failed: %v", err)
	}
	for _, voter := range []string{"alice", "bob"} {
		if err := module.Handler.RegisterVoterHandler(ctx, httptransport.RegisterVoterRequest{Voter: voter, Code: "VOTE"}); err != nil {
			t.Fatalf("register voter %s failed: %v", voter, err)
		}
	}

	if err := module.Handler.IssueHandler(ctx, "weightmaster", "VOTE", 3, httptransport.IssueRequest{
		Recipient: "alice",
		Amount:    600_000,
	}); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	err := module.Handler.IssueHandler(ctx, "weightmaster", "VOTE", 3, httptransport.IssueRequest{
		Recipient: "alice",
		Amount:    500_000,
	})
	if !errors.Is(err, domainerrors.ErrSupplyCapExceeded) {
		t.Fatalf("expected supply cap error, got %v", err)
	}

	if err := module.Handler.TransferHandler(ctx, "alice", 3, httptransport.TransferRequest{
		Code:      "VOTE",
		Recipient: "bob",
		Amount:    250_000,
	}); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	err = module.Handler.TransferHandler(ctx, "alice", 3, httptransport.TransferRequest{
		Code:      "VOTE",
		Recipient: "alice",
		Amount:    1,
	})
	if !errors.Is(err, domainerrors.ErrSelfTransfer) {
		t.Fatalf("expected self transfer error, got %v", err)
	}
	err = module.Handler.TransferHandler(ctx, "alice", 3, httptransport.TransferRequest{
		Code:      "VOTE",
		Recipient: "bob",
		Amount:    1_000_000,
	})
	if !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	aliceBalance, err := module.Handler.BalanceHandler(ctx, "VOTE", "alice")
	if err != nil {
		t.Fatalf("alice balance failed: %v", err)
	}
	bobBalance, err := module.Handler.BalanceHandler(ctx, "VOTE", "bob")
	if err != nil {
		t.Fatalf("bob balance failed: %v", err)
	}
	if aliceBalance.Amount != 350_000 || bobBalance.Amount != 250_000 {
		t.Fatalf("unexpected balances: alice=%d bob=%d", aliceBalance.Amount, bobBalance.Amount)
	}
	registry, err := module.Handler.RegistryHandler(ctx, "VOTE")
	if err != nil {
		t.Fatalf("registry lookup failed: %v", err)
	}
	if registry.Supply != 600_000 {
		t.Fatalf("transfer must conserve supply, got %d", registry.Supply)
	}
	if registry.TotalVoters != 2 {
		t.Fatalf("expected 2 voters, got %d", registry.TotalVoters)
	}

	// Received weight is counterbalanced and melts one whole unit per step.
	counter, err := module.Handler.CounterbalanceHandler(ctx, "VOTE", "bob")
	if err != nil {
		t.Fatalf("counterbalance lookup failed: %v", err)
	}
	if counter.Stored != 250_000 || counter.Decayed != 250_000 {
		t.Fatalf("unexpected fresh counterbalance: stored=%d decayed=%d", counter.Stored, counter.Decayed)
	}
	module.Store.SetNow(t0.Add(600 * time.Second))
	counter, err = module.Handler.CounterbalanceHandler(ctx, "VOTE", "bob")
	if err != nil {
		t.Fatalf("counterbalance lookup failed: %v", err)
	}
	if counter.Stored != 250_000 {
		t.Fatalf("stored amount must not change on read, got %d", counter.Stored)
	}
	if counter.Decayed != 248_000 {
		t.Fatalf("expected two whole units decayed, got %d", counter.Decayed)
	}
}

func TestLedgerAirgrabAndSeizure(t *testing.T) {
	module := tokenledger.NewInMemoryModule(nil)
	module.Store.SetNow(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	ctx := context.Background()
	if _, err := module.Handler.RegisterCurrencyHandler(ctx, "weightmaster", httptransport.RegisterCurrencyRequest{
		Code:      "GRAB",
		Precision: 0,
		MaxSupply: 100_000,
	}); err != nil {
		t.Fatalf("register currency failed: %v", err)
	}
	if err := module.Handler.InitSettingsHandler(ctx, "weightmaster", "GRAB", httptransport.SettingsRequest{
		Seizable:                true,
		CounterbalanceDecayRate: 300,
	}); err != nil {
		t.Fatalf("init settings failed: %v", err)
	}

	if err := module.Handler.IssueHandler(ctx, "weightmaster", "GRAB", 0, httptransport.IssueRequest{
		Recipient: "carol",
		Amount:    10_000,
		Airgrab:   true,
	}); err != nil {
		t.Fatalf("airgrab issue failed: %v", err)
	}
	// Issuance into the airgrab ledger already counts against supply but
	// opens no balance until the claim.
	if _, err := module.Handler.BalanceHandler(ctx, "GRAB", "carol"); !errors.Is(err, domainerrors.ErrBalanceNotFound) {
		t.Fatalf("expected no balance before claim, got %v", err)
	}
	registry, err := module.Handler.RegistryHandler(ctx, "GRAB")
	if err != nil {
		t.Fatalf("registry lookup failed: %v", err)
	}
	if registry.Supply != 10_000 {
		t.Fatalf("expected supply 10000 after airgrab issue, got %d", registry.Supply)
	}

	err = module.Handler.ClaimAirgrabHandler(ctx, "carol", "GRAB", httptransport.ClaimAirgrabRequest{Issuer: "impostor"})
	if !errors.Is(err, domainerrors.ErrNotPublisher) {
		t.Fatalf("expected publisher check on claim, got %v", err)
	}
	if err := module.Handler.ClaimAirgrabHandler(ctx, "carol", "GRAB", httptransport.ClaimAirgrabRequest{Issuer: "weightmaster"}); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	carol, err := module.Handler.BalanceHandler(ctx, "GRAB", "carol")
	if err != nil {
		t.Fatalf("carol balance failed: %v", err)
	}
	if carol.Amount != 10_000 {
		t.Fatalf("expected claimed balance 10000, got %d", carol.Amount)
	}
	err = module.Handler.ClaimAirgrabHandler(ctx, "carol", "GRAB", httptransport.ClaimAirgrabRequest{Issuer: "weightmaster"})
	if !errors.Is(err, domainerrors.ErrAirgrabNotFound) {
		t.Fatalf("claim must consume the allocation, got %v", err)
	}

	if err := module.Handler.IssueHandler(ctx, "weightmaster", "GRAB", 0, httptransport.IssueRequest{
		Recipient: "dave",
		Amount:    5_000,
		Airgrab:   true,
	}); err != nil {
		t.Fatalf("second airgrab issue failed: %v", err)
	}
	if err := module.Handler.SeizeHandler(ctx, "weightmaster", "GRAB", 0, httptransport.SeizeRequest{
		Recipient: "dave",
		Amount:    5_000,
		Airgrab:   true,
	}); err != nil {
		t.Fatalf("airgrab seize failed: %v", err)
	}
	if err := module.Handler.SeizeHandler(ctx, "weightmaster", "GRAB", 0, httptransport.SeizeRequest{
		Holder: "carol",
		Amount: 4_000,
	}); err != nil {
		t.Fatalf("holder seize failed: %v", err)
	}
	carol, err = module.Handler.BalanceHandler(ctx, "GRAB", "carol")
	if err != nil {
		t.Fatalf("carol balance failed: %v", err)
	}
	publisher, err := module.Handler.BalanceHandler(ctx, "GRAB", "weightmaster")
	if err != nil {
		t.Fatalf("publisher balance failed: %v", err)
	}
	if carol.Amount != 6_000 || publisher.Amount != 9_000 {
		t.Fatalf("unexpected post-seizure balances: carol=%d publisher=%d", carol.Amount, publisher.Amount)
	}
}

func TestLedgerSeizeBatchIsAtomic(t *testing.T) {
	module := tokenledger.NewInMemoryModule(nil)
	module.Store.SetNow(time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC))

	ctx := context.Background()
	if _, err := module.Handler.RegisterCurrencyHandler(ctx, "weightmaster", httptransport.RegisterCurrencyRequest{
		Code:      "BATC",
		Precision: 0,
		MaxSupply: 100_000,
	}); err != nil {
		t.Fatalf("register currency failed: %v", err)
	}
	if err := module.Handler.InitSettingsHandler(ctx, "weightmaster", "BATC", httptransport.SettingsRequest{
		Seizable:                true,
		CounterbalanceDecayRate: 300,
	}); err != nil {
		t.Fatalf("init settings failed: %v", err)
	}
	for _, holder := range []string{"alice", "bob"} {
		if err := module.Handler.IssueHandler(ctx, "weightmaster", "BATC", 0, httptransport.IssueRequest{
			Recipient: holder,
			Amount:    10,
		}); err != nil {
			t.Fatalf("issue to %s failed: %v", holder, err)
		}
	}

	// A holder listed twice needs twice the quantity; the shortfall must be
	// detected before any balance moves.
	err := module.Handler.SeizeHandler(ctx, "weightmaster", "BATC", 0, httptransport.SeizeRequest{
		Holders: []string{"alice", "bob", "bob"},
		Amount:  10,
	})
	if !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected aggregate shortfall rejection, got %v", err)
	}
	for _, holder := range []string{"alice", "bob"} {
		balance, err := module.Handler.BalanceHandler(ctx, "BATC", holder)
		if err != nil {
			t.Fatalf("%s balance failed: %v", holder, err)
		}
		if balance.Amount != 10 {
			t.Fatalf("rejected batch must leave %s untouched, got %d", holder, balance.Amount)
		}
	}
	if _, err := module.Handler.BalanceHandler(ctx, "BATC", "weightmaster"); !errors.Is(err, domainerrors.ErrBalanceNotFound) {
		t.Fatalf("rejected batch must not credit the publisher, got %v", err)
	}

	if err := module.Handler.SeizeHandler(ctx, "weightmaster", "BATC", 0, httptransport.SeizeRequest{
		Holders: []string{"alice", "bob"},
		Amount:  10,
	}); err != nil {
		t.Fatalf("valid batch seize failed: %v", err)
	}
	publisher, err := module.Handler.BalanceHandler(ctx, "BATC", "weightmaster")
	if err != nil {
		t.Fatalf("publisher balance failed: %v", err)
	}
	if publisher.Amount != 20 {
		t.Fatalf("expected publisher credited 20, got %d", publisher.Amount)
	}
}

func TestLedgerAdjustMaxGuards(t *testing.T) {
	module := tokenledger.NewInMemoryModule(nil)
	module.Store.SetNow(time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))

	ctx := context.Background()
	if _, err := module.Handler.RegisterCurrencyHandler(ctx, "weightmaster", httptransport.RegisterCurrencyRequest{
		Code:      "CAPD",
		Precision: 0,
		MaxSupply: 1_000,
	}); err != nil {
		t.Fatalf("register currency failed: %v", err)
	}
	if err := module.Handler.InitSettingsHandler(ctx, "weightmaster", "CAPD", httptransport.SettingsRequest{
		MaxMutable:              true,
		CounterbalanceDecayRate: 300,
	}); err != nil {
		t.Fatalf("init settings failed: %v", err)
	}
	if err := module.Handler.IssueHandler(ctx, "weightmaster", "CAPD", 0, httptransport.IssueRequest{
		Recipient: "erin",
		Amount:    800,
	}); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	err := module.Handler.AdjustMaxHandler(ctx, "weightmaster", "CAPD", 0, httptransport.AdjustMaxRequest{
		Direction: "lower",
		Amount:    300,
	})
	if !errors.Is(err, domainerrors.ErrMaxBelowSupply) {
		t.Fatalf("expected max below supply error, got %v", err)
	}
	if err := module.Handler.AdjustMaxHandler(ctx, "weightmaster", "CAPD", 0, httptransport.AdjustMaxRequest{
		Direction: "raise",
		Amount:    500,
	}); err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	if err := module.Handler.AdjustMaxHandler(ctx, "weightmaster", "CAPD", 0, httptransport.AdjustMaxRequest{
		Direction: "lower",
		Amount:    700,
	}); err != nil {
		t.Fatalf("lower to supply failed: %v", err)
	}
	registry, err := module.Handler.RegistryHandler(ctx, "CAPD")
	if err != nil {
		t.Fatalf("registry lookup failed: %v", err)
	}
	if registry.MaxSupply != 800 || registry.Supply != 800 {
		t.Fatalf("unexpected cap state: max=%d supply=%d", registry.MaxSupply, registry.Supply)
	}
	err = module.Handler.AdjustMaxHandler(ctx, "weightmaster", "CAPD", 0, httptransport.AdjustMaxRequest{
		Direction: "sideways",
		Amount:    1,
	})
	if !errors.Is(err, domainerrors.ErrInvalidQuantity) {
		t.Fatalf("expected invalid direction rejection, got %v", err)
	}
}

func TestLedgerSettingsLockAfterInitialize(t *testing.T) {
	module := tokenledger.NewInMemoryModule(nil)
	ctx := context.Background()
	if _, err := module.Handler.RegisterCurrencyHandler(ctx, "weightmaster", httptransport.RegisterCurrencyRequest{
		Code:      "LOCK",
		Precision: 0,
		MaxSupply: 100,
	}); err != nil {
		t.Fatalf("register currency failed: %v", err)
	}
	err := module.Handler.InitSettingsHandler(ctx, "weightmaster", "LOCK", httptransport.SettingsRequest{
		LockAfterInitialize: true,
	})
	if !errors.Is(err, domainerrors.ErrZeroDecayRate) {
		t.Fatalf("expected zero decay rate rejection, got %v", err)
	}
	if err := module.Handler.InitSettingsHandler(ctx, "weightmaster", "LOCK", httptransport.SettingsRequest{
		LockAfterInitialize:     true,
		Transferable:            true,
		CounterbalanceDecayRate: 300,
	}); err != nil {
		t.Fatalf("init settings failed: %v", err)
	}
	err = module.Handler.InitSettingsHandler(ctx, "weightmaster", "LOCK", httptransport.SettingsRequest{
		CounterbalanceDecayRate: 600,
	})
	if !errors.Is(err, domainerrors.ErrSettingsLocked) {
		t.Fatalf("expected locked settings rejection, got %v", err)
	}
}

func TestLedgerMirrorcastIdempotentAndDiscounted(t *testing.T) {
	module := tokenledger.NewInMemoryModule(nil)
	t0 := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	module.Store.SetNow(t0)

	ctx := context.Background()
	if _, err := module.Handler.RegisterCurrencyHandler(ctx, "weightmaster", httptransport.RegisterCurrencyRequest{
		Code:      "STAKE",
		Precision: 0,
		MaxSupply: 1_000_000,
	}); err != nil {
		t.Fatalf("register currency failed: %v", err)
	}
	if err := module.Handler.InitSettingsHandler(ctx, "weightmaster", "STAKE", httptransport.SettingsRequest{
		Transferable:            true,
		CounterbalanceDecayRate: 300,
	}); err != nil {
		t.Fatalf("init settings failed: %v", err)
	}
	for _, voter := range []string{"frank", "grace"} {
		if err := module.Handler.RegisterVoterHandler(ctx, httptransport.RegisterVoterRequest{Voter: voter, Code: "STAKE"}); err != nil {
			t.Fatalf("register voter %s failed: %v", voter, err)
		}
	}
	if err := module.Handler.IssueHandler(ctx, "weightmaster", "STAKE", 0, httptransport.IssueRequest{
		Recipient: "grace",
		Amount:    1_000,
	}); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if err := module.Handler.TransferHandler(ctx, "grace", 0, httptransport.TransferRequest{
		Code:      "STAKE",
		Recipient: "frank",
		Amount:    1_000,
	}); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	module.Store.SetStake("frank", "STAKE", 10_000)

	// Mirrored weight is the stake minus the decayed counterbalance.
	first, err := module.Handler.MirrorcastHandler(ctx, "frank", "STAKE")
	if err != nil {
		t.Fatalf("mirrorcast failed: %v", err)
	}
	if first.Weight != 9_000 {
		t.Fatalf("expected discounted weight 9000, got %d", first.Weight)
	}
	second, err := module.Handler.MirrorcastHandler(ctx, "frank", "STAKE")
	if err != nil {
		t.Fatalf("repeat mirrorcast failed: %v", err)
	}
	if second.Weight != first.Weight {
		t.Fatalf("mirrorcast must be idempotent at a fixed instant: %d vs %d", first.Weight, second.Weight)
	}
	registry, err := module.Handler.RegistryHandler(ctx, "STAKE")
	if err != nil {
		t.Fatalf("registry lookup failed: %v", err)
	}
	if registry.Supply != 9_000 {
		t.Fatalf("expected supply 9000 after mirrorcast, got %d", registry.Supply)
	}

	// Two decay steps later the counterbalance has melted by two units, so the
	// same stake converts into slightly more weight.
	module.Store.SetNow(t0.Add(600 * time.Second))
	third, err := module.Handler.MirrorcastHandler(ctx, "frank", "STAKE")
	if err != nil {
		t.Fatalf("later mirrorcast failed: %v", err)
	}
	if third.Weight != 9_002 {
		t.Fatalf("expected weight 9002 after decay, got %d", third.Weight)
	}

	module.Store.SetStake("frank", "STAKE", 2_000_000)
	if _, err := module.Handler.MirrorcastHandler(ctx, "frank", "STAKE"); !errors.Is(err, domainerrors.ErrSupplyCapExceeded) {
		t.Fatalf("expected supply cap rejection, got %v", err)
	}
}

func TestLedgerBurnGateAndVoterRetirement(t *testing.T) {
	module := tokenledger.NewInMemoryModule(nil)
	module.Store.SetNow(time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC))

	ctx := context.Background()
	if _, err := module.Handler.RegisterCurrencyHandler(ctx, "weightmaster", httptransport.RegisterCurrencyRequest{
		Code:      "EMBR",
		Precision: 0,
		MaxSupply: 10_000,
	}); err != nil {
		t.Fatalf("register currency failed: %v", err)
	}
	if err := module.Handler.RegisterVoterHandler(ctx, httptransport.RegisterVoterRequest{Voter: "hank", Code: "EMBR"}); err != nil {
		t.Fatalf("register voter failed: %v", err)
	}
	if err := module.Handler.IssueHandler(ctx, "weightmaster", "EMBR", 0, httptransport.IssueRequest{
		Recipient: "hank",
		Amount:    5_000,
	}); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	// Default settings keep every gate closed.
	err := module.Handler.BurnHandler(ctx, "hank", "EMBR", 0, httptransport.BurnRequest{Amount: 1_000})
	if !errors.Is(err, domainerrors.ErrNotBurnable) {
		t.Fatalf("expected burn gate, got %v", err)
	}
	err = module.Handler.UnregisterVoterHandler(ctx, "hank", "EMBR")
	if !errors.Is(err, domainerrors.ErrNotBurnable) {
		t.Fatalf("unregistering a funded voter is a burn, got %v", err)
	}
	err = module.Handler.SeizeHandler(ctx, "weightmaster", "EMBR", 0, httptransport.SeizeRequest{Holder: "hank", Amount: 1})
	if !errors.Is(err, domainerrors.ErrNotSeizable) {
		t.Fatalf("expected seize gate, got %v", err)
	}

	if err := module.Handler.InitSettingsHandler(ctx, "weightmaster", "EMBR", httptransport.SettingsRequest{
		Burnable:                true,
		CounterbalanceDecayRate: 300,
	}); err != nil {
		t.Fatalf("init settings failed: %v", err)
	}
	if err := module.Handler.BurnHandler(ctx, "hank", "EMBR", 0, httptransport.BurnRequest{Amount: 1_000}); err != nil {
		t.Fatalf("burn failed: %v", err)
	}
	if err := module.Handler.UnregisterVoterHandler(ctx, "hank", "EMBR"); err != nil {
		t.Fatalf("unregister voter failed: %v", err)
	}
	registry, err := module.Handler.RegistryHandler(ctx, "EMBR")
	if err != nil {
		t.Fatalf("registry lookup failed: %v", err)
	}
	if registry.Supply != 0 {
		t.Fatalf("retiring the last balance must empty supply, got %d", registry.Supply)
	}
	if registry.TotalVoters != 0 {
		t.Fatalf("expected no voters left, got %d", registry.TotalVoters)
	}
	if _, err := module.Handler.BalanceHandler(ctx, "EMBR", "hank"); !errors.Is(err, domainerrors.ErrBalanceNotFound) {
		t.Fatalf("expected balance removed, got %v", err)
	}
}
