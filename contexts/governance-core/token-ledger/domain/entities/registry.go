package entities

import "time"

// Settings gates every mutation allowed against a registered currency.
// A registry starts with every toggle off; the publisher enables what the
// governance deployment needs through InitSettings.
type Settings struct {
	Initialized             bool
	LockAfterInitialize     bool
	Destructible            bool
	Burnable                bool
	Seizable                bool
	MaxMutable              bool
	Transferable            bool
	Recastable              bool
	CounterbalanceDecayRate uint32 // seconds per whole-unit decay step
}

// DefaultDecayRate applies to registries whose publisher never initialized
// settings explicitly.
const DefaultDecayRate uint32 = 300

func DefaultSettings() Settings {
	return Settings{CounterbalanceDecayRate: DefaultDecayRate}
}

// Registry defines one weighting currency. Invariant: Supply never exceeds
// MaxSupply after any issue/burn/seize/raise/lower/mirrorcast mutation.
type Registry struct {
	Code         string
	Precision    uint8
	Publisher    string
	MaxSupply    WeightQuantity
	Supply       WeightQuantity
	TotalVoters  uint32
	TotalProxies uint32
	InfoURL      string
	Settings     Settings
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Balance is one voter's holding in one weighting currency, keyed
// (voter, currency code). Stored quantities are never negative.
type Balance struct {
	Voter     string
	Quantity  WeightQuantity
	UpdatedAt time.Time
}

// Airgrab is an unclaimed allocation escrowed for a named recipient,
// keyed (currency code, recipient).
type Airgrab struct {
	Recipient string
	Quantity  WeightQuantity
	CreatedAt time.Time
}
