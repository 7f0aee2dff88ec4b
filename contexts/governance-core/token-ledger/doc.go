// Package tokenledger implements the weighting-token ledger inside the
// governance-core context.
//
// The module owns currency registries and their settings lifecycle, voter
// balances and pending airgrabs, counterbalance decay, and the mirrorcast
// operation that projects staked weight into spendable voting weight. Ledger
// mutations emit events through an outbox-backed relay. Business rules live
// in the application/domain layers; infrastructure sits behind ports and
// adapters.
package tokenledger
