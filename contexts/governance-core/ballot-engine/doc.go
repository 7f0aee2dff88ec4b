// Package ballotengine implements the polymorphic ballot registry inside the
// governance-core context.
//
// The module owns the environment singleton, ballot registration and kind
// dispatch, the proposal and leaderboard voting state machines, and per-voter
// vote receipts with cycle-aware recast semantics. Voter weight is read from
// the token ledger through the WeightSource port; lifecycle notifications to
// policy modules go out through outbox-backed workers.
package ballotengine
