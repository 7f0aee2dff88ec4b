package ports

import (
	"context"
	"time"

	"ballotcore/contexts/governance-core/ballot-engine/domain/entities"
	contractsv1 "ballotcore/contracts/gen/events/v1"
)

// EnvironmentRepository owns the singleton bookkeeping row.
type EnvironmentRepository interface {
	SaveEnvironment(ctx context.Context, env entities.Environment) error
	GetEnvironment(ctx context.Context) (entities.Environment, bool, error)
}

// BallotRepository owns the polymorphic ballot registry.
type BallotRepository interface {
	SaveBallot(ctx context.Context, ballot entities.Ballot) error
	GetBallot(ctx context.Context, ballotID uint64) (entities.Ballot, error)
	DeleteBallot(ctx context.Context, ballotID uint64) error
}

// ProposalRepository owns proposal ballot records.
type ProposalRepository interface {
	SaveProposal(ctx context.Context, proposal entities.Proposal) error
	GetProposal(ctx context.Context, id uint64) (entities.Proposal, error)
	DeleteProposal(ctx context.Context, id uint64) error
}

// LeaderboardRepository owns leaderboard ballot records. Candidate updates go
// through SaveLeaderboard with the full rewritten record.
type LeaderboardRepository interface {
	SaveLeaderboard(ctx context.Context, leaderboard entities.Leaderboard) error
	GetLeaderboard(ctx context.Context, id uint64) (entities.Leaderboard, error)
	DeleteLeaderboard(ctx context.Context, id uint64) error
}

// ReceiptRepository owns per-voter vote receipts.
type ReceiptRepository interface {
	SaveReceipt(ctx context.Context, receipt entities.VoteReceipt) error
	GetReceipt(ctx context.Context, voter string, ballotID uint64) (entities.VoteReceipt, bool, error)
	ListReceipts(ctx context.Context, voter string, limit int) ([]entities.VoteReceipt, error)
	DeleteReceipt(ctx context.Context, voter string, ballotID uint64) error
	ListVotersWithExpired(ctx context.Context, before time.Time, limit int) ([]string, error)
}

// CurrencyInfo is the slice of a currency registry the ballot engine needs:
// the precision that fixes tally arithmetic and the recast gate.
type CurrencyInfo struct {
	Code       string
	Precision  uint8
	Recastable bool
}

// WeightSource reads voter weight and currency settings from the token
// ledger. The composition root adapts the ledger's repositories to this port
// so the two services stay decoupled.
type WeightSource interface {
	Currency(ctx context.Context, code string) (CurrencyInfo, error)
	VoterWeight(ctx context.Context, voter string, code string) (int64, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxWriter persists outbound events alongside ballot mutations.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event EventEnvelope) error
}

// OutboxMessage is a persisted outbound event awaiting relay.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
