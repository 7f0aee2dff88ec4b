package ports

import (
	"context"
	"time"

	"ballotcore/contexts/governance-core/token-ledger/domain/entities"
	contractsv1 "ballotcore/contracts/gen/events/v1"
)

// RegistryRepository owns the per-currency registry record set.
type RegistryRepository interface {
	SaveRegistry(ctx context.Context, registry entities.Registry) error
	GetRegistry(ctx context.Context, code string) (entities.Registry, error)
	DeleteRegistry(ctx context.Context, code string) error
}

// BalanceRepository owns (voter, currency) holdings.
type BalanceRepository interface {
	SaveBalance(ctx context.Context, code string, balance entities.Balance) error
	GetBalance(ctx context.Context, code string, voter string) (entities.Balance, bool, error)
	DeleteBalance(ctx context.Context, code string, voter string) error
}

// AirgrabRepository owns pending (currency, recipient) allocations.
type AirgrabRepository interface {
	SaveAirgrab(ctx context.Context, code string, airgrab entities.Airgrab) error
	GetAirgrab(ctx context.Context, code string, recipient string) (entities.Airgrab, bool, error)
	DeleteAirgrab(ctx context.Context, code string, recipient string) error
}

// CounterbalanceRepository owns decay-tracked counters per (voter, currency).
// Counterbalances are created lazily and never deleted.
type CounterbalanceRepository interface {
	SaveCounterbalance(ctx context.Context, counterbalance entities.Counterbalance) error
	GetCounterbalance(ctx context.Context, code string, voter string) (entities.Counterbalance, bool, error)
}

// StakeSource reads a voter's external stake, expressed in raw units at the
// registry precision. Mirrorcast converts this into ledger weight.
type StakeSource interface {
	StakedWeight(ctx context.Context, voter string, code string, precision uint8) (int64, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxWriter persists outbound events alongside ledger mutations.
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

// EventDedupStore provides idempotent processing guarantees for consumed events.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
