package commands

import (
	"encoding/json"
	"time"

	"ballotcore/contexts/governance-core/token-ledger/ports"
)

func newLedgerEnvelope(
	eventID string,
	eventType string,
	code string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Ledger events are partitioned by currency code so that per-currency
	// consumers observe mutations in order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "token-ledger",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "code",
		PartitionKey:     code,
		Data:             payload,
	}, nil
}
