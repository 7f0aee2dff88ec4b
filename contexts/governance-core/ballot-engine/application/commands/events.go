package commands

import (
	"encoding/json"
	"strconv"
	"time"

	"ballotcore/contexts/governance-core/ballot-engine/ports"
)

func newBallotEnvelope(
	eventID string,
	eventType string,
	ballotID uint64,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Ballot events are partitioned by ballot id so that per-ballot consumers
	// observe lifecycle transitions in order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "ballot-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "ballot_id",
		PartitionKey:     strconv.FormatUint(ballotID, 10),
		Data:             payload,
	}, nil
}
