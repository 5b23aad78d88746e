package commands

import (
	"encoding/json"
	"time"

	"ballotbox/contexts/elections/voting-core/ports"
)

const sourceService = "voting-core"

// electionEnvelope wraps data for the outbox. Events are keyed by election so
// a consumer sees one election's events in order.
func electionEnvelope(eventID, topic, electionID string, at time.Time, data any) (ports.EventEnvelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	envelope := ports.EventEnvelope{
		EventID:       eventID,
		EventType:     topic,
		OccurredAt:    at.UTC(),
		SourceService: sourceService,
		TraceID:       eventID,
		SchemaVersion: 1,
		Data:          raw,
	}
	envelope.PartitionKeyPath, envelope.PartitionKey = "election_id", electionID
	return envelope, nil
}
