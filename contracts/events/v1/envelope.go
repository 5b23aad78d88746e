package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the versioned event envelope shared by producers and consumers
// of ballotbox events. Fields are append-only; consumers must tolerate unknown
// data keys.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

const (
	// TopicVoteRecorded carries election, ballot and normalized option ids of
	// a stored vote. It never carries credential material.
	TopicVoteRecorded = "vote.recorded"
	// TopicVoterTokensIssued announces an issuance batch by count only.
	TopicVoterTokensIssued = "voter_tokens.issued"
	// TopicBallotUpserted is produced by election management whenever a
	// ballot definition is created or edited.
	TopicBallotUpserted = "ballot.upserted"
)
