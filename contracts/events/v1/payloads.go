package v1

import "time"

// VoteRecorded is the data of a TopicVoteRecorded envelope.
type VoteRecorded struct {
	VoteID     string    `json:"vote_id"`
	ElectionID string    `json:"election_id"`
	BallotID   string    `json:"ballot_id"`
	OptionIDs  []string  `json:"option_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}

// VoterTokensIssued is the data of a TopicVoterTokensIssued envelope.
type VoterTokensIssued struct {
	ElectionID string    `json:"election_id"`
	Count      int       `json:"count"`
	ExpiresAt  time.Time `json:"expires_at"`
}
