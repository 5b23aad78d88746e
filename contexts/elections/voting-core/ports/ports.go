package ports

import (
	"context"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	contractsv1 "ballotbox/contracts/events/v1"
)

// TokenStore persists hashed credentials. ConsumeToken must be one atomic
// conditional write: it flips used from false to true only for an unexpired
// token and returns ErrTokenNotFound when the condition does not match,
// including when a concurrent caller won the race.
type TokenStore interface {
	CreateTokens(ctx context.Context, tokens []entities.VoterToken) error
	LookupToken(ctx context.Context, electionID string, tokenHash string) (entities.VoterToken, error)
	ConsumeToken(ctx context.Context, electionID string, tokenHash string, usedAt time.Time) (entities.VoterToken, error)
}

type BallotRepository interface {
	GetBallot(ctx context.Context, ballotID string) (entities.Ballot, error)
	SaveBallot(ctx context.Context, ballot entities.Ballot) error
}

type VoteRepository interface {
	InsertVote(ctx context.Context, vote entities.Vote) error
	ListVotesByBallot(ctx context.Context, electionID string, ballotID string) ([]entities.Vote, error)
}

// TokenHasher must be deterministic and identical at issuance and at use.
type TokenHasher interface {
	HashToken(raw string) string
}

type TokenGenerator interface {
	NewToken() (string, error)
}

type Metrics interface {
	CastCompleted(outcome string)
	TokenChecked(outcome string)
	TokensIssued(count int)
	TallyComputed(ballotType string)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
	// ReleaseEvent drops a reservation whose handling failed, so a
	// redelivery is processed instead of skipped.
	ReleaseEvent(ctx context.Context, eventID string) error
}
