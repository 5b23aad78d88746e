package postgresadapter

import (
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	"ballotbox/contexts/elections/voting-core/ports"
)

type voterTokenModel struct {
	TokenID    string     `gorm:"column:token_id;primaryKey"`
	ElectionID string     `gorm:"column:election_id;not null;uniqueIndex:idx_voter_tokens_election_hash,priority:1"`
	TokenHash  string     `gorm:"column:token_hash;not null;uniqueIndex:idx_voter_tokens_election_hash,priority:2"`
	Recipient  string     `gorm:"column:recipient"`
	Used       bool       `gorm:"column:used;not null"`
	UsedAt     *time.Time `gorm:"column:used_at"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (voterTokenModel) TableName() string {
	return "voter_tokens"
}

func voterTokenModelFromEntity(token entities.VoterToken) voterTokenModel {
	return voterTokenModel{
		TokenID:    token.TokenID,
		ElectionID: token.ElectionID,
		TokenHash:  token.TokenHash,
		Recipient:  token.Recipient,
		Used:       token.Used,
		UsedAt:     utcPtr(token.UsedAt),
		ExpiresAt:  utcPtr(token.ExpiresAt),
		CreatedAt:  token.CreatedAt.UTC(),
	}
}

func (m voterTokenModel) toEntity() entities.VoterToken {
	return entities.VoterToken{
		TokenID:    m.TokenID,
		ElectionID: m.ElectionID,
		TokenHash:  m.TokenHash,
		Recipient:  m.Recipient,
		Used:       m.Used,
		UsedAt:     utcPtr(m.UsedAt),
		ExpiresAt:  utcPtr(m.ExpiresAt),
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

type ballotOptionColumn struct {
	OptionID string `json:"option_id"`
	Text     string `json:"text"`
	Order    int    `json:"order"`
}

type ballotModel struct {
	BallotID      string               `gorm:"column:ballot_id;primaryKey"`
	ElectionID    string               `gorm:"column:election_id;not null;index"`
	Title         string               `gorm:"column:title"`
	Description   string               `gorm:"column:description"`
	BallotType    string               `gorm:"column:ballot_type;not null"`
	MaxSelections int                  `gorm:"column:max_selections;not null"`
	Options       []ballotOptionColumn `gorm:"column:options;type:text;serializer:json"`
	IsActive      bool                 `gorm:"column:is_active"`
	CreatedAt     time.Time            `gorm:"column:created_at"`
	UpdatedAt     time.Time            `gorm:"column:updated_at"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) ballotModel {
	options := make([]ballotOptionColumn, 0, len(ballot.Options))
	for _, option := range ballot.Options {
		options = append(options, ballotOptionColumn{
			OptionID: option.OptionID,
			Text:     option.Text,
			Order:    option.Order,
		})
	}
	return ballotModel{
		BallotID:      ballot.BallotID,
		ElectionID:    ballot.ElectionID,
		Title:         ballot.Title,
		Description:   ballot.Description,
		BallotType:    string(ballot.Type),
		MaxSelections: ballot.MaxSelections,
		Options:       options,
		IsActive:      ballot.IsActive,
		CreatedAt:     ballot.CreatedAt.UTC(),
		UpdatedAt:     ballot.UpdatedAt.UTC(),
	}
}

func (m ballotModel) toEntity() entities.Ballot {
	options := make([]entities.BallotOption, 0, len(m.Options))
	for _, option := range m.Options {
		options = append(options, entities.BallotOption{
			OptionID: option.OptionID,
			Text:     option.Text,
			Order:    option.Order,
		})
	}
	return entities.Ballot{
		BallotID:      m.BallotID,
		ElectionID:    m.ElectionID,
		Title:         m.Title,
		Description:   m.Description,
		Type:          entities.BallotType(m.BallotType),
		MaxSelections: m.MaxSelections,
		Options:       options,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

// voteModel intentionally has no token or user column.
type voteModel struct {
	VoteID     string    `gorm:"column:vote_id;primaryKey"`
	ElectionID string    `gorm:"column:election_id;not null;index:idx_votes_election_ballot,priority:1"`
	BallotID   string    `gorm:"column:ballot_id;not null;index:idx_votes_election_ballot,priority:2"`
	OptionIDs  []string  `gorm:"column:option_ids;type:text;serializer:json"`
	IPAddress  string    `gorm:"column:ip_address"`
	UserAgent  string    `gorm:"column:user_agent"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		VoteID:     vote.VoteID,
		ElectionID: vote.ElectionID,
		BallotID:   vote.BallotID,
		OptionIDs:  append([]string(nil), vote.OptionIDs...),
		IPAddress:  vote.Meta.IPAddress,
		UserAgent:  vote.Meta.UserAgent,
		CreatedAt:  vote.CreatedAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:     m.VoteID,
		ElectionID: m.ElectionID,
		BallotID:   m.BallotID,
		OptionIDs:  append([]string(nil), m.OptionIDs...),
		Meta: entities.VoteMeta{
			IPAddress: m.IPAddress,
			UserAgent: m.UserAgent,
		},
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "voting_core_outbox"
}

func (m outboxModel) toMessage() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      m.Payload,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "voting_core_event_dedup"
}

func utcPtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	at := value.UTC()
	return &at
}
