package workers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	"ballotbox/contexts/elections/voting-core/ports"
	contractsv1 "ballotbox/contracts/events/v1"
)

const defaultBallotCG = "voting-core-ballot-cg"

type ballotOptionPayload struct {
	OptionID string `json:"option_id"`
	Text     string `json:"text"`
	Order    int    `json:"order"`
}

type ballotPayload struct {
	BallotID      string                `json:"ballot_id"`
	ElectionID    string                `json:"election_id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Type          string                `json:"type"`
	MaxSelections int                   `json:"max_selections"`
	IsActive      bool                  `json:"is_active"`
	Options       []ballotOptionPayload `json:"options"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// BallotProjectionConsumer keeps the local read-only copy of ballot
// definitions in step with election management.
type BallotProjectionConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Ballots       ports.BallotRepository
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (c BallotProjectionConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("ballot projection consumer disabled",
			"event", "voting_ballot_consumer_disabled",
			"module", application.ModuleName,
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultBallotCG
	}
	if err := c.Subscriber.Subscribe(ctx, contractsv1.TopicBallotUpserted, group, c.HandleBallotUpserted); err != nil {
		logger.Error("ballot projection subscribe failed",
			"event", "voting_ballot_consumer_subscribe_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"topic", contractsv1.TopicBallotUpserted,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("ballot projection consumer subscribed",
		"event", "voting_ballot_consumer_started",
		"module", application.ModuleName,
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

// HandleBallotUpserted validates the definition before reserving the event id,
// so a rejected payload can be corrected and redelivered under the same id.
// A failed save releases the reservation for the same reason.
func (c BallotProjectionConsumer) HandleBallotUpserted(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)

	var payload ballotPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("ballot.upserted payload decode failed",
			"event", "voting_ballot_upserted_decode_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	ballot := payload.toEntity()
	if err := ballot.ValidateDefinition(); err != nil {
		logger.Error("ballot.upserted definition rejected",
			"event", "voting_ballot_upserted_rejected",
			"module", application.ModuleName,
			"layer", "worker",
			"event_id", event.EventID,
			"ballot_id", ballot.BallotID,
			"error", err.Error(),
		)
		return err
	}

	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), c.now().Add(c.dedupTTL()))
	if err != nil {
		logger.Error("ballot event dedupe failed",
			"event", "voting_ballot_event_dedupe_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("ballot.upserted replay skipped",
			"event", "voting_ballot_upserted_replayed",
			"module", application.ModuleName,
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	if ballot.UpdatedAt.IsZero() {
		ballot.UpdatedAt = c.now()
	}
	if ballot.CreatedAt.IsZero() {
		ballot.CreatedAt = ballot.UpdatedAt
	}
	if err := c.Ballots.SaveBallot(ctx, ballot); err != nil {
		logger.Error("ballot projection save failed",
			"event", "voting_ballot_projection_save_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"event_id", event.EventID,
			"ballot_id", ballot.BallotID,
			"error", err.Error(),
		)
		if releaseErr := c.Dedup.ReleaseEvent(ctx, event.EventID); releaseErr != nil {
			return errors.Join(err, releaseErr)
		}
		return err
	}
	logger.Info("ballot projection updated",
		"event", "voting_ballot_projection_updated",
		"module", application.ModuleName,
		"layer", "worker",
		"event_id", event.EventID,
		"ballot_id", ballot.BallotID,
		"election_id", ballot.ElectionID,
		"option_count", len(ballot.Options),
	)
	return nil
}

func (p ballotPayload) toEntity() entities.Ballot {
	options := make([]entities.BallotOption, 0, len(p.Options))
	for _, option := range p.Options {
		options = append(options, entities.BallotOption{
			OptionID: strings.TrimSpace(option.OptionID),
			Text:     strings.TrimSpace(option.Text),
			Order:    option.Order,
		})
	}
	maxSelections := p.MaxSelections
	if maxSelections == 0 {
		maxSelections = 1
	}
	return entities.Ballot{
		BallotID:      strings.TrimSpace(p.BallotID),
		ElectionID:    strings.TrimSpace(p.ElectionID),
		Title:         strings.TrimSpace(p.Title),
		Description:   strings.TrimSpace(p.Description),
		Type:          entities.BallotType(p.Type).Normalize(),
		MaxSelections: maxSelections,
		Options:       options,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
}

func (c BallotProjectionConsumer) now() time.Time {
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return now
}

func (c BallotProjectionConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}
