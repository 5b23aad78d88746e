package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/ports"
)

const defaultRelayBatch = 100

// OutboxRelay publishes stored outbox rows to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes up to BatchSize pending rows in creation order. A row is
// marked published only after the bus accepted it, and the cycle stops at the
// first failure so the next tick retries from there.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger).With(
		"module", application.ModuleName,
		"layer", "worker",
	)
	batch := r.BatchSize
	if batch <= 0 {
		batch = defaultRelayBatch
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, batch)
	if err != nil {
		logger.Error("outbox list failed", "event", "voting_outbox_list_failed", "error", err.Error())
		return err
	}
	if len(pending) == 0 {
		logger.Debug("no pending outbox rows", "event", "voting_outbox_relay_noop", "batch_size", batch)
		return nil
	}

	publishedAt := r.now()
	for i, row := range pending {
		if err := r.relay(ctx, row, publishedAt); err != nil {
			logger.Error("outbox relay stopped",
				"event", "voting_outbox_relay_failed",
				"outbox_id", row.OutboxID,
				"published_count", i,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("outbox relay cycle completed",
		"event", "voting_outbox_relay_completed",
		"published_count", len(pending),
	)
	return nil
}

func (r OutboxRelay) relay(ctx context.Context, row ports.OutboxMessage, publishedAt time.Time) error {
	var envelope ports.EventEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		return fmt.Errorf("decode outbox payload: %w", err)
	}
	topic := envelope.EventType
	if topic == "" {
		topic = row.EventType
	}
	if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, publishedAt); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

func (r OutboxRelay) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}
