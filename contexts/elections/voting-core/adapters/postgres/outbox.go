package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

const (
	outboxPending   = "pending"
	outboxPublished = "published"
)

// insertOnce writes row unless a row with the same key column exists.
func (r *Repository) insertOnce(ctx context.Context, row any, keyColumn string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: keyColumn}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		return false, storageError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

// AppendOutbox is idempotent per event id. Re-appending the same envelope is
// a no-op; a different envelope under a known id is a conflict.
func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(envelope.EventID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	inserted, err := r.insertOnce(ctx, &outboxModel{
		OutboxID:     id,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      encoded,
		Status:       outboxPending,
		CreatedAt:    createdAt,
	}, "outbox_id")
	if err != nil {
		r.logError("voting_outbox_append_failed", err, "outbox_id", id)
		return err
	}
	if inserted {
		return nil
	}

	var stored outboxModel
	if err := r.db.WithContext(ctx).Select("payload").Take(&stored, "outbox_id = ?", id).Error; err != nil {
		return storageError(err)
	}
	if !bytes.Equal(stored.Payload, encoded) {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxPending).
		Order("created_at ASC").
		Order("outbox_id ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		r.logError("voting_outbox_list_failed", err, "limit", limit)
		return nil, storageError(err)
	}

	messages := make([]ports.OutboxMessage, len(rows))
	for i, row := range rows {
		messages[i] = row.toMessage()
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	at := publishedAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&outboxModel{OutboxID: strings.TrimSpace(outboxID)}).
		Updates(outboxModel{Status: outboxPublished, PublishedAt: &at})
	if result.Error != nil {
		r.logError("voting_outbox_mark_failed", result.Error, "outbox_id", outboxID)
		return storageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

// ReserveEvent records eventID as handled. It reports true when the event
// was already reserved with the same payload hash and the reservation has not
// expired; an expired reservation is taken over.
func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	now := time.Now().UTC()
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: now,
	}
	inserted, err := r.insertOnce(ctx, &row, "event_id")
	if err != nil {
		r.logError("voting_event_reserve_failed", err, "event_id", row.EventID)
		return false, err
	}
	if inserted {
		return false, nil
	}

	var stored eventDedupModel
	if err := r.db.WithContext(ctx).Take(&stored, "event_id = ?", row.EventID).Error; err != nil {
		return false, storageError(err)
	}
	if !stored.ExpiresAt.IsZero() && stored.ExpiresAt.Before(now) {
		err := r.db.WithContext(ctx).
			Model(&eventDedupModel{EventID: row.EventID}).
			Updates(map[string]any{
				"payload_hash": row.PayloadHash,
				"expires_at":   row.ExpiresAt,
				"processed_at": row.ProcessedAt,
			}).
			Error
		if err != nil {
			return false, storageError(err)
		}
		return false, nil
	}
	if stored.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

func (r *Repository) ReleaseEvent(ctx context.Context, eventID string) error {
	id := strings.TrimSpace(eventID)
	err := r.db.WithContext(ctx).Delete(&eventDedupModel{}, "event_id = ?", id).Error
	if err != nil {
		r.logError("voting_event_release_failed", err, "event_id", id)
		return storageError(err)
	}
	return nil
}
