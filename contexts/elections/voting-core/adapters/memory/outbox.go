package memory

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"time"

	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"

	"github.com/google/uuid"
)

type outboxEntry struct {
	ports.OutboxMessage
	publishedAt *time.Time
}

// outboxLog keeps entries in append order with an id index. The zero value
// is ready to use.
type outboxLog struct {
	entries []outboxEntry
	byID    map[string]int
}

func (l *outboxLog) lookup(id string) (*outboxEntry, bool) {
	pos, ok := l.byID[id]
	if !ok {
		return nil, false
	}
	return &l.entries[pos], true
}

func (l *outboxLog) add(message ports.OutboxMessage) {
	if l.byID == nil {
		l.byID = make(map[string]int)
	}
	l.byID[message.OutboxID] = len(l.entries)
	l.entries = append(l.entries, outboxEntry{OutboxMessage: message})
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(envelope.EventID)
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.outbox.lookup(id); ok {
		if bytes.Equal(entry.Payload, encoded) {
			return nil
		}
		return domainerrors.ErrConflict
	}
	at := envelope.OccurredAt.UTC()
	if at.IsZero() {
		at = time.Now().UTC()
	}
	s.outbox.add(ports.OutboxMessage{
		OutboxID:     id,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      encoded,
		CreatedAt:    at,
	})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	var pending []ports.OutboxMessage
	for _, entry := range s.outbox.entries {
		if entry.publishedAt != nil {
			continue
		}
		message := entry.OutboxMessage
		message.Payload = slices.Clone(message.Payload)
		pending = append(pending, message)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(pending, func(a, b ports.OutboxMessage) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.OutboxID, b.OutboxID))
	})
	return pending[:min(limit, len(pending))], nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.outbox.lookup(strings.TrimSpace(outboxID))
	if !ok {
		return domainerrors.ErrConflict
	}
	at := publishedAt.UTC()
	entry.publishedAt = &at
	return nil
}

type reservation struct {
	hash    string
	expires time.Time
}

func (r reservation) expired(now time.Time) bool {
	return !r.expires.IsZero() && now.After(r.expires)
}

// ReserveEvent reports true for a live reservation with the same payload
// hash. Expired reservations are replaced.
func (s *Store) ReserveEvent(_ context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
	id := strings.TrimSpace(eventID)
	hash := strings.TrimSpace(payloadHash)

	s.mu.Lock()
	defer s.mu.Unlock()

	if held, ok := s.eventDedup[id]; ok && !held.expired(time.Now().UTC()) {
		if held.hash != hash {
			return false, domainerrors.ErrConflict
		}
		return true, nil
	}
	s.eventDedup[id] = reservation{hash: hash, expires: expiresAt.UTC()}
	return false, nil
}

func (s *Store) ReleaseEvent(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.eventDedup, strings.TrimSpace(eventID))
	return nil
}
