package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"
)

func TestStoreConsumeToken(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)

	err := store.CreateTokens(ctx, []entities.VoterToken{
		{TokenID: "1", ElectionID: "E", TokenHash: "h1"},
		{TokenID: "2", ElectionID: "E", TokenHash: "h2", ExpiresAt: &past},
	})
	if err != nil {
		t.Fatalf("create tokens: %v", err)
	}

	token, err := store.ConsumeToken(ctx, "E", "h1", now)
	if err != nil || !token.Used || token.UsedAt == nil {
		t.Fatalf("expected consumed token, got %+v / %v", token, err)
	}
	if _, err := store.ConsumeToken(ctx, "E", "h1", now); !errors.Is(err, domainerrors.ErrTokenNotFound) {
		t.Fatalf("expected used token refused, got %v", err)
	}
	if _, err := store.ConsumeToken(ctx, "E", "h2", now); !errors.Is(err, domainerrors.ErrTokenNotFound) {
		t.Fatalf("expected expired token refused, got %v", err)
	}
	if _, err := store.ConsumeToken(ctx, "other", "h1", now); !errors.Is(err, domainerrors.ErrTokenNotFound) {
		t.Fatalf("expected unknown election refused, got %v", err)
	}
}

func TestStoreCreateTokensIsAllOrNothing(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if err := store.CreateTokens(ctx, []entities.VoterToken{{ElectionID: "E", TokenHash: "h1"}}); err != nil {
		t.Fatalf("create tokens: %v", err)
	}
	err := store.CreateTokens(ctx, []entities.VoterToken{
		{ElectionID: "E", TokenHash: "h2"},
		{ElectionID: "E", TokenHash: "h1"},
	})
	if !errors.Is(err, domainerrors.ErrDuplicateToken) {
		t.Fatalf("expected duplicate token, got %v", err)
	}
	if _, err := store.LookupToken(ctx, "E", "h2"); !errors.Is(err, domainerrors.ErrTokenNotFound) {
		t.Fatalf("expected rejected batch to store nothing, got %v", err)
	}
	// Same hash under another election is a different credential.
	if err := store.CreateTokens(ctx, []entities.VoterToken{{ElectionID: "E2", TokenHash: "h1"}}); err != nil {
		t.Fatalf("expected hash reuse across elections to be allowed: %v", err)
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	ballot := entities.Ballot{
		BallotID:   "B",
		ElectionID: "E",
		Options:    []entities.BallotOption{{OptionID: "X"}, {OptionID: "Y"}},
	}
	store := NewStore([]entities.Ballot{ballot})
	ctx := context.Background()

	got, err := store.GetBallot(ctx, "B")
	if err != nil {
		t.Fatalf("get ballot: %v", err)
	}
	got.Options[0].OptionID = "mutated"
	again, _ := store.GetBallot(ctx, "B")
	if again.Options[0].OptionID != "X" {
		t.Fatalf("store leaked internal ballot slice")
	}

	vote := entities.Vote{VoteID: "v1", ElectionID: "E", BallotID: "B", OptionIDs: []string{"X"}}
	if err := store.InsertVote(ctx, vote); err != nil {
		t.Fatalf("insert vote: %v", err)
	}
	vote.OptionIDs[0] = "Y"
	listed, _ := store.ListVotesByBallot(ctx, "E", "B")
	if listed[0].OptionIDs[0] != "X" {
		t.Fatalf("store leaked caller vote slice")
	}
	if err := store.InsertVote(ctx, entities.Vote{VoteID: "v1"}); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict on duplicate vote id, got %v", err)
	}
}

func TestStoreReserveEventExpiry(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	if replayed, err := store.ReserveEvent(ctx, "evt", "hash-a", time.Now().Add(-time.Second)); err != nil || replayed {
		t.Fatalf("first reserve: replayed=%v err=%v", replayed, err)
	}
	replayed, err := store.ReserveEvent(ctx, "evt", "hash-b", time.Now().Add(time.Hour))
	if err != nil || replayed {
		t.Fatalf("expired reservation should be replaced, got replayed=%v err=%v", replayed, err)
	}
	if _, err := store.ReserveEvent(ctx, "evt", "hash-a", time.Now().Add(time.Hour)); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict against live reservation, got %v", err)
	}
}

func TestStoreOutboxPendingOrder(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	base := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	for _, event := range []struct {
		id string
		at time.Time
	}{
		{"late", base.Add(time.Minute)},
		{"b", base},
		{"a", base},
	} {
		err := store.AppendOutbox(ctx, ports.EventEnvelope{EventID: event.id, EventType: "vote.recorded", OccurredAt: event.at})
		if err != nil {
			t.Fatalf("append %s: %v", event.id, err)
		}
	}
	if err := store.MarkOutboxPublished(ctx, "b", base); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	if err := store.MarkOutboxPublished(ctx, "missing", base); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict for unknown row, got %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 1)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].OutboxID != "a" {
		t.Fatalf("expected oldest pending row first, got %+v", pending)
	}
	pending, _ = store.ListPendingOutbox(ctx, 0)
	if len(pending) != 2 || pending[1].OutboxID != "late" {
		t.Fatalf("unexpected pending rows: %+v", pending)
	}
}
