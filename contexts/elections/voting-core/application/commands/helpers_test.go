package commands

import (
	"context"
	"errors"
	"sync"
	"time"

	"ballotbox/contexts/elections/voting-core/adapters/hashing"
	"ballotbox/contexts/elections/voting-core/adapters/memory"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	"ballotbox/contexts/elections/voting-core/ports"
)

var testNow = time.Date(2026, time.March, 10, 9, 30, 20, 56_029_746, time.UTC)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

type recordingMetrics struct {
	mu      sync.Mutex
	casts   map[string]int
	issued  int
	checks  map[string]int
	tallies map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		casts:   map[string]int{},
		checks:  map[string]int{},
		tallies: map[string]int{},
	}
}

func (m *recordingMetrics) CastCompleted(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.casts[outcome]++
}

func (m *recordingMetrics) TokenChecked(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[outcome]++
}

func (m *recordingMetrics) TokensIssued(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued += count
}

func (m *recordingMetrics) TallyComputed(ballotType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tallies[ballotType]++
}

func (m *recordingMetrics) castCount(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.casts[outcome]
}

type failingOutbox struct{}

func (failingOutbox) AppendOutbox(context.Context, ports.EventEnvelope) error {
	return errors.New("outbox offline")
}

type failingTokens struct {
	ports.TokenStore
}

func (failingTokens) ConsumeToken(context.Context, string, string, time.Time) (entities.VoterToken, error) {
	return entities.VoterToken{}, errors.New("connection reset")
}

func (failingTokens) CreateTokens(context.Context, []entities.VoterToken) error {
	return errors.New("connection reset")
}

type failingIDs struct{}

func (failingIDs) NewID(context.Context) (string, error) {
	return "", errors.New("entropy source unavailable")
}

func boardBallot() entities.Ballot {
	return entities.Ballot{
		BallotID:      "B",
		ElectionID:    "E",
		Title:         "Board",
		Type:          entities.BallotTypeSingle,
		MaxSelections: 1,
		Options: []entities.BallotOption{
			{OptionID: "X", Text: "Xavier", Order: 0},
			{OptionID: "Y", Text: "Yvonne", Order: 1},
		},
		IsActive: true,
	}
}

func councilBallot() entities.Ballot {
	return entities.Ballot{
		BallotID:      "C",
		ElectionID:    "E",
		Title:         "Council",
		Type:          entities.BallotTypeMultiple,
		MaxSelections: 2,
		Options: []entities.BallotOption{
			{OptionID: "P", Order: 0},
			{OptionID: "Q", Order: 1},
			{OptionID: "R", Order: 2},
		},
		IsActive: true,
	}
}

// seedToken stores the hash of raw for electionID.
func seedToken(store *memory.Store, electionID string, raw string, expiresAt *time.Time) {
	err := store.CreateTokens(context.Background(), []entities.VoterToken{{
		TokenID:    "tok-" + raw,
		ElectionID: electionID,
		TokenHash:  hashing.SHA256{}.HashToken(raw),
		ExpiresAt:  expiresAt,
		CreatedAt:  testNow.Add(-time.Hour),
	}})
	if err != nil {
		panic(err)
	}
}

func newCastUseCase(store *memory.Store, metrics ports.Metrics) CastVoteUseCase {
	return CastVoteUseCase{
		Tokens:  store,
		Ballots: store,
		Votes:   store,
		Outbox:  store,
		Hasher:  hashing.SHA256{},
		Clock:   fixedClock{now: testNow},
		IDGen:   store,
		Metrics: metrics,
	}
}
