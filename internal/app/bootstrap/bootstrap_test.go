package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	votinghttp "ballotbox/contexts/elections/voting-core/transport/http"
	contractsv1 "ballotbox/contracts/events/v1"
	"ballotbox/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DatabaseDriver = config.DriverSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "ballotbox.db")
	cfg.AutoMigrate = true
	cfg.OutboxPollInterval = 20 * time.Millisecond
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedBallot(t *testing.T, core *Core) {
	t.Helper()
	require.NoError(t, core.Repository.SaveBallot(context.Background(), entities.Ballot{
		BallotID:      "B",
		ElectionID:    "E",
		Title:         "Chair",
		Type:          entities.BallotTypeSingle,
		MaxSelections: 1,
		Options: []entities.BallotOption{
			{OptionID: "X", Order: 0},
			{OptionID: "Y", Order: 1},
		},
		IsActive: true,
	}))
}

func TestBuildAPIServesVotingRoutes(t *testing.T) {
	app, err := BuildAPI(testConfig(t), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	seedBallot(t, app.core)

	handler := app.server.Handler()
	post := func(path string, body any, headers map[string]string) *httptest.ResponseRecorder {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := post("/api/v1/elections/E/tokens", votinghttp.IssueTokensRequest{Count: 1}, map[string]string{"X-Organizer-Id": "org"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var issued votinghttp.IssueTokensResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issued))
	require.Len(t, issued.Tokens, 1)

	rec = post("/api/v1/votes/cast", votinghttp.CastVoteRequest{
		Token:      issued.Tokens[0].Token,
		ElectionID: "E",
		BallotID:   "B",
		OptionIDs:  []string{"Y"},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metrics := httptest.NewRecorder()
	handler.ServeHTTP(metrics, req)
	assert.Contains(t, metrics.Body.String(), `ballotbox_vote_casts_total{outcome="recorded"} 1`)
	assert.Contains(t, metrics.Body.String(), "ballotbox_tokens_issued_total 1")

	health := httptest.NewRecorder()
	handler.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestBuildCoreRejectsUnknownHash(t *testing.T) {
	cfg := testConfig(t)
	cfg.TokenHashAlgorithm = "md5"
	_, err := BuildCore(cfg, quietLogger())
	assert.ErrorContains(t, err, "unsupported token hash algorithm")
}

func TestWorkerRelaysOutboxAndProjectsBallots(t *testing.T) {
	worker, err := BuildWorker(testConfig(t), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = worker.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- worker.Run(ctx) }()

	// The worker consumes the ballot event it relays from its own outbox.
	data, err := json.Marshal(map[string]any{
		"ballot_id":   "B9",
		"election_id": "E9",
		"title":       "Treasurer",
		"type":        "single",
		"is_active":   true,
		"options": []map[string]any{
			{"option_id": "A", "order": 0},
			{"option_id": "C", "order": 1},
		},
	})
	require.NoError(t, err)
	require.NoError(t, worker.core.Repository.AppendOutbox(context.Background(), contractsv1.Envelope{
		EventID:    "ballot-evt-9",
		EventType:  contractsv1.TopicBallotUpserted,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}))

	require.Eventually(t, func() bool {
		_, err := worker.core.Repository.GetBallot(context.Background(), "B9")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	pending, err := worker.core.Repository.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	cancel()
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":               ":8080",
		"9090":           ":9090",
		" :7070 ":        ":7070",
		"127.0.0.1:8181": "127.0.0.1:8181",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeAddr(in), "normalizeAddr(%q)", in)
	}
}
