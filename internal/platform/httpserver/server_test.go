package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	votingcore "ballotbox/contexts/elections/voting-core"
	"ballotbox/contexts/elections/voting-core/adapters/hashing"
	promadapter "ballotbox/contexts/elections/voting-core/adapters/prometheus"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	votinghttp "ballotbox/contexts/elections/voting-core/transport/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, votingcore.Module) {
	t.Helper()
	module := votingcore.NewInMemoryModule([]entities.Ballot{{
		BallotID:      "B",
		ElectionID:    "E",
		Title:         "Chair",
		Type:          entities.BallotTypeSingle,
		MaxSelections: 1,
		Options: []entities.BallotOption{
			{OptionID: "X", Text: "Xavier", Order: 0},
			{OptionID: "Y", Text: "Yvonne", Order: 1},
		},
		IsActive: true,
	}}, nil)
	err := module.Store.CreateTokens(context.Background(), []entities.VoterToken{{
		TokenID:    "t1",
		ElectionID: "E",
		TokenHash:  hashing.SHA256{}.HashToken("abc123"),
	}})
	require.NoError(t, err)
	return New(module, nil, "", opts...), module
}

func do(t *testing.T, server *Server, method string, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch value := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(value))
	default:
		raw, err := json.Marshal(value)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCastFlowOverHTTP(t *testing.T) {
	server, module := newTestServer(t)

	rec := do(t, server, http.MethodPost, "/api/v1/votes/validate", votinghttp.CheckTokenRequest{Token: "abc123", ElectionID: "E"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[votinghttp.CheckTokenResponse](t, rec).Valid)

	rec = do(t, server, http.MethodPost, "/api/v1/votes/cast", votinghttp.CastVoteRequest{
		Token:      "abc123",
		ElectionID: "E",
		BallotID:   "B",
		OptionIDs:  []string{"X"},
	}, map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1", "User-Agent": "ballot-test"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, decode[votinghttp.CastVoteResponse](t, rec).Recorded)

	votes, err := module.Store.ListVotesByBallot(context.Background(), "E", "B")
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "203.0.113.9", votes[0].Meta.IPAddress)
	assert.Equal(t, "ballot-test", votes[0].Meta.UserAgent)

	rec = do(t, server, http.MethodPost, "/api/v1/votes/cast", votinghttp.CastVoteRequest{
		Token:      "abc123",
		ElectionID: "E",
		BallotID:   "B",
		OptionIDs:  []string{"Y"},
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_or_used_token", decode[votinghttp.ErrorResponse](t, rec).Code)

	rec = do(t, server, http.MethodPost, "/api/v1/votes/validate", votinghttp.CheckTokenRequest{Token: "abc123", ElectionID: "E"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "already_used", decode[votinghttp.CheckTokenResponse](t, rec).Reason)

	rec = do(t, server, http.MethodGet, "/api/v1/votes/results/E/B", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[votinghttp.BallotResultsResponse](t, rec)
	assert.Equal(t, 1, results.TotalVotes)
	require.Len(t, results.Results, 2)
	assert.Equal(t, votinghttp.OptionCountItem{OptionID: "X", Text: "Xavier", Count: 1}, results.Results[0])
	assert.Equal(t, 0, results.Results[1].Count)
}

func TestErrorStatusMapping(t *testing.T) {
	server, _ := newTestServer(t)
	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"malformed json", http.MethodPost, "/api/v1/votes/cast", "{not json", http.StatusBadRequest, "invalid_json"},
		{"missing fields", http.MethodPost, "/api/v1/votes/cast", votinghttp.CastVoteRequest{Token: "abc123"}, http.StatusBadRequest, "invalid_request"},
		{"unknown token", http.MethodPost, "/api/v1/votes/cast", votinghttp.CastVoteRequest{Token: "nope", ElectionID: "E", BallotID: "B", OptionIDs: []string{"X"}}, http.StatusUnauthorized, "invalid_or_used_token"},
		{"bad selection", http.MethodPost, "/api/v1/votes/cast", votinghttp.CastVoteRequest{Token: "abc123", ElectionID: "E", BallotID: "B", OptionIDs: []string{"X", "Y"}}, http.StatusUnprocessableEntity, "invalid_selection"},
		{"unknown ballot results", http.MethodGet, "/api/v1/votes/results/E/missing", nil, http.StatusNotFound, "ballot_not_found"},
		{"blank check input", http.MethodPost, "/api/v1/votes/validate", votinghttp.CheckTokenRequest{ElectionID: "E"}, http.StatusBadRequest, "invalid_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, server, tc.method, tc.path, tc.body, nil)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decode[votinghttp.ErrorResponse](t, rec).Code)
		})
	}
}

func TestIssueTokensRequiresOrganizer(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, http.MethodPost, "/api/v1/elections/E/tokens", votinghttp.IssueTokensRequest{Count: 2}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_organizer", decode[votinghttp.ErrorResponse](t, rec).Code)

	rec = do(t, server, http.MethodPost, "/api/v1/elections/E/tokens", votinghttp.IssueTokensRequest{
		Emails: []string{"ana@example.org"},
	}, map[string]string{"X-Organizer-Id": "org-1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	issued := decode[votinghttp.IssueTokensResponse](t, rec)
	require.Equal(t, 1, issued.Count)

	rec = do(t, server, http.MethodPost, "/api/v1/votes/cast", votinghttp.CastVoteRequest{
		Token:      issued.Tokens[0].Token,
		ElectionID: "E",
		BallotID:   "B",
		OptionIDs:  []string{"Y"},
	}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, server, http.MethodPost, "/api/v1/elections/E/tokens", votinghttp.IssueTokensRequest{
		Emails: []string{"broken"},
	}, map[string]string{"X-Organizer-Id": "org-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthMetricsAndDocs(t *testing.T) {
	reg := prometheus.NewRegistry()
	healthy := true
	module := votingcore.NewModule(votingcore.Dependencies{Metrics: promadapter.NewMetrics(reg)})
	server := New(module, nil, ":0",
		WithMetrics(reg),
		WithHealthCheck(func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("db down")
		}),
	)

	rec := do(t, server, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	healthy = false
	rec = do(t, server, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// Blank input is rejected before any store is touched, and still counted.
	rec = do(t, server, http.MethodPost, "/api/v1/votes/cast", votinghttp.CastVoteRequest{}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, server, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ballotbox_vote_casts_total{outcome="invalid_input"} 1`)

	rec = do(t, server, http.MethodGet, "/swagger/doc.json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "/api/v1/votes/cast"))
}

func TestResolveClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:41234"
	assert.Equal(t, "192.0.2.10", resolveClientIP(req))

	req.Header.Set("X-Forwarded-For", " 198.51.100.1 , 10.0.0.2")
	assert.Equal(t, "198.51.100.1", resolveClientIP(req))
}

func TestStartStopsOnCancel(t *testing.T) {
	server, _ := newTestServer(t)
	server.addr = "127.0.0.1:0"
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
