package queries

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"
)

type CheckTokenQuery struct {
	RawToken   string
	ElectionID string
}

type CheckTokenResult struct {
	Valid  bool
	Reason entities.TokenCheckReason
}

// Err maps an invalid result to its sentinel error; it is nil when valid.
func (r CheckTokenResult) Err() error {
	switch {
	case r.Valid:
		return nil
	case r.Reason == entities.TokenCheckAlreadyUsed:
		return domainerrors.ErrTokenAlreadyUsed
	case r.Reason == entities.TokenCheckExpired:
		return domainerrors.ErrTokenExpired
	default:
		return domainerrors.ErrTokenNotFound
	}
}

// CheckTokenUseCase is a read-only pre-flight. A valid result is not a
// reservation; a concurrent cast may consume the token right after.
type CheckTokenUseCase struct {
	Tokens  ports.TokenStore
	Hasher  ports.TokenHasher
	Clock   ports.Clock
	Metrics ports.Metrics
	Logger  *slog.Logger
}

func (uc CheckTokenUseCase) Execute(ctx context.Context, query CheckTokenQuery) (CheckTokenResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	metrics := application.ResolveMetrics(uc.Metrics)

	rawToken := strings.TrimSpace(query.RawToken)
	electionID := strings.TrimSpace(query.ElectionID)
	if rawToken == "" || electionID == "" {
		return CheckTokenResult{}, domainerrors.ErrInvalidCheckInput
	}

	token, err := uc.Tokens.LookupToken(ctx, electionID, uc.Hasher.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, domainerrors.ErrTokenNotFound) {
			metrics.TokenChecked(string(entities.TokenCheckNotFound))
			return CheckTokenResult{Reason: entities.TokenCheckNotFound}, nil
		}
		logger.Error("voter token lookup failed",
			"event", "voting_token_check_failed",
			"module", application.ModuleName,
			"layer", "application",
			"election_id", electionID,
			"error", err.Error(),
		)
		return CheckTokenResult{}, application.StorageError(err)
	}

	result := classify(token, uc.now())
	outcome := string(result.Reason)
	if result.Valid {
		outcome = "valid"
	}
	metrics.TokenChecked(outcome)
	logger.Debug("voter token checked",
		"event", "voting_token_checked",
		"module", application.ModuleName,
		"layer", "application",
		"election_id", electionID,
		"outcome", outcome,
	)
	return result, nil
}

// classify reports used before expired so a spent token never reads as
// merely stale.
func classify(token entities.VoterToken, now time.Time) CheckTokenResult {
	switch {
	case token.Used:
		return CheckTokenResult{Reason: entities.TokenCheckAlreadyUsed}
	case token.Expired(now):
		return CheckTokenResult{Reason: entities.TokenCheckExpired}
	default:
		return CheckTokenResult{Valid: true}
	}
}

func (uc CheckTokenUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
