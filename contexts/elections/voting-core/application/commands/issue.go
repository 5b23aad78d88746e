package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/ports"
	contractsv1 "ballotbox/contracts/events/v1"
)

const (
	defaultTokenTTL   = 24 * time.Hour
	defaultBatchLimit = 5000
)

type IssueTokensCommand struct {
	ElectionID string
	Recipients []string
	// Count is used only when Recipients is empty.
	Count     int
	ExpiresIn time.Duration
	IssuedBy  string
}

// IssuedToken holds a raw credential. It is returned once and never stored.
type IssuedToken struct {
	Recipient string
	RawToken  string
}

type IssueTokensResult struct {
	ElectionID string
	ExpiresAt  time.Time
	Tokens     []IssuedToken
}

type IssueTokensUseCase struct {
	Tokens     ports.TokenStore
	Outbox     ports.OutboxWriter
	Hasher     ports.TokenHasher
	Generator  ports.TokenGenerator
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Metrics    ports.Metrics
	DefaultTTL time.Duration
	BatchLimit int
	Logger     *slog.Logger
}

func (uc IssueTokensUseCase) Execute(ctx context.Context, cmd IssueTokensCommand) (IssueTokensResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	if electionID == "" {
		return IssueTokensResult{}, fmt.Errorf("%w: election id is required", domainerrors.ErrInvalidIssueInput)
	}
	if cmd.ExpiresIn < 0 {
		return IssueTokensResult{}, fmt.Errorf("%w: expiry must not be negative", domainerrors.ErrInvalidIssueInput)
	}

	recipients, err := normalizeRecipients(cmd.Recipients)
	if err != nil {
		return IssueTokensResult{}, err
	}
	count := len(recipients)
	if count == 0 {
		count = cmd.Count
	}
	if count <= 0 {
		return IssueTokensResult{}, fmt.Errorf("%w: at least one recipient is required", domainerrors.ErrInvalidIssueInput)
	}
	if limit := uc.batchLimit(); count > limit {
		return IssueTokensResult{}, fmt.Errorf("%w: batch of %d exceeds limit %d", domainerrors.ErrInvalidIssueInput, count, limit)
	}

	logger.Info("voter token issuance started",
		"event", "voting_tokens_issue_started",
		"module", application.ModuleName,
		"layer", "application",
		"election_id", electionID,
		"issued_by", strings.TrimSpace(cmd.IssuedBy),
		"count", count,
	)

	now := uc.now()
	ttl := cmd.ExpiresIn
	if ttl == 0 {
		ttl = uc.defaultTTL()
	}
	expiresAt := now.Add(ttl)

	records := make([]entities.VoterToken, 0, count)
	issued := make([]IssuedToken, 0, count)
	for i := 0; i < count; i++ {
		raw, err := uc.Generator.NewToken()
		if err != nil {
			logger.Error("voter token generation failed",
				"event", "voting_tokens_generate_failed",
				"module", application.ModuleName,
				"layer", "application",
				"election_id", electionID,
				"error", err.Error(),
			)
			return IssueTokensResult{}, err
		}
		tokenID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return IssueTokensResult{}, application.StorageError(err)
		}
		recipient := ""
		if i < len(recipients) {
			recipient = recipients[i]
		}
		expiry := expiresAt
		records = append(records, entities.VoterToken{
			TokenID:    tokenID,
			ElectionID: electionID,
			TokenHash:  uc.Hasher.HashToken(raw),
			Recipient:  recipient,
			ExpiresAt:  &expiry,
			CreatedAt:  now,
		})
		issued = append(issued, IssuedToken{Recipient: recipient, RawToken: raw})
	}

	if err := uc.Tokens.CreateTokens(ctx, records); err != nil {
		logger.Error("voter token persistence failed",
			"event", "voting_tokens_persist_failed",
			"module", application.ModuleName,
			"layer", "application",
			"election_id", electionID,
			"count", count,
			"error", err.Error(),
		)
		if errors.Is(err, domainerrors.ErrDuplicateToken) {
			return IssueTokensResult{}, err
		}
		return IssueTokensResult{}, application.StorageError(err)
	}
	application.ResolveMetrics(uc.Metrics).TokensIssued(count)

	if err := uc.appendTokensIssued(ctx, electionID, count, expiresAt, now); err != nil {
		logger.Error("voter tokens issued event append failed",
			"event", "voting_tokens_outbox_failed",
			"module", application.ModuleName,
			"layer", "application",
			"election_id", electionID,
			"error", err.Error(),
		)
	}

	logger.Info("voter token issuance completed",
		"event", "voting_tokens_issue_completed",
		"module", application.ModuleName,
		"layer", "application",
		"election_id", electionID,
		"count", count,
		"expires_at", expiresAt.Format(time.RFC3339),
	)
	return IssueTokensResult{
		ElectionID: electionID,
		ExpiresAt:  expiresAt,
		Tokens:     issued,
	}, nil
}

func (uc IssueTokensUseCase) appendTokensIssued(
	ctx context.Context,
	electionID string,
	count int,
	expiresAt time.Time,
	now time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := electionEnvelope(eventID, contractsv1.TopicVoterTokensIssued, electionID, now,
		contractsv1.VoterTokensIssued{
			ElectionID: electionID,
			Count:      count,
			ExpiresAt:  expiresAt.UTC(),
		},
	)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc IssueTokensUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc IssueTokensUseCase) defaultTTL() time.Duration {
	if uc.DefaultTTL <= 0 {
		return defaultTokenTTL
	}
	return uc.DefaultTTL
}

func (uc IssueTokensUseCase) batchLimit() int {
	if uc.BatchLimit <= 0 {
		return defaultBatchLimit
	}
	return uc.BatchLimit
}

// normalizeRecipients lower-cases, validates and dedupes addresses while
// keeping input order.
func normalizeRecipients(items []string) ([]string, error) {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		value := strings.ToLower(strings.TrimSpace(item))
		if value == "" {
			continue
		}
		parsed, err := mail.ParseAddress(value)
		if err != nil || parsed.Address != value {
			return nil, fmt.Errorf("%w: invalid recipient %q", domainerrors.ErrInvalidIssueInput, item)
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out, nil
}
