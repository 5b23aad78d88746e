package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/elections/voting-core/application"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	"ballotbox/contexts/elections/voting-core/domain/rules"
	"ballotbox/contexts/elections/voting-core/ports"
	contractsv1 "ballotbox/contracts/events/v1"
)

const (
	CastOutcomeRecorded          = "recorded"
	CastOutcomeInvalidInput      = "invalid_input"
	CastOutcomeInvalidOrUsed     = "invalid_or_used_token"
	CastOutcomeBallotNotFound    = "ballot_not_found"
	CastOutcomeRejectedSelection = "rejected_selection"
	CastOutcomeStorageFailure    = "storage_unavailable"
)

// voteTimeGranularity coarsens Vote.CreatedAt. The credential's used_at keeps
// the exact consume instant, so the two are never the same value.
const voteTimeGranularity = time.Minute

type CastVoteCommand struct {
	RawToken   string
	ElectionID string
	BallotID   string
	Selection  []string
	Meta       entities.VoteMeta
}

type CastVoteResult struct {
	ElectionID string
	BallotID   string
	OptionIDs  []string
	RecordedAt time.Time
}

// CastVoteUseCase turns one credential into one stored vote.
//
// The token is consumed first and the ballot and selection are checked
// afterwards, so a bad ballot id or selection burns the token without a vote.
// Prevalidate runs the same read-only checks before consuming as well; the
// atomic consume stays the only guard against double voting either way.
type CastVoteUseCase struct {
	Tokens      ports.TokenStore
	Ballots     ports.BallotRepository
	Votes       ports.VoteRepository
	Outbox      ports.OutboxWriter
	Hasher      ports.TokenHasher
	Rules       rules.Registry
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Metrics     ports.Metrics
	Prevalidate bool
	Logger      *slog.Logger
}

func (uc CastVoteUseCase) Execute(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	metrics := application.ResolveMetrics(uc.Metrics)

	rawToken := strings.TrimSpace(cmd.RawToken)
	electionID := strings.TrimSpace(cmd.ElectionID)
	ballotID := strings.TrimSpace(cmd.BallotID)
	if rawToken == "" || electionID == "" || ballotID == "" {
		metrics.CastCompleted(CastOutcomeInvalidInput)
		return CastVoteResult{}, domainerrors.ErrInvalidCastInput
	}

	logger.Info("vote cast started",
		"event", "voting_cast_started",
		"module", application.ModuleName,
		"layer", "application",
		"election_id", electionID,
		"ballot_id", ballotID,
		"prevalidate", uc.Prevalidate,
	)

	if uc.Prevalidate {
		if _, err := uc.resolveSelection(ctx, electionID, ballotID, cmd.Selection); err != nil {
			metrics.CastCompleted(castOutcome(err))
			logger.Warn("vote cast rejected before credential use",
				"event", "voting_cast_prevalidation_failed",
				"module", application.ModuleName,
				"layer", "application",
				"election_id", electionID,
				"ballot_id", ballotID,
				"error", err.Error(),
			)
			return CastVoteResult{}, err
		}
	}

	if _, err := uc.Tokens.ConsumeToken(ctx, electionID, uc.Hasher.HashToken(rawToken), uc.now()); err != nil {
		if errors.Is(err, domainerrors.ErrTokenNotFound) {
			metrics.CastCompleted(CastOutcomeInvalidOrUsed)
			logger.Info("vote cast refused for unusable credential",
				"event", "voting_cast_token_refused",
				"module", application.ModuleName,
				"layer", "application",
				"election_id", electionID,
				"ballot_id", ballotID,
			)
			return CastVoteResult{}, domainerrors.ErrInvalidOrUsedToken
		}
		metrics.CastCompleted(CastOutcomeStorageFailure)
		logger.Error("vote cast credential consume failed",
			"event", "voting_cast_consume_failed",
			"module", application.ModuleName,
			"layer", "application",
			"election_id", electionID,
			"error", err.Error(),
		)
		return CastVoteResult{}, application.StorageError(err)
	}

	optionIDs, err := uc.resolveSelection(ctx, electionID, ballotID, cmd.Selection)
	if err != nil {
		metrics.CastCompleted(castOutcome(err))
		logger.Warn("credential consumed but vote rejected",
			"event", "voting_cast_token_burned",
			"module", application.ModuleName,
			"layer", "application",
			"election_id", electionID,
			"ballot_id", ballotID,
			"error", err.Error(),
		)
		return CastVoteResult{}, err
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		metrics.CastCompleted(CastOutcomeStorageFailure)
		logger.Error("credential consumed but vote id generation failed",
			"event", "voting_cast_vote_id_failed",
			"module", application.ModuleName,
			"layer", "application",
			"election_id", electionID,
			"ballot_id", ballotID,
			"error", err.Error(),
		)
		return CastVoteResult{}, application.StorageError(err)
	}
	vote := entities.Vote{
		VoteID:     voteID,
		ElectionID: electionID,
		BallotID:   ballotID,
		OptionIDs:  optionIDs,
		Meta: entities.VoteMeta{
			IPAddress: strings.TrimSpace(cmd.Meta.IPAddress),
			UserAgent: strings.TrimSpace(cmd.Meta.UserAgent),
		},
		CreatedAt: uc.now().Truncate(voteTimeGranularity),
	}
	if err := uc.Votes.InsertVote(ctx, vote); err != nil {
		metrics.CastCompleted(CastOutcomeStorageFailure)
		logger.Error("credential consumed but vote persistence failed",
			"event", "voting_cast_vote_persist_failed",
			"module", application.ModuleName,
			"layer", "application",
			"election_id", electionID,
			"ballot_id", ballotID,
			"error", err.Error(),
		)
		return CastVoteResult{}, application.StorageError(err)
	}

	// The vote is durable at this point; a lost event must not turn a recorded
	// vote into a reported failure.
	if err := uc.appendVoteRecorded(ctx, vote); err != nil {
		logger.Error("vote recorded event append failed",
			"event", "voting_cast_outbox_failed",
			"module", application.ModuleName,
			"layer", "application",
			"election_id", electionID,
			"ballot_id", ballotID,
			"vote_id", vote.VoteID,
			"error", err.Error(),
		)
	}

	metrics.CastCompleted(CastOutcomeRecorded)
	logger.Info("vote cast recorded",
		"event", "voting_cast_completed",
		"module", application.ModuleName,
		"layer", "application",
		"election_id", electionID,
		"ballot_id", ballotID,
		"selection_count", len(optionIDs),
	)
	return CastVoteResult{
		ElectionID: electionID,
		BallotID:   ballotID,
		OptionIDs:  append([]string(nil), optionIDs...),
		RecordedAt: vote.CreatedAt,
	}, nil
}

func (uc CastVoteUseCase) resolveSelection(
	ctx context.Context,
	electionID string,
	ballotID string,
	selection []string,
) ([]string, error) {
	ballot, err := uc.Ballots.GetBallot(ctx, ballotID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrBallotNotFound) {
			return nil, domainerrors.ErrBallotNotFound
		}
		return nil, application.StorageError(err)
	}
	if strings.TrimSpace(ballot.ElectionID) != electionID {
		return nil, domainerrors.ErrBallotNotFound
	}
	registry := uc.Rules
	if registry.Empty() {
		registry = rules.NewRegistry()
	}
	return registry.Validate(selection, ballot)
}

func (uc CastVoteUseCase) appendVoteRecorded(ctx context.Context, vote entities.Vote) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := electionEnvelope(eventID, contractsv1.TopicVoteRecorded, vote.ElectionID, vote.CreatedAt,
		contractsv1.VoteRecorded{
			VoteID:     vote.VoteID,
			ElectionID: vote.ElectionID,
			BallotID:   vote.BallotID,
			OptionIDs:  vote.OptionIDs,
			OccurredAt: vote.CreatedAt.UTC(),
		},
	)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc CastVoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func castOutcome(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrBallotNotFound):
		return CastOutcomeBallotNotFound
	case errors.Is(err, domainerrors.ErrInvalidSelection), errors.Is(err, domainerrors.ErrUnsupportedBallotType):
		return CastOutcomeRejectedSelection
	default:
		return CastOutcomeStorageFailure
	}
}
