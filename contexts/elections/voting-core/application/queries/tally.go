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
	"ballotbox/contexts/elections/voting-core/domain/tally"
	"ballotbox/contexts/elections/voting-core/ports"
)

type TallyQuery struct {
	ElectionID string
	BallotID   string
}

// TallyUseCase recomputes counts from stored votes on every call; nothing is
// cached between calls.
type TallyUseCase struct {
	Ballots    ports.BallotRepository
	Votes      ports.VoteRepository
	Strategies tally.Registry
	Clock      ports.Clock
	Metrics    ports.Metrics
	Logger     *slog.Logger
}

func (uc TallyUseCase) Execute(ctx context.Context, query TallyQuery) (entities.Tally, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(query.ElectionID)
	ballotID := strings.TrimSpace(query.BallotID)
	if electionID == "" || ballotID == "" {
		return entities.Tally{}, domainerrors.ErrInvalidTallyInput
	}

	ballot, err := uc.Ballots.GetBallot(ctx, ballotID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrBallotNotFound) {
			return entities.Tally{}, domainerrors.ErrBallotNotFound
		}
		return entities.Tally{}, application.StorageError(err)
	}
	if strings.TrimSpace(ballot.ElectionID) != electionID {
		return entities.Tally{}, domainerrors.ErrBallotNotFound
	}

	votes, err := uc.Votes.ListVotesByBallot(ctx, electionID, ballotID)
	if err != nil {
		logger.Error("tally vote listing failed",
			"event", "voting_tally_list_failed",
			"module", application.ModuleName,
			"layer", "application",
			"election_id", electionID,
			"ballot_id", ballotID,
			"error", err.Error(),
		)
		return entities.Tally{}, application.StorageError(err)
	}

	registry := uc.Strategies
	if registry.Empty() {
		registry = tally.NewRegistry()
	}
	result, err := registry.Count(ballot, votes)
	if err != nil {
		return entities.Tally{}, err
	}
	result.ComputedAt = uc.now()
	application.ResolveMetrics(uc.Metrics).TallyComputed(string(result.BallotType))

	logger.Debug("tally computed",
		"event", "voting_tally_computed",
		"module", application.ModuleName,
		"layer", "application",
		"election_id", electionID,
		"ballot_id", ballotID,
		"total_votes", result.TotalVotes,
	)
	return result, nil
}

func (uc TallyUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
