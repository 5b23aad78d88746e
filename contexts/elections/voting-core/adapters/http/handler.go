package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"ballotbox/contexts/elections/voting-core/application/commands"
	"ballotbox/contexts/elections/voting-core/application/queries"
	"ballotbox/contexts/elections/voting-core/domain/entities"
	httptransport "ballotbox/contexts/elections/voting-core/transport/http"
)

type Handler struct {
	Cast   commands.CastVoteUseCase
	Issue  commands.IssueTokensUseCase
	Check  queries.CheckTokenUseCase
	Tally  queries.TallyUseCase
	Logger *slog.Logger
}

// CheckTokenHandler returns a check outcome for well-formed input; only
// input and storage failures come back as errors.
func (h Handler) CheckTokenHandler(
	ctx context.Context,
	req httptransport.CheckTokenRequest,
) (httptransport.CheckTokenResponse, error) {
	result, err := h.Check.Execute(ctx, queries.CheckTokenQuery{
		RawToken:   req.Token,
		ElectionID: req.ElectionID,
	})
	if err != nil {
		return httptransport.CheckTokenResponse{}, err
	}
	return httptransport.CheckTokenResponse{
		Valid:  result.Valid,
		Reason: string(result.Reason),
	}, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	req httptransport.CastVoteRequest,
	meta entities.VoteMeta,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Cast.Execute(ctx, commands.CastVoteCommand{
		RawToken:   req.Token,
		ElectionID: req.ElectionID,
		BallotID:   req.BallotID,
		Selection:  req.OptionIDs,
		Meta:       meta,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		Recorded:   true,
		ElectionID: result.ElectionID,
		BallotID:   result.BallotID,
		OptionIDs:  result.OptionIDs,
		RecordedAt: result.RecordedAt,
	}, nil
}

func (h Handler) BallotResultsHandler(
	ctx context.Context,
	electionID string,
	ballotID string,
) (httptransport.BallotResultsResponse, error) {
	result, err := h.Tally.Execute(ctx, queries.TallyQuery{
		ElectionID: electionID,
		BallotID:   ballotID,
	})
	if err != nil {
		return httptransport.BallotResultsResponse{}, err
	}
	items := make([]httptransport.OptionCountItem, 0, len(result.Counts))
	for _, item := range result.Counts {
		items = append(items, httptransport.OptionCountItem{
			OptionID: item.OptionID,
			Text:     item.Text,
			Count:    item.Count,
		})
	}
	return httptransport.BallotResultsResponse{
		ElectionID:  result.ElectionID,
		BallotID:    result.BallotID,
		BallotTitle: result.BallotTitle,
		BallotType:  string(result.BallotType),
		TotalVotes:  result.TotalVotes,
		Results:     items,
		ComputedAt:  result.ComputedAt,
	}, nil
}

func (h Handler) IssueTokensHandler(
	ctx context.Context,
	organizerID string,
	electionID string,
	req httptransport.IssueTokensRequest,
) (httptransport.IssueTokensResponse, error) {
	result, err := h.Issue.Execute(ctx, commands.IssueTokensCommand{
		ElectionID: electionID,
		Recipients: req.Emails,
		Count:      req.Count,
		ExpiresIn:  time.Duration(req.ExpiryHours) * time.Hour,
		IssuedBy:   organizerID,
	})
	if err != nil {
		return httptransport.IssueTokensResponse{}, err
	}
	tokens := make([]httptransport.IssuedTokenItem, 0, len(result.Tokens))
	for _, token := range result.Tokens {
		tokens = append(tokens, httptransport.IssuedTokenItem{
			Email: token.Recipient,
			Token: token.RawToken,
		})
	}
	return httptransport.IssueTokensResponse{
		ElectionID: result.ElectionID,
		ExpiresAt:  result.ExpiresAt,
		Count:      len(tokens),
		Tokens:     tokens,
	}, nil
}
