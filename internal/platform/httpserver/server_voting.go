package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	votingerrors "ballotbox/contexts/elections/voting-core/domain/errors"
	votinghttp "ballotbox/contexts/elections/voting-core/transport/http"
)

func (s *Server) handleCheckToken(w http.ResponseWriter, r *http.Request) {
	var req votinghttp.CheckTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.voting.Handler.CheckTokenHandler(r.Context(), req)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	if !resp.Valid {
		writeJSON(w, http.StatusUnauthorized, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req votinghttp.CastVoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.voting.Handler.CastVoteHandler(r.Context(), req, entities.VoteMeta{
		IPAddress: resolveClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleBallotResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.BallotResultsHandler(
		r.Context(),
		r.PathValue("election_id"),
		r.PathValue("ballot_id"),
	)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Organizer authentication happens upstream; the header only carries the
// authenticated identity for audit logging.
func (s *Server) handleIssueTokens(w http.ResponseWriter, r *http.Request) {
	organizerID := strings.TrimSpace(r.Header.Get("X-Organizer-Id"))
	if organizerID == "" {
		writeVotingError(w, http.StatusUnauthorized, "missing_organizer", "X-Organizer-Id header is required")
		return
	}
	var req votinghttp.IssueTokensRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.voting.Handler.IssueTokensHandler(r.Context(), organizerID, r.PathValue("election_id"), req)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusCreated, resp)
}

// writeVotingDomainError never reveals why a credential was refused on cast.
func writeVotingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, votingerrors.ErrInvalidOrUsedToken):
		writeVotingError(w, http.StatusUnauthorized, "invalid_or_used_token", "token is invalid or has already been used")
	case errors.Is(err, votingerrors.ErrTokenExpired):
		writeVotingError(w, http.StatusUnauthorized, "token_expired", err.Error())
	case errors.Is(err, votingerrors.ErrBallotNotFound):
		writeVotingError(w, http.StatusNotFound, "ballot_not_found", err.Error())
	case errors.Is(err, votingerrors.ErrUnsupportedBallotType):
		writeVotingError(w, http.StatusUnprocessableEntity, "unsupported_ballot_type", err.Error())
	case errors.Is(err, votingerrors.ErrInvalidSelection):
		writeVotingError(w, http.StatusUnprocessableEntity, "invalid_selection", err.Error())
	case errors.Is(err, votingerrors.ErrInvalidCastInput),
		errors.Is(err, votingerrors.ErrInvalidCheckInput),
		errors.Is(err, votingerrors.ErrInvalidIssueInput),
		errors.Is(err, votingerrors.ErrInvalidTallyInput):
		writeVotingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, votingerrors.ErrDuplicateToken):
		writeVotingError(w, http.StatusConflict, "duplicate_token", "token collision, retry issuance")
	case errors.Is(err, votingerrors.ErrStorageUnavailable):
		writeVotingError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage is temporarily unavailable")
	default:
		writeVotingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeVotingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
