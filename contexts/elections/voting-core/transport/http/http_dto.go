package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CheckTokenRequest struct {
	Token      string `json:"token"`
	ElectionID string `json:"election_id"`
}

type CheckTokenResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type CastVoteRequest struct {
	Token      string   `json:"token"`
	ElectionID string   `json:"election_id"`
	BallotID   string   `json:"ballot_id"`
	OptionIDs  []string `json:"option_ids"`
}

type CastVoteResponse struct {
	Recorded   bool      `json:"recorded"`
	ElectionID string    `json:"election_id"`
	BallotID   string    `json:"ballot_id"`
	OptionIDs  []string  `json:"option_ids"`
	RecordedAt time.Time `json:"recorded_at"`
}

type OptionCountItem struct {
	OptionID string `json:"option_id"`
	Text     string `json:"text,omitempty"`
	Count    int    `json:"count"`
}

type BallotResultsResponse struct {
	ElectionID  string            `json:"election_id"`
	BallotID    string            `json:"ballot_id"`
	BallotTitle string            `json:"ballot_title"`
	BallotType  string            `json:"ballot_type"`
	TotalVotes  int               `json:"total_votes"`
	Results     []OptionCountItem `json:"results"`
	ComputedAt  time.Time         `json:"computed_at"`
}

type IssueTokensRequest struct {
	Emails      []string `json:"emails"`
	Count       int      `json:"count,omitempty"`
	ExpiryHours int      `json:"expiry_hours,omitempty"`
}

type IssuedTokenItem struct {
	Email string `json:"email,omitempty"`
	Token string `json:"token"`
}

type IssueTokensResponse struct {
	ElectionID string            `json:"election_id"`
	ExpiresAt  time.Time         `json:"expires_at"`
	Count      int               `json:"count"`
	Tokens     []IssuedTokenItem `json:"tokens"`
}
