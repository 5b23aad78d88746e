package entities

import "time"

// VoterToken is the stored side of a one-time credential. The raw value is
// never kept; TokenHash is the only handle. A token carries no reference to
// the vote it authorized.
type VoterToken struct {
	TokenID    string
	ElectionID string
	TokenHash  string
	Recipient  string
	Used       bool
	UsedAt     *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
}

// Expired reports whether the token is past its expiry at now. Tokens without
// an expiry never expire.
func (t VoterToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}

type TokenCheckReason string

const (
	TokenCheckValid       TokenCheckReason = ""
	TokenCheckNotFound    TokenCheckReason = "not_found"
	TokenCheckAlreadyUsed TokenCheckReason = "already_used"
	TokenCheckExpired     TokenCheckReason = "expired"
)
