package entities

import "time"

// VoteMeta is request provenance kept for abuse analysis only.
type VoteMeta struct {
	IPAddress string
	UserAgent string
}

// Vote is immutable once stored. It has no field that references a voter
// token or a user.
type Vote struct {
	VoteID     string
	ElectionID string
	BallotID   string
	OptionIDs  []string
	Meta       VoteMeta
	CreatedAt  time.Time
}

type OptionCount struct {
	OptionID string
	Text     string
	Count    int
}

// Tally is a point-in-time aggregate for one ballot. Counts are selection
// counts ordered by count, highest first.
type Tally struct {
	ElectionID  string
	BallotID    string
	BallotTitle string
	BallotType  BallotType
	TotalVotes  int
	Counts      []OptionCount
	ComputedAt  time.Time
}

func (t Tally) CountFor(optionID string) int {
	for _, item := range t.Counts {
		if item.OptionID == optionID {
			return item.Count
		}
	}
	return 0
}

func (t Tally) AsMap() map[string]int {
	out := make(map[string]int, len(t.Counts))
	for _, item := range t.Counts {
		out[item.OptionID] = item.Count
	}
	return out
}
