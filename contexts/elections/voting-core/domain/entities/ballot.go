package entities

import (
	"fmt"
	"sort"
	"strings"
	"time"

	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
)

type BallotType string

const (
	BallotTypeSingle   BallotType = "single"
	BallotTypeMultiple BallotType = "multiple"
)

// Normalize returns the registry key for a ballot type.
func (t BallotType) Normalize() BallotType {
	return BallotType(strings.ToLower(strings.TrimSpace(string(t))))
}

type BallotOption struct {
	OptionID string
	Text     string
	Order    int
}

type Ballot struct {
	BallotID      string
	ElectionID    string
	Title         string
	Description   string
	Type          BallotType
	MaxSelections int
	Options       []BallotOption
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (b Ballot) HasOption(optionID string) bool {
	for _, option := range b.Options {
		if option.OptionID == optionID {
			return true
		}
	}
	return false
}

// OrderedOptions returns the options sorted by their order index. Options
// sharing an index keep their stored position.
func (b Ballot) OrderedOptions() []BallotOption {
	items := append([]BallotOption(nil), b.Options...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})
	return items
}

// SelectionCap is the maximum number of distinct options a voter may pick.
// Single-choice ballots are always capped at one regardless of the stored value.
func (b Ballot) SelectionCap() int {
	if b.Type.Normalize() == BallotTypeSingle || b.MaxSelections < 1 {
		return 1
	}
	return b.MaxSelections
}

// ValidateDefinition enforces the structural invariants of a ballot as
// received from election management.
func (b Ballot) ValidateDefinition() error {
	if strings.TrimSpace(b.BallotID) == "" {
		return fmt.Errorf("%w: ballot id is required", domainerrors.ErrInvalidBallotDefinition)
	}
	if strings.TrimSpace(b.ElectionID) == "" {
		return fmt.Errorf("%w: election id is required", domainerrors.ErrInvalidBallotDefinition)
	}
	if b.Type.Normalize() == "" {
		return fmt.Errorf("%w: ballot type is required", domainerrors.ErrInvalidBallotDefinition)
	}
	if b.MaxSelections < 1 {
		return fmt.Errorf("%w: max selections must be at least 1", domainerrors.ErrInvalidBallotDefinition)
	}
	if len(b.Options) < 2 {
		return fmt.Errorf("%w: at least two options are required", domainerrors.ErrInvalidBallotDefinition)
	}
	seen := make(map[string]struct{}, len(b.Options))
	for _, option := range b.Options {
		id := strings.TrimSpace(option.OptionID)
		if id == "" {
			return fmt.Errorf("%w: option id is required", domainerrors.ErrInvalidBallotDefinition)
		}
		if _, exists := seen[id]; exists {
			return fmt.Errorf("%w: duplicate option id %q", domainerrors.ErrInvalidBallotDefinition, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
