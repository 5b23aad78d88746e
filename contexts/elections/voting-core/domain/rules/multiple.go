package rules

import (
	"fmt"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
)

// MultipleChoice accepts between one and the ballot's selection cap of
// distinct options. Duplicates are removed before the cap is applied.
type MultipleChoice struct{}

func (MultipleChoice) Validate(selection []string, ballot entities.Ballot) ([]string, error) {
	ids := dedupe(trimAll(selection))
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one option must be selected", domainerrors.ErrInvalidSelection)
	}
	if limit := ballot.SelectionCap(); len(ids) > limit {
		return nil, fmt.Errorf("%w: at most %d options may be selected, got %d", domainerrors.ErrInvalidSelection, limit, len(ids))
	}
	if err := ensureOnBallot(ids, ballot); err != nil {
		return nil, err
	}
	return ids, nil
}
