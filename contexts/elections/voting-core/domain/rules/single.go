package rules

import (
	"fmt"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
)

// SingleChoice accepts exactly one option. Repeated ids are not collapsed.
type SingleChoice struct{}

func (SingleChoice) Validate(selection []string, ballot entities.Ballot) ([]string, error) {
	ids := trimAll(selection)
	if len(ids) != 1 {
		return nil, fmt.Errorf("%w: exactly one option must be selected, got %d", domainerrors.ErrInvalidSelection, len(ids))
	}
	if err := ensureOnBallot(ids, ballot); err != nil {
		return nil, err
	}
	return ids, nil
}
