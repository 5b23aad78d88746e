// Package rules validates voter selections against ballot definitions.
//
// Each ballot type maps to exactly one Rule. The Registry is a plain dispatch
// table; adding a ranked or scored variant means registering another Rule,
// callers stay unchanged.
package rules

import (
	"fmt"
	"strings"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
)

// Rule checks a raw selection and returns the option ids to persist.
// Implementations must be pure.
type Rule interface {
	Validate(selection []string, ballot entities.Ballot) ([]string, error)
}

type RuleFunc func(selection []string, ballot entities.Ballot) ([]string, error)

func (f RuleFunc) Validate(selection []string, ballot entities.Ballot) ([]string, error) {
	return f(selection, ballot)
}

type Registry struct {
	rules map[entities.BallotType]Rule
}

// NewRegistry returns a registry holding the built-in single and multiple
// choice rules.
func NewRegistry() Registry {
	return Registry{
		rules: map[entities.BallotType]Rule{
			entities.BallotTypeSingle:   SingleChoice{},
			entities.BallotTypeMultiple: MultipleChoice{},
		},
	}
}

// With returns a copy of the registry with rule bound to ballotType.
func (r Registry) With(ballotType entities.BallotType, rule Rule) Registry {
	next := make(map[entities.BallotType]Rule, len(r.rules)+1)
	for key, value := range r.rules {
		next[key] = value
	}
	next[ballotType.Normalize()] = rule
	return Registry{rules: next}
}

func (r Registry) Empty() bool {
	return len(r.rules) == 0
}

func (r Registry) Supports(ballotType entities.BallotType) bool {
	_, ok := r.rules[ballotType.Normalize()]
	return ok
}

func (r Registry) Validate(selection []string, ballot entities.Ballot) ([]string, error) {
	rule, ok := r.rules[ballot.Type.Normalize()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domainerrors.ErrUnsupportedBallotType, string(ballot.Type))
	}
	return rule.Validate(selection, ballot)
}

func trimAll(selection []string) []string {
	out := make([]string, 0, len(selection))
	for _, id := range selection {
		out = append(out, strings.TrimSpace(id))
	}
	return out
}

// dedupe keeps the first occurrence of each id.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func ensureOnBallot(ids []string, ballot entities.Ballot) error {
	for _, id := range ids {
		if !ballot.HasOption(id) {
			return fmt.Errorf("%w: option %q is not on ballot %s", domainerrors.ErrInvalidSelection, id, ballot.BallotID)
		}
	}
	return nil
}
