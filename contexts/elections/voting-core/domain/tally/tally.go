// Package tally aggregates stored votes into per-option counts. Strategies
// are selected by ballot type through the same dispatch-table shape used by
// the selection rules.
package tally

import (
	"fmt"
	"sort"

	"ballotbox/contexts/elections/voting-core/domain/entities"
	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
)

type Strategy interface {
	Count(ballot entities.Ballot, votes []entities.Vote) entities.Tally
}

type StrategyFunc func(ballot entities.Ballot, votes []entities.Vote) entities.Tally

func (f StrategyFunc) Count(ballot entities.Ballot, votes []entities.Vote) entities.Tally {
	return f(ballot, votes)
}

type Registry struct {
	strategies map[entities.BallotType]Strategy
}

func NewRegistry() Registry {
	return Registry{
		strategies: map[entities.BallotType]Strategy{
			entities.BallotTypeSingle:   StrategyFunc(SelectionCount),
			entities.BallotTypeMultiple: StrategyFunc(SelectionCount),
		},
	}
}

func (r Registry) With(ballotType entities.BallotType, strategy Strategy) Registry {
	next := make(map[entities.BallotType]Strategy, len(r.strategies)+1)
	for key, value := range r.strategies {
		next[key] = value
	}
	next[ballotType.Normalize()] = strategy
	return Registry{strategies: next}
}

func (r Registry) Empty() bool {
	return len(r.strategies) == 0
}

func (r Registry) Count(ballot entities.Ballot, votes []entities.Vote) (entities.Tally, error) {
	strategy, ok := r.strategies[ballot.Type.Normalize()]
	if !ok {
		return entities.Tally{}, fmt.Errorf("%w: %q", domainerrors.ErrUnsupportedBallotType, string(ballot.Type))
	}
	return strategy.Count(ballot, votes), nil
}

// SelectionCount adds one to every option id of every vote, so a vote that
// picked k options contributes k increments. Every ballot option is reported,
// with zero when nobody picked it. Ids no longer on the ballot are kept at the
// end of their count group.
func SelectionCount(ballot entities.Ballot, votes []entities.Vote) entities.Tally {
	counts := make(map[string]int, len(ballot.Options))
	for _, vote := range votes {
		for _, optionID := range vote.OptionIDs {
			counts[optionID]++
		}
	}

	items := make([]entities.OptionCount, 0, len(counts)+len(ballot.Options))
	listed := make(map[string]struct{}, len(ballot.Options))
	for _, option := range ballot.OrderedOptions() {
		listed[option.OptionID] = struct{}{}
		items = append(items, entities.OptionCount{
			OptionID: option.OptionID,
			Text:     option.Text,
			Count:    counts[option.OptionID],
		})
	}
	orphans := make([]string, 0)
	for optionID := range counts {
		if _, ok := listed[optionID]; !ok {
			orphans = append(orphans, optionID)
		}
	}
	sort.Strings(orphans)
	for _, optionID := range orphans {
		items = append(items, entities.OptionCount{OptionID: optionID, Count: counts[optionID]})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Count > items[j].Count
	})

	return entities.Tally{
		ElectionID:  ballot.ElectionID,
		BallotID:    ballot.BallotID,
		BallotTitle: ballot.Title,
		BallotType:  ballot.Type.Normalize(),
		TotalVotes:  len(votes),
		Counts:      items,
	}
}
