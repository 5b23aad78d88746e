package entities

import (
	"errors"
	"testing"
	"time"

	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
)

func TestValidateDefinition(t *testing.T) {
	valid := Ballot{
		BallotID:      "B",
		ElectionID:    "E",
		Type:          BallotTypeSingle,
		MaxSelections: 1,
		Options: []BallotOption{
			{OptionID: "X"},
			{OptionID: "Y"},
		},
	}
	if err := valid.ValidateDefinition(); err != nil {
		t.Fatalf("expected valid ballot, got %v", err)
	}

	cases := map[string]func(b *Ballot){
		"missing ballot id":   func(b *Ballot) { b.BallotID = " " },
		"missing election id": func(b *Ballot) { b.ElectionID = "" },
		"missing type":        func(b *Ballot) { b.Type = "" },
		"zero max selections": func(b *Ballot) { b.MaxSelections = 0 },
		"single option":       func(b *Ballot) { b.Options = b.Options[:1] },
		"duplicate option":    func(b *Ballot) { b.Options = []BallotOption{{OptionID: "X"}, {OptionID: "X"}} },
		"blank option id":     func(b *Ballot) { b.Options = []BallotOption{{OptionID: "X"}, {OptionID: " "}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := valid
			b.Options = append([]BallotOption(nil), valid.Options...)
			mutate(&b)
			if err := b.ValidateDefinition(); !errors.Is(err, domainerrors.ErrInvalidBallotDefinition) {
				t.Fatalf("expected invalid ballot definition, got %v", err)
			}
		})
	}
}

func TestSelectionCap(t *testing.T) {
	if got := (Ballot{Type: BallotTypeSingle, MaxSelections: 4}).SelectionCap(); got != 1 {
		t.Fatalf("expected single ballot cap 1, got %d", got)
	}
	if got := (Ballot{Type: BallotTypeMultiple, MaxSelections: 3}).SelectionCap(); got != 3 {
		t.Fatalf("expected multiple ballot cap 3, got %d", got)
	}
	if got := (Ballot{Type: BallotTypeMultiple}).SelectionCap(); got != 1 {
		t.Fatalf("expected unset cap to fall back to 1, got %d", got)
	}
}

func TestOrderedOptionsIsStable(t *testing.T) {
	b := Ballot{Options: []BallotOption{
		{OptionID: "C", Order: 2},
		{OptionID: "A", Order: 1},
		{OptionID: "B", Order: 1},
	}}
	got := b.OrderedOptions()
	if got[0].OptionID != "A" || got[1].OptionID != "B" || got[2].OptionID != "C" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if b.Options[0].OptionID != "C" {
		t.Fatalf("expected original slice untouched")
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	if (VoterToken{}).Expired(now) {
		t.Fatalf("token without expiry must never expire")
	}
	if !(VoterToken{ExpiresAt: &past}).Expired(now) {
		t.Fatalf("expected past expiry to be expired")
	}
	if (VoterToken{ExpiresAt: &future}).Expired(now) {
		t.Fatalf("expected future expiry to be usable")
	}
	if (VoterToken{ExpiresAt: &now}).Expired(now) {
		t.Fatalf("expected expiry instant itself to be usable")
	}
}
