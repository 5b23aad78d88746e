package main

import (
	"fmt"
	"os"
	"time"

	"ballotbox/contexts/elections/voting-core/domain/entities"

	"gopkg.in/yaml.v3"
)

type ballotFile struct {
	BallotID      string `yaml:"ballot_id"`
	ElectionID    string `yaml:"election_id"`
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	Type          string `yaml:"type"`
	MaxSelections int    `yaml:"max_selections"`
	Inactive      bool   `yaml:"inactive"`
	Options       []struct {
		OptionID string `yaml:"option_id"`
		Text     string `yaml:"text"`
	} `yaml:"options"`
}

// readBallotFile parses a ballot definition. Option order follows the file.
func readBallotFile(path string, now time.Time) (entities.Ballot, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return entities.Ballot{}, fmt.Errorf("read ballot file: %w", err)
	}
	return parseBallot(buf, now)
}

func parseBallot(buf []byte, now time.Time) (entities.Ballot, error) {
	var file ballotFile
	if err := yaml.Unmarshal(buf, &file); err != nil {
		return entities.Ballot{}, fmt.Errorf("parse ballot file: %w", err)
	}
	ballot := entities.Ballot{
		BallotID:      file.BallotID,
		ElectionID:    file.ElectionID,
		Title:         file.Title,
		Description:   file.Description,
		Type:          entities.BallotType(file.Type).Normalize(),
		MaxSelections: file.MaxSelections,
		IsActive:      !file.Inactive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if ballot.Type == "" {
		ballot.Type = entities.BallotTypeSingle
	}
	if ballot.MaxSelections == 0 {
		ballot.MaxSelections = 1
	}
	for i, option := range file.Options {
		ballot.Options = append(ballot.Options, entities.BallotOption{
			OptionID: option.OptionID,
			Text:     option.Text,
			Order:    i,
		})
	}
	if err := ballot.ValidateDefinition(); err != nil {
		return entities.Ballot{}, err
	}
	return ballot, nil
}
