package config

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/stage"
)

// stageFile is the stages.yaml shape.
type stageFile struct {
	Stages []stage.Definition `yaml:"stages"`
}

// LoadStages reads the pipeline stage definitions. A missing file
// yields the default board rather than an error; a present but
// malformed file is reported.
func LoadStages(fs afero.Fs, path string) (*stage.Board, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return DefaultBoard()
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var f stageFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	board, err := stage.NewBoard(f.Stages)
	if err != nil {
		return nil, fmt.Errorf("invalid stages in %s: %w", path, err)
	}
	return board, nil
}

// DefaultBoard is the stock sales pipeline used when no stage file is
// configured.
func DefaultBoard() (*stage.Board, error) {
	return stage.NewBoard([]stage.Definition{
		{ID: "new", Name: "New", Order: 1, WinProbabilityPercent: 10, ColorHint: "#8993A4"},
		{ID: "qualified", Name: "Qualified", Order: 2, WinProbabilityPercent: 25, ColorHint: "#4C9AFF"},
		{ID: "proposal", Name: "Proposal", Order: 3, WinProbabilityPercent: 50, ColorHint: "#FFAB00"},
		{ID: "negotiation", Name: "Negotiation", Order: 4, WinProbabilityPercent: 75, ColorHint: "#FF7452"},
		{ID: stage.ClosedWonID, Name: "Closed Won", Order: 5, WinProbabilityPercent: 100, ColorHint: "#36B37E"},
		{ID: stage.ClosedLostID, Name: "Closed Lost", Order: 6, WinProbabilityPercent: 0, ColorHint: "#6B778C"},
	})
}
