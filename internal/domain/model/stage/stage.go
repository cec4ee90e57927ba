package stage

import (
	"errors"
	"fmt"
	"sort"
)

// Conventional boundary stages. Reaching either does not lock a deal;
// the presentation layer warns before moving a closed deal again.
const (
	ClosedWonID  = "closed-won"
	ClosedLostID = "closed-lost"
)

// Definition describes one pipeline column. Definitions are immutable
// once a Board is built.
type Definition struct {
	ID                    string `yaml:"id"`
	Name                  string `yaml:"name"`
	Order                 int    `yaml:"order"`
	WinProbabilityPercent int    `yaml:"win_probability_percent"`
	ColorHint             string `yaml:"color_hint,omitempty"`
}

// Validate checks a single definition.
func (d Definition) Validate() error {
	if d.ID == "" {
		return errors.New("stage id cannot be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("stage %s: name cannot be empty", d.ID)
	}
	if d.WinProbabilityPercent < 0 || d.WinProbabilityPercent > 100 {
		return fmt.Errorf("stage %s: win probability must be within 0-100, got %d",
			d.ID, d.WinProbabilityPercent)
	}
	return nil
}

// IsClosing reports whether the stage is one of the conventional
// terminal columns.
func (d Definition) IsClosing() bool {
	return d.ID == ClosedWonID || d.ID == ClosedLostID
}

// Board is the ordered set of stages of one pipeline.
type Board struct {
	stages []Definition
	byID   map[string]Definition
}

// NewBoard validates the definitions and returns a board with stages
// sorted by their order value.
func NewBoard(defs []Definition) (*Board, error) {
	if len(defs) == 0 {
		return nil, errors.New("a board needs at least one stage")
	}

	byID := make(map[string]Definition, len(defs))
	byOrder := make(map[int]string, len(defs))
	stages := make([]Definition, len(defs))
	copy(stages, defs)

	for _, d := range stages {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate stage id %s", d.ID)
		}
		if other, dup := byOrder[d.Order]; dup {
			return nil, fmt.Errorf("stages %s and %s share order %d", other, d.ID, d.Order)
		}
		byID[d.ID] = d
		byOrder[d.Order] = d.ID
	}

	sort.Slice(stages, func(i, j int) bool { return stages[i].Order < stages[j].Order })

	return &Board{stages: stages, byID: byID}, nil
}

// Stages returns the definitions in left-to-right order.
func (b *Board) Stages() []Definition {
	out := make([]Definition, len(b.stages))
	copy(out, b.stages)
	return out
}

// ByID looks up a stage definition.
func (b *Board) ByID(id string) (Definition, bool) {
	d, ok := b.byID[id]
	return d, ok
}

// Has reports whether the stage exists on the board.
func (b *Board) Has(id string) bool {
	_, ok := b.byID[id]
	return ok
}

// First returns the leftmost stage, the default for new deals.
func (b *Board) First() Definition {
	return b.stages[0]
}
