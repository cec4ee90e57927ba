package pipeline

import (
	"github.com/mirrordesk/mirrordesk/internal/domain/model/deal"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/stage"
)

// StageSummary is the derived numeric summary of one stage. It is
// recomputed from the deal set on demand, never cached, so it can
// never drift from the records it summarizes.
type StageSummary struct {
	StageID         string
	DealCount       int
	TotalValue      float64
	WeightedValue   float64
	AverageDealSize float64
}

// Summarize computes the summary of one stage over the given deals.
// Deals assigned to other stages are ignored.
func Summarize(def stage.Definition, deals []*deal.Deal) StageSummary {
	s := StageSummary{StageID: def.ID}
	for _, d := range deals {
		if d.StageID != def.ID {
			continue
		}
		s.DealCount++
		s.TotalValue += d.Amount
	}
	s.WeightedValue = s.TotalValue * float64(def.WinProbabilityPercent) / 100
	if s.DealCount > 0 {
		s.AverageDealSize = s.TotalValue / float64(s.DealCount)
	}
	return s
}

// SummarizeBoard computes one summary per stage, in board order.
// Deals referencing a stage not on the board contribute to no summary.
func SummarizeBoard(board *stage.Board, deals []*deal.Deal) []StageSummary {
	stages := board.Stages()
	out := make([]StageSummary, 0, len(stages))
	for _, def := range stages {
		out = append(out, Summarize(def, deals))
	}
	return out
}
