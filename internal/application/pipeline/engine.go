package pipeline

import (
	"context"

	"github.com/mirrordesk/mirrordesk/internal/application/cache"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/deal"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/record"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/stage"
	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
	agg "github.com/mirrordesk/mirrordesk/internal/domain/service/pipeline"
)

// ResourceDeals is the resource type name the engine's cache mirrors.
const ResourceDeals = "deals"

// MoveRequest is what a completed drag gesture reduces to: the deal,
// the destination stage, and the insertion position within that
// stage's visual ordering. Any input mechanism producing these three
// values is equivalent.
type MoveRequest struct {
	DealID    string
	ToStageID string
	ToIndex   int
}

// Engine layers stage-assignment and reorder semantics over a deal
// cache. Stage transitions are unordered: any stage may move to any
// other; the closed stages are a convention the presentation layer
// warns about, not a lock.
type Engine struct {
	board *stage.Board
	svc   remote.DealService
	cache *cache.Cache[*deal.Deal]
}

// NewEngine builds an engine with its own deal cache on top of the
// given remote service. Cache options (such as an invalidation hub)
// are passed through.
func NewEngine(board *stage.Board, svc remote.DealService, opts ...cache.Option[*deal.Deal]) *Engine {
	return &Engine{
		board: board,
		svc:   svc,
		cache: cache.New[*deal.Deal](ResourceDeals, svc, opts...),
	}
}

// Board returns the stage definitions.
func (e *Engine) Board() *stage.Board {
	return e.board
}

// Cache exposes the underlying deal cache for push registration and
// read access.
func (e *Engine) Cache() *cache.Cache[*deal.Deal] {
	return e.cache
}

// Load fetches the current deal page.
func (e *Engine) Load(ctx context.Context, q remote.Query) error {
	return e.cache.List(ctx, q)
}

// Deals returns all cached deals in display order.
func (e *Engine) Deals() []*deal.Deal {
	return e.cache.Items()
}

// DealsInStage returns the deals of one stage, preserving the display
// order of the item list.
func (e *Engine) DealsInStage(stageID string) []*deal.Deal {
	var out []*deal.Deal
	for _, d := range e.cache.Items() {
		if d.StageID == stageID {
			out = append(out, d)
		}
	}
	return out
}

// CreateDeal creates a deal on the given stage, defaulting to the
// leftmost stage when none is named.
func (e *Engine) CreateDeal(ctx context.Context, name string, amount float64, stageID string) (*deal.Deal, error) {
	if stageID == "" {
		stageID = e.board.First().ID
	}
	if !e.board.Has(stageID) {
		return nil, remote.NewFailure(remote.CategoryValidation, "unknown stage %s", stageID)
	}
	payload, err := deal.New(name, amount, stageID)
	if err != nil {
		return nil, remote.NewFailure(remote.CategoryValidation, "%v", err)
	}
	return e.cache.Create(ctx, payload)
}

// UpdateDeal edits deal fields through the cache's optimistic path.
func (e *Engine) UpdateDeal(ctx context.Context, id string, patch record.Patch) (*deal.Deal, error) {
	return e.cache.Update(ctx, id, patch)
}

// DeleteDeal removes a deal through the cache's optimistic path.
func (e *Engine) DeleteDeal(ctx context.Context, id string) error {
	return e.cache.Delete(ctx, id)
}

// WarnsOnMove reports whether the deal sits on a closing stage, where
// the presentation layer should confirm before moving it again.
func (e *Engine) WarnsOnMove(dealID string) bool {
	d, ok := e.cache.ByID(dealID)
	if !ok {
		return false
	}
	def, ok := e.board.ByID(d.StageID)
	return ok && def.IsClosing()
}

// Move applies a completed gesture. A same-stage drop is a purely
// local reorder with no remote call. A cross-stage drop optimistically
// rewrites the deal's stage through the cache (so a remote failure
// snaps it back), routing the remote call through the MOVE endpoint.
func (e *Engine) Move(ctx context.Context, req MoveRequest) error {
	if !e.board.Has(req.ToStageID) {
		return remote.NewFailure(remote.CategoryValidation, "unknown stage %s", req.ToStageID)
	}

	d, ok := e.cache.ByID(req.DealID)
	if !ok {
		return remote.NewFailure(remote.CategoryValidation, "deal %s is not loaded", req.DealID)
	}

	if d.StageID == req.ToStageID {
		e.cache.Reorder(req.DealID, e.globalIndex(req.DealID, req.ToStageID, req.ToIndex))
		return nil
	}

	patch := record.Patch{"stage_id": req.ToStageID}
	_, err := e.cache.UpdateVia(ctx, req.DealID, patch, func(ctx context.Context) (*deal.Deal, error) {
		return e.svc.Move(ctx, req.DealID, req.ToStageID)
	})
	if err != nil {
		return err
	}

	e.cache.Reorder(req.DealID, e.globalIndex(req.DealID, req.ToStageID, req.ToIndex))
	return nil
}

// globalIndex translates a stage-local insertion position into an
// index in the flat item list, ignoring the deal being placed.
func (e *Engine) globalIndex(dealID, stageID string, stageIndex int) int {
	items := e.cache.Items()
	seen := 0
	lastInStage := -1
	position := 0
	for _, d := range items {
		if d.RecordID() == dealID {
			continue
		}
		if d.StageID == stageID {
			if seen == stageIndex {
				return position
			}
			seen++
			lastInStage = position
		}
		position++
	}
	if lastInStage >= 0 {
		return lastInStage + 1
	}
	// Destination stage is empty; append at the end.
	return position
}

// StageSummary recomputes the aggregates of one stage from the
// current deal set.
func (e *Engine) StageSummary(stageID string) (agg.StageSummary, error) {
	def, ok := e.board.ByID(stageID)
	if !ok {
		return agg.StageSummary{}, remote.NewFailure(remote.CategoryValidation, "unknown stage %s", stageID)
	}
	return agg.Summarize(def, e.cache.Items()), nil
}

// BoardSummary recomputes the aggregates of every stage in board
// order.
func (e *Engine) BoardSummary() []agg.StageSummary {
	return agg.SummarizeBoard(e.board, e.cache.Items())
}
