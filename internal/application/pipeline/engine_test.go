package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/deal"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/record"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/stage"
	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
)

// fakeDealService is a minimal scripted backend for engine tests.
type fakeDealService struct {
	mu       sync.Mutex
	records  map[string]*deal.Deal
	order    []string
	moveErr  *remote.Failure
	moveCall int
}

func newFakeDealService() *fakeDealService {
	return &fakeDealService{records: make(map[string]*deal.Deal)}
}

func (s *fakeDealService) put(d *deal.Deal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[d.ID]; !ok {
		s.order = append(s.order, d.ID)
	}
	s.records[d.ID] = d.Clone()
}

func (s *fakeDealService) List(ctx context.Context, q remote.Query) ([]*deal.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*deal.Deal, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out, nil
}

func (s *fakeDealService) Get(ctx context.Context, id string) (*deal.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.records[id]
	if !ok {
		return nil, remote.NewFailure(remote.CategoryNotFound, "deal %s not found", id)
	}
	return d.Clone(), nil
}

func (s *fakeDealService) Create(ctx context.Context, payload *deal.Deal) (*deal.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := payload.Clone()
	created.ID = "srv-" + payload.Name
	s.records[created.ID] = created
	s.order = append(s.order, created.ID)
	return created.Clone(), nil
}

func (s *fakeDealService) Update(ctx context.Context, id string, patch record.Patch) (*deal.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.records[id]
	if !ok {
		return nil, remote.NewFailure(remote.CategoryNotFound, "deal %s not found", id)
	}
	updated := d.Apply(patch)
	s.records[id] = updated
	return updated.Clone(), nil
}

func (s *fakeDealService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeDealService) Move(ctx context.Context, dealID, stageID string) (*deal.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveCall++
	if s.moveErr != nil {
		err := s.moveErr
		s.moveErr = nil
		return nil, err
	}
	d, ok := s.records[dealID]
	if !ok {
		return nil, remote.NewFailure(remote.CategoryNotFound, "deal %s not found", dealID)
	}
	moved := d.Clone()
	moved.StageID = stageID
	s.records[dealID] = moved
	return moved.Clone(), nil
}

func (s *fakeDealService) moveCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveCall
}

func testBoard(t *testing.T) *stage.Board {
	t.Helper()
	b, err := stage.NewBoard([]stage.Definition{
		{ID: "qualified", Name: "Qualified", Order: 1, WinProbabilityPercent: 25},
		{ID: "negotiation", Name: "Negotiation", Order: 2, WinProbabilityPercent: 75},
		{ID: stage.ClosedWonID, Name: "Closed Won", Order: 3, WinProbabilityPercent: 100},
	})
	require.NoError(t, err)
	return b
}

func loadedEngine(t *testing.T) (*Engine, *fakeDealService) {
	t.Helper()
	svc := newFakeDealService()
	svc.put(&deal.Deal{ID: "d1", Name: "Acme", Amount: 100, StageID: "qualified"})
	svc.put(&deal.Deal{ID: "d2", Name: "Globex", Amount: 200, StageID: "qualified"})
	svc.put(&deal.Deal{ID: "d3", Name: "Initech", Amount: 300, StageID: "qualified"})

	e := NewEngine(testBoard(t), svc)
	require.NoError(t, e.Load(context.Background(), remote.Query{}))
	return e, svc
}

func TestMove_CrossStage(t *testing.T) {
	e, svc := loadedEngine(t)

	err := e.Move(context.Background(), MoveRequest{DealID: "d3", ToStageID: "negotiation"})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.moveCalls())

	moved, ok := e.Cache().ByID("d3")
	require.True(t, ok)
	assert.Equal(t, "negotiation", moved.StageID)

	// Qualified keeps 100+200 at 25%, Negotiation gains 300 at 75%.
	q, err := e.StageSummary("qualified")
	require.NoError(t, err)
	assert.Equal(t, 300.0, q.TotalValue)
	assert.Equal(t, 75.0, q.WeightedValue)

	n, err := e.StageSummary("negotiation")
	require.NoError(t, err)
	assert.Equal(t, 300.0, n.TotalValue)
	assert.Equal(t, 225.0, n.WeightedValue)
}

func TestMove_FailureSnapsBack(t *testing.T) {
	e, svc := loadedEngine(t)

	before := e.BoardSummary()
	svc.moveErr = remote.NewFailure(remote.CategoryNetwork, "move endpoint down")

	err := e.Move(context.Background(), MoveRequest{DealID: "d3", ToStageID: "negotiation"})
	require.Error(t, err)
	assert.True(t, remote.IsNetwork(err))

	d, ok := e.Cache().ByID("d3")
	require.True(t, ok)
	assert.Equal(t, "qualified", d.StageID, "failed move must snap back")

	assert.Equal(t, before, e.BoardSummary(), "aggregates must match the pre-gesture state")
	assert.Equal(t, "move endpoint down", e.Cache().LastError())
}

func TestMove_UnknownStageRejectedBeforeMutation(t *testing.T) {
	e, svc := loadedEngine(t)

	err := e.Move(context.Background(), MoveRequest{DealID: "d1", ToStageID: "imaginary"})
	require.Error(t, err)
	assert.True(t, remote.IsValidation(err))
	assert.Equal(t, 0, svc.moveCalls(), "validation happens before any remote call")

	d, _ := e.Cache().ByID("d1")
	assert.Equal(t, "qualified", d.StageID, "no optimistic mutation on rejected move")
}

func TestMove_UnloadedDealRejected(t *testing.T) {
	e, _ := loadedEngine(t)

	err := e.Move(context.Background(), MoveRequest{DealID: "ghost", ToStageID: "negotiation"})
	require.Error(t, err)
	assert.True(t, remote.IsValidation(err))
}

func TestMove_SameStageIsLocalReorder(t *testing.T) {
	e, svc := loadedEngine(t)

	err := e.Move(context.Background(), MoveRequest{DealID: "d3", ToStageID: "qualified", ToIndex: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, svc.moveCalls(), "same-stage drop must not call the server")

	inStage := e.DealsInStage("qualified")
	require.Len(t, inStage, 3)
	assert.Equal(t, "d3", inStage[0].ID)
}

func TestMove_PlacesAtDestinationIndex(t *testing.T) {
	e, _ := loadedEngine(t)

	// Seed the destination, then drop d1 at the top of it.
	require.NoError(t, e.Move(context.Background(), MoveRequest{DealID: "d3", ToStageID: "negotiation"}))
	require.NoError(t, e.Move(context.Background(), MoveRequest{DealID: "d1", ToStageID: "negotiation", ToIndex: 0}))

	inStage := e.DealsInStage("negotiation")
	require.Len(t, inStage, 2)
	assert.Equal(t, "d1", inStage[0].ID)
	assert.Equal(t, "d3", inStage[1].ID)
}

func TestBoardSummary_ConservesTotalAcrossMoves(t *testing.T) {
	e, _ := loadedEngine(t)

	total := func() float64 {
		var sum float64
		for _, s := range e.BoardSummary() {
			sum += s.TotalValue
		}
		return sum
	}

	before := total()
	require.NoError(t, e.Move(context.Background(), MoveRequest{DealID: "d2", ToStageID: stage.ClosedWonID}))
	require.NoError(t, e.Move(context.Background(), MoveRequest{DealID: "d1", ToStageID: "negotiation"}))
	assert.Equal(t, before, total(), "stage grouping must not lose or duplicate value")
}

func TestCreateDeal(t *testing.T) {
	e, _ := loadedEngine(t)

	created, err := e.CreateDeal(context.Background(), "Hooli", 500, "")
	require.NoError(t, err)
	assert.Equal(t, "qualified", created.StageID, "empty stage defaults to the leftmost")

	_, err = e.CreateDeal(context.Background(), "Bad", 1, "imaginary")
	require.Error(t, err)
	assert.True(t, remote.IsValidation(err))

	_, err = e.CreateDeal(context.Background(), "", 1, "")
	require.Error(t, err)
	assert.True(t, remote.IsValidation(err))
}

func TestWarnsOnMove(t *testing.T) {
	e, _ := loadedEngine(t)

	assert.False(t, e.WarnsOnMove("d1"))

	require.NoError(t, e.Move(context.Background(), MoveRequest{DealID: "d1", ToStageID: stage.ClosedWonID}))
	assert.True(t, e.WarnsOnMove("d1"), "closed deals warn before further moves")

	// Still movable: closing stages are a convention, not a lock.
	require.NoError(t, e.Move(context.Background(), MoveRequest{DealID: "d1", ToStageID: "qualified"}))
	assert.False(t, e.WarnsOnMove("d1"))
}
