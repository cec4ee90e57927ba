package memrecord

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/deal"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/record"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/stage"
	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
)

// Store is an in-memory record service: the demo backend for the CLI
// and the integration double for cache tests. Identifiers are
// server-assigned UUIDs, mirroring the real service's contract.
// It implements remote.RecordService[T].
type Store[T record.Record[T]] struct {
	mu      sync.Mutex
	records map[string]T
	order   []string
	fail    map[string][]*remote.Failure
	withID  func(T, string) T
}

// NewStore creates a store. withID returns a copy of the record with
// the server-assigned identifier set; the Record interface is kept
// read-only on identifiers, so assignment is type-specific.
func NewStore[T record.Record[T]](withID func(T, string) T) *Store[T] {
	return &Store[T]{
		records: make(map[string]T),
		fail:    make(map[string][]*remote.Failure),
		withID:  withID,
	}
}

// Seed inserts records directly, assigning identifiers where missing.
func (s *Store[T]) Seed(items ...T) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(items))
	for _, it := range items {
		rec := it.Clone()
		if rec.RecordID() == "" {
			rec = s.withID(rec, uuid.NewString())
		}
		if _, ok := s.records[rec.RecordID()]; !ok {
			s.order = append(s.order, rec.RecordID())
		}
		s.records[rec.RecordID()] = rec
		out = append(out, rec.Clone())
	}
	return out
}

// FailNext scripts a failure for the next call of the given operation
// (list, get, create, update, delete, move).
func (s *Store[T]) FailNext(op string, f *remote.Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = append(s.fail[op], f)
}

func (s *Store[T]) takeFailure(op string) *remote.Failure {
	if fs := s.fail[op]; len(fs) > 0 {
		f := fs[0]
		s.fail[op] = fs[1:]
		return f
	}
	return nil
}

func (s *Store[T]) List(ctx context.Context, q remote.Query) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f := s.takeFailure("list"); f != nil {
		return nil, f
	}

	all := make([]T, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.records[id].Clone())
	}

	if q.PageSize <= 0 {
		return all, nil
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * q.PageSize
	if start >= len(all) {
		return nil, nil
	}
	end := start + q.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if f := s.takeFailure("get"); f != nil {
		return zero, f
	}
	rec, ok := s.records[id]
	if !ok {
		return zero, remote.NewFailure(remote.CategoryNotFound, "record %s not found", id)
	}
	return rec.Clone(), nil
}

func (s *Store[T]) Create(ctx context.Context, payload T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if f := s.takeFailure("create"); f != nil {
		return zero, f
	}
	created := s.withID(payload.Clone(), uuid.NewString())
	s.records[created.RecordID()] = created
	s.order = append(s.order, created.RecordID())
	return created.Clone(), nil
}

func (s *Store[T]) Update(ctx context.Context, id string, patch record.Patch) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if f := s.takeFailure("update"); f != nil {
		return zero, f
	}
	rec, ok := s.records[id]
	if !ok {
		return zero, remote.NewFailure(remote.CategoryNotFound, "record %s not found", id)
	}
	updated := rec.Apply(patch)
	s.records[id] = updated
	return updated.Clone(), nil
}

func (s *Store[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f := s.takeFailure("delete"); f != nil {
		return f
	}
	if _, ok := s.records[id]; !ok {
		return remote.NewFailure(remote.CategoryNotFound, "record %s not found", id)
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// DealStore is the deal collection with the stage move endpoint.
// With a board attached it validates stage references the way the
// real backend does. It implements remote.DealService.
type DealStore struct {
	*Store[*deal.Deal]
	board *stage.Board
}

// NewDealStore creates a deal store. board may be nil to skip stage
// validation.
func NewDealStore(board *stage.Board) *DealStore {
	return &DealStore{
		Store: NewStore[*deal.Deal](func(d *deal.Deal, id string) *deal.Deal {
			out := d.Clone()
			out.ID = id
			return out
		}),
		board: board,
	}
}

// Move reassigns a deal's stage.
func (s *DealStore) Move(ctx context.Context, dealID, stageID string) (*deal.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f := s.takeFailure("move"); f != nil {
		return nil, f
	}
	if s.board != nil && !s.board.Has(stageID) {
		return nil, remote.NewFailure(remote.CategoryValidation, "unknown stage %s", stageID)
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
