package remote

import (
	"context"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/deal"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/record"
)

// Query narrows a list call. Filter pairs and pagination travel to the
// server; Expression is evaluated client-side after the page returns.
type Query struct {
	Filter     map[string]string
	Search     string
	Page       int
	PageSize   int
	Expression string
}

// RecordService is the remote contract the cache consumes: one record
// collection with field-keyed JSON payloads. Every method returns a
// *Failure on rejection.
type RecordService[T record.Record[T]] interface {
	List(ctx context.Context, q Query) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, payload T) (T, error)
	Update(ctx context.Context, id string, patch record.Patch) (T, error)
	Delete(ctx context.Context, id string) error
}

// DealService extends the record contract with the pipeline-specific
// stage move endpoint.
type DealService interface {
	RecordService[*deal.Deal]

	// Move reassigns the deal to the given stage and returns the
	// canonical record, which may carry server-recomputed fields.
	Move(ctx context.Context, dealID, stageID string) (*deal.Deal, error)
}
