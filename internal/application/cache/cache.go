package cache

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/record"
	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
)

// OpClass identifies one class of cache operation. Each class carries
// its own status so a background list refresh does not mask an
// in-progress detail fetch.
type OpClass string

const (
	OpList   OpClass = "list"
	OpDetail OpClass = "detail"
	OpCreate OpClass = "create"
	OpUpdate OpClass = "update"
	OpDelete OpClass = "delete"
)

// OpStatus is the lifecycle of one operation class.
type OpStatus string

const (
	StatusIdle    OpStatus = "idle"
	StatusLoading OpStatus = "loading"
	StatusReady   OpStatus = "ready"
	StatusError   OpStatus = "error"
)

// Invalidator receives a signal after a successful mutation so that
// dependent caches can refresh themselves. Caches never reach into
// each other's state; this signal is the only coupling.
type Invalidator interface {
	Invalidate(resource string)
}

// PendingCreate marks one in-flight create. The record has no
// identifier until the server responds, so the presentation layer
// keys its pending indicator on the request token instead.
type PendingCreate struct {
	Token     string
	StartedAt time.Time
}

// Snapshot is the immutable view handed to the presentation layer.
// Records are deep copies; mutating them has no effect on the cache.
type Snapshot[T record.Record[T]] struct {
	Items       []T
	Status      map[OpClass]OpStatus
	LastError   string
	Selected    T
	HasSelected bool
	Pending     []PendingCreate
}

// Cache mirrors one remote record collection: the ordered item list,
// an id index kept strictly in step with it, per-operation status, and
// the optimistic mutation primitives. One instance per resource type;
// the cache is the sole writer of its own state.
type Cache[T record.Record[T]] struct {
	resource string
	svc      remote.RecordService[T]

	mu         sync.Mutex
	items      []T
	byID       map[string]T
	status     map[OpClass]OpStatus
	lastError  string
	selectedID string
	pending    map[string]PendingCreate
	listGen    uint64
	lastQuery  remote.Query

	queue       *keyQueue
	filters     *filterSet
	invalidator Invalidator
}

// Option configures a cache at construction.
type Option[T record.Record[T]] func(*Cache[T])

// WithInvalidator wires the cross-cache invalidation hub.
func WithInvalidator[T record.Record[T]](inv Invalidator) Option[T] {
	return func(c *Cache[T]) {
		c.invalidator = inv
	}
}

// New creates a cache for one resource type backed by the given
// remote service.
func New[T record.Record[T]](resource string, svc remote.RecordService[T], opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		resource: resource,
		svc:      svc,
		byID:     make(map[string]T),
		status: map[OpClass]OpStatus{
			OpList:   StatusIdle,
			OpDetail: StatusIdle,
			OpCreate: StatusIdle,
			OpUpdate: StatusIdle,
			OpDelete: StatusIdle,
		},
		pending: make(map[string]PendingCreate),
		queue:   newKeyQueue(),
		filters: newFilterSet(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Resource returns the resource type this cache mirrors.
func (c *Cache[T]) Resource() string {
	return c.resource
}

// List replaces the cached page with the server's current one.
// A list superseded by a newer list is discarded on completion
// (last-issued-wins); a failed list preserves the previous items so a
// broken refresh never blanks the screen.
func (c *Cache[T]) List(ctx context.Context, q remote.Query) error {
	c.mu.Lock()
	c.listGen++
	gen := c.listGen
	c.lastQuery = q
	c.status[OpList] = StatusLoading
	c.mu.Unlock()

	items, err := c.svc.List(ctx, q)
	if err == nil && q.Expression != "" {
		items, err = c.applyFilter(q.Expression, items)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.listGen {
		// Superseded by a newer list; the result is stale either way.
		return nil
	}

	if err != nil {
		f := remote.AsFailure(err)
		c.status[OpList] = StatusError
		c.lastError = f.Message
		return f
	}

	c.items = items
	c.byID = make(map[string]T, len(items))
	for _, it := range items {
		c.byID[it.RecordID()] = it
	}
	if c.selectedID != "" {
		if _, still := c.byID[c.selectedID]; !still {
			c.selectedID = ""
		}
	}
	c.status[OpList] = StatusReady
	c.lastError = ""
	return nil
}

func (c *Cache[T]) applyFilter(expression string, items []T) ([]T, error) {
	kept := make([]T, 0, len(items))
	for _, it := range items {
		ok, err := c.filters.Match(expression, it)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, it)
		}
	}
	return kept, nil
}

// Refresh repeats the most recent list query. Used by push
// notifications and cross-cache invalidation.
func (c *Cache[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	q := c.lastQuery
	c.mu.Unlock()
	return c.List(ctx, q)
}

// Get fetches one record and merges it into the cache: replaced in
// place when present, appended otherwise. With focus set, the record
// becomes the current detail selection. A not-found reply drops the
// stale local copy.
func (c *Cache[T]) Get(ctx context.Context, id string, focus bool) (T, error) {
	var zero T

	c.setStatus(OpDetail, StatusLoading)

	rec, err := c.svc.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		f := remote.AsFailure(err)
		if f.Category == remote.CategoryNotFound {
			c.removeLocked(id)
		}
		c.status[OpDetail] = StatusError
		c.lastError = f.Message
		return zero, f
	}

	c.replaceLocked(id, rec)
	if focus {
		c.selectedID = id
	}
	c.status[OpDetail] = StatusReady
	c.lastError = ""
	return rec.Clone(), nil
}

// RefreshRecord re-fetches one record after a push notification.
// A not-found reply is not an error here: the Get already dropped the
// stale local copy, which is the desired outcome for a deletion event.
func (c *Cache[T]) RefreshRecord(ctx context.Context, id string) error {
	if _, err := c.Get(ctx, id, false); err != nil && !remote.IsNotFound(err) {
		return err
	}
	return nil
}

// Create issues the remote create and appends the canonical record the
// server returns. No optimistic insertion: the identifier is unknown
// until the server responds, so the in-flight request is tracked as a
// ULID-keyed pending entry instead.
func (c *Cache[T]) Create(ctx context.Context, payload T) (T, error) {
	var zero T

	token := ulid.Make().String()
	c.mu.Lock()
	c.pending[token] = PendingCreate{Token: token, StartedAt: time.Now()}
	c.status[OpCreate] = StatusLoading
	c.mu.Unlock()

	created, err := c.svc.Create(ctx, payload)

	c.mu.Lock()
	delete(c.pending, token)
	if err != nil {
		f := remote.AsFailure(err)
		c.status[OpCreate] = StatusError
		c.lastError = f.Message
		c.mu.Unlock()
		return zero, f
	}
	c.replaceLocked(created.RecordID(), created)
	c.status[OpCreate] = StatusReady
	c.lastError = ""
	c.mu.Unlock()

	c.notifyMutation()
	return created.Clone(), nil
}

// Update optimistically merges the patch into the cached record, then
// issues the remote call. On failure the pre-call value is restored;
// on success the server's canonical response replaces the optimistic
// one. Mutations for the same identifier are strictly serialized.
func (c *Cache[T]) Update(ctx context.Context, id string, patch record.Patch) (T, error) {
	return c.UpdateVia(ctx, id, patch, func(ctx context.Context) (T, error) {
		return c.svc.Update(ctx, id, patch)
	})
}

// UpdateVia runs the optimistic-update protocol with a caller-supplied
// remote call in place of the plain update endpoint. The pipeline
// engine uses this to route stage moves through the MOVE endpoint
// while keeping the cache's rollback and per-identifier ordering.
func (c *Cache[T]) UpdateVia(ctx context.Context, id string, patch record.Patch, call func(context.Context) (T, error)) (T, error) {
	var zero T
	var result T
	var opErr error

	c.queue.Run(id, func() {
		c.mu.Lock()
		prev, exists := c.byID[id]
		var snapshot T
		if exists {
			snapshot = prev.Clone()
			c.replaceLocked(id, prev.Apply(patch))
		}
		c.status[OpUpdate] = StatusLoading
		c.mu.Unlock()

		canonical, err := call(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()

		if err != nil {
			f := remote.AsFailure(err)
			if exists {
				c.replaceLocked(id, snapshot)
			}
			if f.Category == remote.CategoryNotFound {
				c.removeLocked(id)
			}
			c.status[OpUpdate] = StatusError
			c.lastError = f.Message
			opErr = f
			return
		}

		c.replaceLocked(id, canonical)
		c.status[OpUpdate] = StatusReady
		c.lastError = ""
		result = canonical.Clone()
	})

	if opErr != nil {
		return zero, opErr
	}
	c.notifyMutation()
	return result, nil
}

// Delete optimistically removes the record, then issues the remote
// call. On failure the record is re-inserted at its original position.
// A not-found reply means the record was already gone remotely, so the
// local removal stands.
func (c *Cache[T]) Delete(ctx context.Context, id string) error {
	var opErr error

	c.queue.Run(id, func() {
		c.mu.Lock()
		snapshot, index, exists := c.takeLocked(id)
		c.status[OpDelete] = StatusLoading
		c.mu.Unlock()

		err := c.svc.Delete(ctx, id)

		c.mu.Lock()
		defer c.mu.Unlock()

		if err != nil {
			f := remote.AsFailure(err)
			if f.Category == remote.CategoryNotFound {
				// Already gone remotely; the optimistic removal was right.
				c.status[OpDelete] = StatusReady
				c.lastError = ""
				return
			}
			if exists {
				c.insertLocked(snapshot, index)
			}
			c.status[OpDelete] = StatusError
			c.lastError = f.Message
			opErr = f
			return
		}

		c.status[OpDelete] = StatusReady
		c.lastError = ""
	})

	if opErr != nil {
		return opErr
	}
	c.notifyMutation()
	return nil
}

// Reorder moves a record to a new position in the item order without
// touching the server. The pipeline engine uses it for visual reorder
// within a stage and for drop placement after a move.
func (c *Cache[T]) Reorder(id string, newIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	selected := c.selectedID
	rec, _, exists := c.takeLocked(id)
	if !exists {
		return false
	}
	c.insertLocked(rec, newIndex)
	c.selectedID = selected
	return true
}

// Select marks a locally cached record as the open detail record.
func (c *Cache[T]) Select(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[id]; !ok {
		return false
	}
	c.selectedID = id
	return true
}

// ClearSelection drops the detail selection.
func (c *Cache[T]) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedID = ""
}

// Snapshot returns an immutable copy of the cache state for rendering.
func (c *Cache[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot[T]{
		Items:     make([]T, 0, len(c.items)),
		Status:    make(map[OpClass]OpStatus, len(c.status)),
		LastError: c.lastError,
		Pending:   make([]PendingCreate, 0, len(c.pending)),
	}
	for _, it := range c.items {
		snap.Items = append(snap.Items, it.Clone())
	}
	for op, st := range c.status {
		snap.Status[op] = st
	}
	for _, p := range c.pending {
		snap.Pending = append(snap.Pending, p)
	}
	if c.selectedID != "" {
		if sel, ok := c.byID[c.selectedID]; ok {
			snap.Selected = sel.Clone()
			snap.HasSelected = true
		}
	}
	return snap
}

// Items returns deep copies of the cached records in order.
func (c *Cache[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it.Clone())
	}
	return out
}

// ByID returns a deep copy of one cached record.
func (c *Cache[T]) ByID(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.byID[id]
	if !ok {
		var zero T
		return zero, false
	}
	return rec.Clone(), true
}

// Len returns the number of cached records.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Status returns the status of one operation class.
func (c *Cache[T]) Status(op OpClass) OpStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status[op]
}

// LastError returns the last failure message, empty after a success.
func (c *Cache[T]) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Selected returns a copy of the open detail record, if any.
func (c *Cache[T]) Selected() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedID == "" {
		var zero T
		return zero, false
	}
	sel, ok := c.byID[c.selectedID]
	if !ok {
		var zero T
		return zero, false
	}
	return sel.Clone(), true
}

// PendingCreates returns the in-flight create tokens.
func (c *Cache[T]) PendingCreates() []PendingCreate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]PendingCreate, 0, len(c.pending))
	for _, p := range c.pending {
		out = append(out, p)
	}
	return out
}

func (c *Cache[T]) setStatus(op OpClass, st OpStatus) {
	c.mu.Lock()
	c.status[op] = st
	c.mu.Unlock()
}

func (c *Cache[T]) notifyMutation() {
	if c.invalidator != nil {
		c.invalidator.Invalidate(c.resource)
	}
}

// replaceLocked updates items and byID together; callers hold mu.
func (c *Cache[T]) replaceLocked(id string, rec T) {
	if _, ok := c.byID[id]; ok {
		for i := range c.items {
			if c.items[i].RecordID() == id {
				c.items[i] = rec
				break
			}
		}
	} else {
		c.items = append(c.items, rec)
	}
	c.byID[id] = rec
}

// takeLocked removes the record from items and byID, returning it with
// its former position; callers hold mu.
func (c *Cache[T]) takeLocked(id string) (T, int, bool) {
	var zero T
	if _, ok := c.byID[id]; !ok {
		return zero, 0, false
	}
	for i := range c.items {
		if c.items[i].RecordID() == id {
			rec := c.items[i]
			c.items = append(c.items[:i], c.items[i+1:]...)
			delete(c.byID, id)
			if c.selectedID == id {
				c.selectedID = ""
			}
			return rec, i, true
		}
	}
	return zero, 0, false
}

// insertLocked places the record at index, clamped to the current
// bounds; callers hold mu.
func (c *Cache[T]) insertLocked(rec T, index int) {
	if index < 0 {
		index = 0
	}
	if index > len(c.items) {
		index = len(c.items)
	}
	c.items = append(c.items, rec)
	copy(c.items[index+1:], c.items[index:])
	c.items[index] = rec
	c.byID[rec.RecordID()] = rec
}

// removeLocked drops the record without remembering its position;
// callers hold mu.
func (c *Cache[T]) removeLocked(id string) {
	c.takeLocked(id)
}
