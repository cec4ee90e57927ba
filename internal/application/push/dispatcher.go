package push

import (
	"context"
	"fmt"
	"sync"
)

// ChangeKind is the mutation class a push notification announces.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// IsValid validates the change kind.
func (k ChangeKind) IsValid() bool {
	switch k {
	case ChangeCreated, ChangeUpdated, ChangeDeleted:
		return true
	default:
		return false
	}
}

// Notification is a server-initiated signal that a record changed
// remotely. The payload is advisory only: the dispatcher re-fetches
// the record rather than trusting the notification as data.
type Notification struct {
	ResourceType string     `json:"resource_type"`
	RecordID     string     `json:"record_id"`
	ChangeKind   ChangeKind `json:"change_kind"`
}

// Refresher is what a cache exposes to the push channel: a list
// refresh and a single-record refresh.
type Refresher interface {
	Refresh(ctx context.Context) error
	RefreshRecord(ctx context.Context, id string) error
}

// Dispatcher routes push notifications to the cache registered for
// each resource type.
type Dispatcher struct {
	mu         sync.Mutex
	refreshers map[string]Refresher
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{refreshers: make(map[string]Refresher)}
}

// Register wires a resource type to its cache. A second registration
// for the same type replaces the first.
func (d *Dispatcher) Register(resource string, r Refresher) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refreshers[resource] = r
}

// Dispatch reacts to one notification. A created record is picked up
// by a list refresh (the server decides where it belongs in the page);
// an updated or deleted record by a single-record re-fetch, where a
// not-found reply removes the local copy.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) error {
	if !n.ChangeKind.IsValid() {
		return fmt.Errorf("push: unknown change kind %q", n.ChangeKind)
	}

	d.mu.Lock()
	r, ok := d.refreshers[n.ResourceType]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("push: no cache registered for resource %q", n.ResourceType)
	}

	switch n.ChangeKind {
	case ChangeCreated:
		return r.Refresh(ctx)
	default:
		return r.RefreshRecord(ctx, n.RecordID)
	}
}
