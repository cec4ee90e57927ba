package push

import "sync"

// InvalidationHub carries the explicit cross-cache invalidation
// signals: a successful mutation in one cache may trigger a refresh of
// a dependent cache, but caches never touch each other's state.
// It satisfies the cache package's Invalidator interface.
type InvalidationHub struct {
	mu   sync.Mutex
	subs map[string][]func()
}

// NewInvalidationHub creates an empty hub.
func NewInvalidationHub() *InvalidationHub {
	return &InvalidationHub{subs: make(map[string][]func())}
}

// Subscribe registers a callback to run whenever the named resource
// is successfully mutated. Callbacks typically schedule a Refresh on
// a dependent cache.
func (h *InvalidationHub) Subscribe(resource string, fn func()) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[resource] = append(h.subs[resource], fn)
}

// Invalidate announces a successful mutation of the resource.
// Callbacks run synchronously in subscription order.
func (h *InvalidationHub) Invalidate(resource string) {
	h.mu.Lock()
	fns := make([]func(), len(h.subs[resource]))
	copy(fns, h.subs[resource])
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
