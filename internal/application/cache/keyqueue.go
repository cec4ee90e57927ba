package cache

import "sync"

// keyQueue serializes work per key while leaving different keys free
// to run concurrently. Callers block until their turn; arrival order
// (the order Run acquires the queue lock) is execution order, which is
// what keeps a slow update from being overtaken by a later delete of
// the same record.
type keyQueue struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func newKeyQueue() *keyQueue {
	return &keyQueue{tails: make(map[string]chan struct{})}
}

// Run executes fn after every previously enqueued fn for the same key
// has finished. It returns when fn returns.
func (q *keyQueue) Run(key string, fn func()) {
	q.mu.Lock()
	prev := q.tails[key]
	done := make(chan struct{})
	q.tails[key] = done
	q.mu.Unlock()

	if prev != nil {
		<-prev
	}

	defer func() {
		close(done)
		q.mu.Lock()
		if q.tails[key] == done {
			delete(q.tails, key)
		}
		q.mu.Unlock()
	}()

	fn()
}
