package render

import "sync"

// queue is the dispatch channel: a multi-producer, single-consumer FIFO of requests.
//
// It is unbounded on purpose. The engine call is the only blocking step and it runs on the
// worker; a bounded queue would let one slow render push back on every caller at once.
// Memory grows under sustained overload instead.
//
// The signal channel (buffered, size 1) lets the worker sleep until work arrives; closing it
// wakes the worker for the final drain.
type queue struct {
	mu     sync.Mutex
	items  []*Request
	closed bool
	signal chan struct{}
}

func newQueue() *queue {
	return &queue{
		items:  make([]*Request, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// submit builds a request with build and appends it, both under the queue lock.
// It returns nil without calling build when the queue is closed, so a rejected call never
// allocates a completion handle.
func (q *queue) submit(build func() *Request) (*Request, int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, len(q.items)
	}

	req := build()
	q.items = append(q.items, req)

	// Non-blocking: a pending signal already covers this item.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return req, len(q.items)
}

// tryPop removes and returns the oldest request without blocking.
func (q *queue) tryPop() (*Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}

	req := q.items[0]
	q.items[0] = nil // release the slot for GC

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return req, true
}

// wait returns a channel that fires when requests may be available or the queue was closed.
func (q *queue) wait() <-chan struct{} {
	return q.signal
}

// drained reports whether the queue is closed and empty; no request can ever arrive again.
func (q *queue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.items) == 0
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// close stops accepting requests. Already queued requests stay and will be drained.
// It reports whether this call performed the close.
func (q *queue) close() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.closed = true
	close(q.signal)
	return true
}
