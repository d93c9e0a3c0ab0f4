package render

import (
	"context"
	"time"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/google/uuid"
)

// result is what travels back through a completion handle.
type result struct {
	html string
	err  error
}

// Request is one unit of work for the worker.
// It is created by Service.Render, consumed exactly once by the worker and then dropped.
type Request struct {
	ID       string
	Template domain.Template
	Payload  any

	ctx      context.Context
	enqueued time.Time

	// done is the producer side of the completion handle. It has capacity 1 so the worker
	// never blocks on a caller that stopped waiting.
	done      chan<- result
	completed bool
}

// newRequest pairs a request with the consumer side of its completion handle.
func newRequest(ctx context.Context, tpl domain.Template, data any) (*Request, <-chan result) {
	ch := make(chan result, 1)
	return &Request{
		ID:       uuid.NewString(),
		Template: tpl,
		Payload:  data,
		ctx:      ctx,
		enqueued: time.Now(),
		done:     ch,
	}, ch
}

// complete writes the outcome to the handle. Only the worker calls it; the first call wins.
func (r *Request) complete(html string, err error) {
	if r.completed {
		return
	}
	r.completed = true
	r.done <- result{html: html, err: err}
}

// abandoned reports whether the caller stopped waiting before the worker picked the request up.
func (r *Request) abandoned() error {
	return r.ctx.Err()
}
