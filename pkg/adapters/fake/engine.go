// Package fake provides a deterministic Engine for tests and for running without an interpreter.
package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/quill/pkg/domain"
)

// Name is the variant name reported by the fake engine.
const Name = "fake"

// Output returns what the fake engine renders for a template name.
func Output(name string) string {
	return fmt.Sprintf("[rendered:%s]", name)
}

// Engine ignores content and payload and returns "[rendered:<name>]".
// It records the order in which templates were rendered.
type Engine struct {
	mu     sync.Mutex
	calls  []string
	delay  time.Duration
	closed bool
}

// Option configures the fake engine.
type Option func(*Engine)

// WithDelay makes every render take d, honouring context cancellation.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.delay = d
	}
}

// New creates a fake engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string {
	return Name
}

func (e *Engine) Render(ctx context.Context, tpl domain.Template, _ any) (string, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", domain.NewRenderError(domain.ErrEngineUnavailable, tpl.Name, nil)
	}
	e.calls = append(e.calls, tpl.Name)
	e.mu.Unlock()

	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return "", domain.NewRenderError(domain.ErrRenderFailure, tpl.Name, ctx.Err())
		}
	}
	return Output(tpl.Name), nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Calls returns the template names rendered so far, in order.
func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

// Closed reports whether Close was called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
