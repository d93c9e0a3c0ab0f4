package ports

import (
	"context"

	"github.com/aretw0/quill/pkg/domain"
)

// Engine is the rendering capability owned by the worker.
// Implementations are not required to be safe for concurrent use: the worker guarantees
// that at most one Render call is in flight and that every call comes from the same goroutine.
type Engine interface {
	// Name identifies the engine variant in logs and metrics (e.g. "lua", "fake").
	Name() string

	// Render executes the template against data and returns the produced text.
	// Failures should be *domain.RenderError values; anything else is treated as a RenderFailure.
	// ctx is the caller's context; engines may use it to abort long renders.
	Render(ctx context.Context, tpl domain.Template, data any) (string, error)

	// Close releases the engine's resources. Called once, by the worker, on shutdown.
	Close() error
}

// Resetter is implemented by engines that can rebuild their internal state after a fault
// (for instance a recovered panic left the interpreter in an unknown state).
type Resetter interface {
	Reset() error
}
