/*
Package render implements the template-rendering dispatch bridge.

Any number of goroutines may call Service.Render concurrently. Each call becomes a Request
carrying its own one-shot completion handle and is appended to an unbounded FIFO queue. A
single worker goroutine, pinned to its OS thread, owns the Engine, drains the queue in order
and writes each outcome to the matching handle. Callers only ever block on their own handle,
so a slow render never stalls the enqueue path and results never cross between callers.

# Lifecycle

	svc := render.NewService(engine, render.WithLogger(logger))
	html, err := svc.Render(ctx, domain.StaticTemplate("hello.html", "Hello {{ name }}"), map[string]any{"name": "world"})
	...
	_ = svc.Shutdown(ctx) // stop accepting work, drain the queue, close the engine

After Close (or Shutdown) every Render fails fast with domain.ErrEngineUnavailable.
*/
package render
