package render

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/aretw0/quill/pkg/ports"
)

// worker is the only execution context allowed to touch the engine.
type worker struct {
	engine  ports.Engine
	queue   *queue
	logger  *slog.Logger
	hooks   domain.RenderHooks
	timeout time.Duration

	processed int
	failed    int
	skipped   int
}

// run drains the queue until it is closed and empty, then closes the engine and done.
func (w *worker) run(done chan<- struct{}) {
	// Interpreters with thread affinity must always be called from the same OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)

	w.logger.Info("render worker started", "engine", w.engine.Name())

	for {
		if req, ok := w.queue.tryPop(); ok {
			w.process(req)
			continue
		}
		if w.queue.drained() {
			break
		}
		<-w.queue.wait()
	}

	if err := w.engine.Close(); err != nil {
		w.logger.Warn("engine close failed", "engine", w.engine.Name(), "err", err)
	}
	w.logger.Info("render worker stopped",
		"engine", w.engine.Name(),
		"processed", w.processed,
		"failed", w.failed,
		"skipped", w.skipped,
	)
}

// process services one request and writes its outcome to its completion handle.
func (w *worker) process(req *Request) {
	event := &domain.RenderEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventRenderStart,
			RequestID: req.ID,
		},
		Template:   req.Template.Name,
		Engine:     w.engine.Name(),
		QueueDepth: w.queue.len(),
	}
	if w.hooks.OnRenderStart != nil {
		w.hooks.OnRenderStart(req.ctx, event)
	}

	start := time.Now()
	html, err := w.invoke(req)

	// Callers resume before the done hook runs.
	req.complete(html, err)

	w.processed++
	if err != nil {
		w.failed++
	}

	done := *event
	done.Type = domain.EventRenderDone
	done.Timestamp = time.Now()
	done.Duration = time.Since(start)
	done.Wait = time.Since(req.enqueued)
	done.Err = err
	if w.hooks.OnRenderDone != nil {
		w.hooks.OnRenderDone(req.ctx, &done)
	}
}

// invoke calls the engine with failure containment: an error or a panic becomes this
// request's result and nothing else.
func (w *worker) invoke(req *Request) (html string, err error) {
	name := req.Template.Name

	if cause := req.abandoned(); cause != nil {
		w.skipped++
		w.logger.Debug("skipping abandoned render", "template", name, "request_id", req.ID, "err", cause)
		return "", fmt.Errorf("render %s abandoned before start: %w", name, cause)
	}

	ctx := req.ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("engine panic recovered", "template", name, "request_id", req.ID, "panic", r)
			err = withRequestID(domain.NewRenderError(domain.ErrRenderFailure, name, fmt.Errorf("engine panic: %v", r)), req.ID)
			w.reset()
		}
	}()

	html, err = w.engine.Render(ctx, req.Template, req.Payload)
	if err != nil {
		re := withRequestID(domain.AsRenderError(name, err), req.ID)
		w.logger.Warn("render failed",
			"template", name,
			"request_id", req.ID,
			"kind", domain.KindOf(re),
			"err", re.Cause,
		)
		return "", re
	}
	return html, nil
}

func (w *worker) reset() {
	r, ok := w.engine.(ports.Resetter)
	if !ok {
		return
	}
	if err := r.Reset(); err != nil {
		w.logger.Error("engine reset failed", "engine", w.engine.Name(), "err", err)
	}
}

func withRequestID(re *domain.RenderError, id string) *domain.RenderError {
	if re.RequestID == "" {
		re.RequestID = id
	}
	return re
}
