package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/quill/internal/logging"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/aretw0/quill/pkg/ports"
)

var errServiceClosed = errors.New("render service is closed")

// Service is the public façade of the bridge. It holds the producer side of the queue and
// is shared by every handler; construct it once at startup and pass it explicitly.
type Service struct {
	queue   *queue
	engine  string
	logger  *slog.Logger
	hooks   domain.RenderHooks
	timeout time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// NewService starts the worker that owns engine and returns the façade in front of it.
// The engine must not be used by anything else afterwards.
func NewService(engine ports.Engine, opts ...Option) *Service {
	s := &Service{
		queue:  newQueue(),
		engine: engine.Name(),
		logger: logging.NewNop(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	w := &worker{
		engine:  engine,
		queue:   s.queue,
		logger:  s.logger.With("component", "render-worker"),
		hooks:   s.hooks,
		timeout: s.timeout,
	}
	go w.run(s.done)

	return s
}

// Render enqueues tpl and data and waits for this call's own result.
// The caller's goroutine only blocks on its completion handle; if ctx ends first the call
// returns ctx's error and the result, when produced, is discarded.
func (s *Service) Render(ctx context.Context, tpl domain.Template, data any) (string, error) {
	if err := tpl.Validate(); err != nil {
		return "", err
	}

	var wait <-chan result
	req, depth := s.queue.submit(func() *Request {
		r, handle := newRequest(ctx, tpl, data)
		wait = handle
		return r
	})
	if req == nil {
		return "", domain.NewRenderError(domain.ErrEngineUnavailable, tpl.Name, errServiceClosed)
	}

	if s.hooks.OnEnqueue != nil {
		s.hooks.OnEnqueue(ctx, &domain.RenderEvent{
			EventBase: domain.EventBase{
				Timestamp: req.enqueued,
				Type:      domain.EventRenderEnqueue,
				RequestID: req.ID,
			},
			Template:   tpl.Name,
			Engine:     s.engine,
			QueueDepth: depth,
		})
	}

	select {
	case res := <-wait:
		return res.html, res.err
	case <-ctx.Done():
		s.logger.Debug("render abandoned by caller", "template", tpl.Name, "request_id", req.ID, "err", ctx.Err())
		return "", fmt.Errorf("render %s: %w", tpl.Name, ctx.Err())
	}
}

// Close stops accepting new requests. Requests already queued are still rendered.
// It is safe to call more than once.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		if s.queue.close() {
			s.logger.Info("render service closed", "pending", s.queue.len())
		}
	})
	return nil
}

// Shutdown closes the service and waits for the worker to drain the queue and exit.
func (s *Service) Shutdown(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("render worker did not drain: %w", ctx.Err())
	}
}

// Done is closed once the worker has exited.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Pending returns the number of queued, not yet started requests.
func (s *Service) Pending() int {
	return s.queue.len()
}

// Engine returns the name of the engine variant the worker holds.
func (s *Service) Engine() string {
	return s.engine
}
