package render

import (
	"log/slog"
	"time"

	"github.com/aretw0/quill/pkg/domain"
)

// Option configures the Service.
type Option func(*Service)

// WithLogger configures a logger for the service and its worker.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks registers observability hooks. Multiple calls are merged.
func WithHooks(hooks domain.RenderHooks) Option {
	return func(s *Service) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithRenderTimeout bounds the engine time of a single request (0 disables the bound).
// The caller's own context still applies.
func WithRenderTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}
