package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/quill/pkg/domain"
)

// LoggingHooks logs every completed render at debug level and failures at warn.
func LoggingHooks(logger *slog.Logger) domain.RenderHooks {
	return domain.RenderHooks{
		OnRenderDone: func(ctx context.Context, e *domain.RenderEvent) {
			attrs := []any{
				"template", e.Template,
				"request_id", e.RequestID,
				"engine", e.Engine,
				"duration", e.Duration,
				"wait", e.Wait,
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "render_done", append(attrs, "outcome", Outcome(e.Err), "err", e.Err)...)
				return
			}
			logger.DebugContext(ctx, "render_done", attrs...)
		},
	}
}
