package observability

import (
	"context"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values of quill_renders_total.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeFailure  = "render_failure"
	OutcomePayload  = "payload_error"
	OutcomeStopped  = "engine_unavailable"
	OutcomeCanceled = "canceled"
)

// Metrics holds the Prometheus collectors for the render pipeline.
type Metrics struct {
	QueueDepth     prometheus.Gauge
	Renders        *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	RenderWait     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quill_render_queue_depth",
			Help: "Number of render requests waiting for the worker",
		}),
		Renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_renders_total",
				Help: "Total number of completed render requests",
			},
			[]string{"template", "outcome"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quill_render_duration_seconds",
				Help:    "Engine time spent per render",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"engine"},
		),
		RenderWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quill_render_wait_seconds",
			Help:    "Time from enqueue to completion",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
	reg.MustRegister(m.QueueDepth, m.Renders, m.RenderDuration, m.RenderWait)
	return m
}

// Hooks returns render hooks that record into m.
func (m *Metrics) Hooks() domain.RenderHooks {
	return domain.RenderHooks{
		OnEnqueue: func(_ context.Context, e *domain.RenderEvent) {
			m.QueueDepth.Set(float64(e.QueueDepth))
		},
		OnRenderStart: func(_ context.Context, e *domain.RenderEvent) {
			m.QueueDepth.Set(float64(e.QueueDepth))
		},
		OnRenderDone: func(_ context.Context, e *domain.RenderEvent) {
			m.Renders.WithLabelValues(e.Template, Outcome(e.Err)).Inc()
			m.RenderDuration.WithLabelValues(e.Engine).Observe(e.Duration.Seconds())
			m.RenderWait.Observe(e.Wait.Seconds())
		},
	}
}

// Outcome maps a render error to its metric label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	switch domain.KindOf(err) {
	case domain.ErrTemplateNotFound:
		return OutcomeNotFound
	case domain.ErrPayload:
		return OutcomePayload
	case domain.ErrEngineUnavailable:
		return OutcomeStopped
	case domain.ErrRenderFailure:
		return OutcomeFailure
	}
	return OutcomeCanceled
}
