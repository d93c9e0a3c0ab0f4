package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRenderEnqueue EventType = "render_enqueue"
	EventRenderStart   EventType = "render_start"
	EventRenderDone    EventType = "render_done"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id"`
}

// RenderEvent describes one render request at a point of its lifecycle.
type RenderEvent struct {
	EventBase
	Template   string        `json:"template"`
	Engine     string        `json:"engine,omitempty"`
	QueueDepth int           `json:"queue_depth"`
	Duration   time.Duration `json:"duration,omitempty"` // engine time, set on done
	Wait       time.Duration `json:"wait,omitempty"`     // enqueue to completion, set on done
	Err        error         `json:"-"`
}

// RenderHooks defines callbacks for render observability.
// Hooks run on the goroutine that emits the event; OnRenderStart and OnRenderDone
// run on the worker, so they must not block.
type RenderHooks struct {
	OnEnqueue     func(context.Context, *RenderEvent)
	OnRenderStart func(context.Context, *RenderEvent)
	OnRenderDone  func(context.Context, *RenderEvent)
}

// Merge combines two hook sets, calling h first.
func (h RenderHooks) Merge(other RenderHooks) RenderHooks {
	return RenderHooks{
		OnEnqueue:     chain(h.OnEnqueue, other.OnEnqueue),
		OnRenderStart: chain(h.OnRenderStart, other.OnRenderStart),
		OnRenderDone:  chain(h.OnRenderDone, other.OnRenderDone),
	}
}

func chain(a, b func(context.Context, *RenderEvent)) func(context.Context, *RenderEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *RenderEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
