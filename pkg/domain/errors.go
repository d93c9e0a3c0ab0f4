package domain

import (
	"errors"
	"fmt"
)

// Render error kinds. A *RenderError matches its kind with errors.Is.
var (
	// ErrEngineUnavailable is returned when the worker has stopped and no new work is accepted.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrTemplateNotFound is returned when a template cannot be resolved before reaching the engine.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrRenderFailure wraps a syntax, binding or runtime fault reported by the engine.
	ErrRenderFailure = errors.New("render failure")

	// ErrPayload is returned when the engine cannot interpret the payload.
	ErrPayload = errors.New("payload error")
)

// ErrUserNotFound is returned when a user ID does not exist in the store.
var ErrUserNotFound = errors.New("user not found")

// ErrKeyNotFound is returned by key-value stores for missing keys.
var ErrKeyNotFound = errors.New("key not found")

var errEmptyName = errors.New("template name is empty")

// RenderError is the single error type surfaced by a render call.
// The original cause is kept for logging and is reachable through errors.Unwrap.
type RenderError struct {
	Kind      error
	Template  string
	RequestID string
	Cause     error
}

// NewRenderError builds a RenderError of the given kind.
func NewRenderError(kind error, template string, cause error) *RenderError {
	return &RenderError{Kind: kind, Template: template, Cause: cause}
}

func (e *RenderError) Error() string {
	msg := e.Kind.Error()
	if e.Template != "" {
		msg = fmt.Sprintf("%s (template=%s)", msg, e.Template)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Is matches the error kind so callers can write errors.Is(err, domain.ErrRenderFailure).
func (e *RenderError) Is(target error) bool {
	return e.Kind == target
}

// KindOf returns the kind sentinel of err, or nil when err is not a render error.
func KindOf(err error) error {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Kind
	}
	return nil
}

// AsRenderError classifies any engine error: render errors pass through,
// everything else becomes a RenderFailure for the given template.
func AsRenderError(template string, err error) *RenderError {
	if err == nil {
		return nil
	}
	var re *RenderError
	if errors.As(err, &re) {
		if re.Template == "" {
			re.Template = template
		}
		return re
	}
	return NewRenderError(ErrRenderFailure, template, err)
}
