package domain

import "strings"

// SourceKind tells how a template's content was produced.
type SourceKind string

const (
	// SourceStatic content is produced once at startup and never changes.
	SourceStatic SourceKind = "static"
	// SourceDynamic content is re-read from its origin on every call (live editing).
	SourceDynamic SourceKind = "dynamic"
)

// Template identifies the rendering input.
// It is a value type: build one per request and never mutate it afterwards.
type Template struct {
	Name    string     `json:"name"`
	Content string     `json:"content"`
	Kind    SourceKind `json:"kind"`
}

// StaticTemplate builds a descriptor for build-baked, immutable text.
func StaticTemplate(name, content string) Template {
	return Template{Name: name, Content: content, Kind: SourceStatic}
}

// DynamicTemplate builds a descriptor for freshly read text.
func DynamicTemplate(name, content string) Template {
	return Template{Name: name, Content: content, Kind: SourceDynamic}
}

// IsStatic reports whether the content can be treated as immutable (and thus cached by name).
func (t Template) IsStatic() bool {
	return t.Kind == SourceStatic
}

// Validate checks the descriptor before it reaches an engine.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return NewRenderError(ErrTemplateNotFound, "", errEmptyName)
	}
	return nil
}

// Payload is the structured data a template is rendered against.
type Payload = map[string]any
