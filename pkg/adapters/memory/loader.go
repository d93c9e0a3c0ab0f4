package memory

import (
	"sort"

	"github.com/aretw0/quill/pkg/domain"
)

// Loader implements ports.TemplateSource using an in-memory map.
// Templates are Static: the map is copied at construction and never changes.
type Loader struct {
	templates map[string]string
}

// NewLoader creates a new in-memory loader from name → content pairs.
func NewLoader(data map[string]string) *Loader {
	templates := make(map[string]string, len(data))
	for k, v := range data {
		templates[k] = v
	}
	return &Loader{
		templates: templates,
	}
}

// Lookup resolves a template by name.
func (l *Loader) Lookup(name string) (domain.Template, error) {
	content, ok := l.templates[name]
	if !ok {
		return domain.Template{}, domain.NewRenderError(domain.ErrTemplateNotFound, name, nil)
	}
	return domain.StaticTemplate(name, content), nil
}

// List returns all available template names.
func (l *Loader) List() ([]string, error) {
	keys := make([]string, 0, len(l.templates))
	for k := range l.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
