package render

import (
	"context"

	"github.com/aretw0/quill/pkg/ports"
)

const defaultTitle = "<no title>"

// RenderFragment renders a standalone fragment.
func (s *Service) RenderFragment(ctx context.Context, fragment string, data map[string]any, src ports.TemplateSource) (string, error) {
	tpl, err := src.Lookup(fragment)
	if err != nil {
		return "", err
	}
	return s.Render(ctx, tpl, data)
}

// RenderPage renders fragment with data, then renders page with the fragment as its content.
// The page receives only {title, content}; title comes from data["title"].
func (s *Service) RenderPage(ctx context.Context, page, fragment string, data map[string]any, src ports.TemplateSource) (string, error) {
	pageTpl, err := src.Lookup(page)
	if err != nil {
		return "", err
	}

	content, err := s.RenderFragment(ctx, fragment, data, src)
	if err != nil {
		return "", err
	}

	title := defaultTitle
	if t, ok := data["title"].(string); ok && t != "" {
		title = t
	}

	return s.Render(ctx, pageTpl, map[string]any{
		"title":   title,
		"content": content,
	})
}

// Views binds a Service to a TemplateSource so handlers can render by name.
type Views struct {
	service *Service
	source  ports.TemplateSource
}

// NewViews creates a view helper.
func NewViews(service *Service, source ports.TemplateSource) *Views {
	return &Views{service: service, source: source}
}

// Fragment renders the named template.
func (v *Views) Fragment(ctx context.Context, name string, data map[string]any) (string, error) {
	return v.service.RenderFragment(ctx, name, data, v.source)
}

// Page renders fragment inside page.
func (v *Views) Page(ctx context.Context, page, fragment string, data map[string]any) (string, error) {
	return v.service.RenderPage(ctx, page, fragment, data, v.source)
}

// Service returns the underlying render service.
func (v *Views) Service() *Service {
	return v.service
}

// Source returns the template source.
func (v *Views) Source() ports.TemplateSource {
	return v.source
}
