package ports

import "github.com/aretw0/quill/pkg/domain"

// TemplateSource resolves a template name into a descriptor.
// It is the "template source provider": the bridge only needs the (name, content) pair.
type TemplateSource interface {
	// Lookup returns the descriptor for name, or domain.ErrTemplateNotFound.
	Lookup(name string) (domain.Template, error)

	// List returns the names this source can resolve, sorted.
	List() ([]string, error)
}
