package source

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/aretw0/quill/pkg/domain"
)

// EmbeddedSource serves templates read once from a file system (typically an embed.FS).
type EmbeddedSource struct {
	templates map[string]string
}

// Embedded reads every regular file of fsys. Template names are slash-separated paths
// relative to the root of fsys.
func Embedded(fsys fs.FS) (*EmbeddedSource, error) {
	templates := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}
		templates[path] = string(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &EmbeddedSource{templates: templates}, nil
}

// Lookup returns the Static descriptor for name.
func (s *EmbeddedSource) Lookup(name string) (domain.Template, error) {
	content, ok := s.templates[name]
	if !ok {
		return domain.Template{}, domain.NewRenderError(domain.ErrTemplateNotFound, name, fs.ErrNotExist)
	}
	return domain.StaticTemplate(name, content), nil
}

// List returns the embedded template names in lexical order.
func (s *EmbeddedSource) List() ([]string, error) {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
