package source

import (
	"io/fs"
	"os"
	"sort"

	"github.com/aretw0/quill/pkg/domain"
)

// DirectorySource reads templates from disk on every lookup (live editing).
type DirectorySource struct {
	dir  string
	fsys fs.FS
}

// Directory serves templates below dir. Names that escape dir are not found.
func Directory(dir string) *DirectorySource {
	return &DirectorySource{dir: dir, fsys: os.DirFS(dir)}
}

// Dir returns the root directory.
func (s *DirectorySource) Dir() string {
	return s.dir
}

// Lookup re-reads name and returns a Dynamic descriptor.
func (s *DirectorySource) Lookup(name string) (domain.Template, error) {
	if !fs.ValidPath(name) || name == "." {
		return domain.Template{}, domain.NewRenderError(domain.ErrTemplateNotFound, name, fs.ErrInvalid)
	}
	content, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return domain.Template{}, domain.NewRenderError(domain.ErrTemplateNotFound, name, err)
	}
	return domain.DynamicTemplate(name, string(content)), nil
}

// List walks dir and returns every file name in lexical order.
func (s *DirectorySource) List() ([]string, error) {
	var names []string
	err := fs.WalkDir(s.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
