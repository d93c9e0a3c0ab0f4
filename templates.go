package quill

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templatesFS embed.FS

// EmbeddedTemplates returns the built-in templates rooted at the templates directory,
// so names look like "layout.html" and "email_inbox/list.html".
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		// The directive above guarantees the directory exists.
		panic(err)
	}
	return sub
}
