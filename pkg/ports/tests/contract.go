package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/aretw0/quill/pkg/ports"
)

// TemplateSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.TemplateSource.
func TemplateSourceContractTest(t *testing.T, src ports.TemplateSource, setupData map[string]string) {
	t.Helper()

	// 1. Lookup (Success)
	t.Run("Lookup_Success", func(t *testing.T) {
		for name, expectedContent := range setupData {
			tpl, err := src.Lookup(name)
			if err != nil {
				t.Fatalf("unexpected error looking up %s: %v", name, err)
			}
			if tpl.Name != name {
				t.Errorf("name mismatch: got %q, want %q", tpl.Name, name)
			}
			if tpl.Content != expectedContent {
				t.Errorf("content mismatch for %s. got %q, want %q", name, tpl.Content, expectedContent)
			}
			if tpl.Kind != domain.SourceStatic && tpl.Kind != domain.SourceDynamic {
				t.Errorf("unexpected source kind %q for %s", tpl.Kind, name)
			}
		}
	})

	// 2. Lookup (NotFound)
	t.Run("Lookup_NotFound", func(t *testing.T) {
		for _, name := range []string{"non-existent.html", "../outside.html", ""} {
			_, err := src.Lookup(name)
			if !errors.Is(err, domain.ErrTemplateNotFound) {
				t.Errorf("expected ErrTemplateNotFound for %q, got %v", name, err)
			}
		}
	})

	// 3. List
	t.Run("List", func(t *testing.T) {
		names, err := src.List()
		if err != nil {
			t.Fatalf("unexpected error listing templates: %v", err)
		}

		if len(names) != len(setupData) {
			t.Errorf("expected %d templates, got %d", len(setupData), len(names))
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}

		for name := range setupData {
			if !lookup[name] {
				t.Errorf("template %s missing from list", name)
			}
		}
	})
}
