package memory_test

import (
	"testing"

	"github.com/aretw0/quill/pkg/adapters/memory"
	contract "github.com/aretw0/quill/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	data := map[string]string{
		"layout.html": "<title>{{ title }}</title>{{! content }}",
		"index.html":  "Hello {{ name }}",
	}

	loader := memory.NewLoader(data)

	contract.TemplateSourceContractTest(t, loader, data)
}

func TestInMemoryLoader_CopiesInput(t *testing.T) {
	data := map[string]string{"a.html": "a"}
	loader := memory.NewLoader(data)
	data["a.html"] = "changed"

	tpl, err := loader.Lookup("a.html")
	require.NoError(t, err)
	assert.Equal(t, "a", tpl.Content)
	assert.True(t, tpl.IsStatic())
}
