package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunEngineContract verifies that an Engine honours the rendering contract:
// every input produces either a string or a typed render error, and a failing call
// leaves the engine usable for the next one.
func RunEngineContract(t *testing.T, engine Engine) {
	ctx := context.Background()

	t.Run("Name", func(t *testing.T) {
		assert.NotEmpty(t, engine.Name())
	})

	t.Run("Plain Text", func(t *testing.T) {
		out, err := engine.Render(ctx, domain.StaticTemplate("plain.html", "<p>plain</p>"), map[string]any{})
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	})

	t.Run("Nil Payload", func(t *testing.T) {
		_, err := engine.Render(ctx, domain.StaticTemplate("nil.html", "nothing to bind"), nil)
		assert.NoError(t, err)
	})

	t.Run("Typed Errors Only", func(t *testing.T) {
		inputs := []domain.Template{
			domain.StaticTemplate("broken.html", "{{ "),
			domain.StaticTemplate("missing.html", "{{ missing }}"),
			domain.DynamicTemplate("dyn.html", "{% for i = 1, 2 do %}{{ i }}{% end %}"),
		}
		for _, tpl := range inputs {
			_, err := engine.Render(ctx, tpl, map[string]any{"x": 1})
			if err == nil {
				continue
			}
			var re *domain.RenderError
			assert.True(t, errors.As(err, &re), "engine %s returned untyped error for %s: %v", engine.Name(), tpl.Name, err)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		tpl := domain.StaticTemplate("det.html", "same")
		payload := map[string]any{"k": "v"}
		first, err1 := engine.Render(ctx, tpl, payload)
		second, err2 := engine.Render(ctx, tpl, payload)
		assert.Equal(t, err1 == nil, err2 == nil)
		assert.Equal(t, first, second)
	})

	t.Run("Bounded", func(t *testing.T) {
		// A trivial render must not take long on any variant.
		start := time.Now()
		_, _ = engine.Render(ctx, domain.StaticTemplate("fast.html", "fast"), nil)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}

// RunKeyValueStoreContract runs a suite of tests to verify that a KeyValueStore implementation
// adheres to the defined interface contract.
func RunKeyValueStoreContract(t *testing.T, store KeyValueStore) {
	ctx := context.Background()
	key := "contract-test-key-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		err := store.Set(ctx, key, "testval", 0)
		require.NoError(t, err, "Set should not return error")

		val, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, "testval", val)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, "first", 0))
		require.NoError(t, store.Set(ctx, key, "second", 0))

		val, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", val)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, "gone", 0))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound, "Get after Delete should return ErrKeyNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
	})
}
