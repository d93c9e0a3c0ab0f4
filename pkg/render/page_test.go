package render_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/aretw0/quill/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// composeEngine renders pages as "<title>|<content>" and fragments as "<name>:<tag>".
type composeEngine struct{ echoEngine }

func (composeEngine) Render(ctx context.Context, tpl domain.Template, data any) (string, error) {
	m, _ := data.(map[string]any)
	if content, ok := m["content"]; ok {
		return fmt.Sprintf("%v|%v", m["title"], content), nil
	}
	return echoEngine{}.Render(ctx, tpl, data)
}

func TestViews_Fragment(t *testing.T) {
	svc := newService(t, composeEngine{})
	views := render.NewViews(svc, mapSource{"index.html": ""})

	out, err := views.Fragment(context.Background(), "index.html", map[string]any{"tag": "frag"})
	require.NoError(t, err)
	assert.Equal(t, "index.html:frag", out)
	assert.Same(t, svc, views.Service())
}

func TestViews_Page(t *testing.T) {
	svc := newService(t, composeEngine{})
	views := render.NewViews(svc, mapSource{"layout.html": "", "index.html": ""})

	out, err := views.Page(context.Background(), "layout.html", "index.html", map[string]any{"tag": "frag", "title": "Home"})
	require.NoError(t, err)
	assert.Equal(t, "Home|index.html:frag", out)

	out, err = views.Page(context.Background(), "layout.html", "index.html", map[string]any{"tag": "frag"})
	require.NoError(t, err)
	assert.Equal(t, "<no title>|index.html:frag", out)
}

func TestViews_MissingTemplate(t *testing.T) {
	svc := newService(t, composeEngine{})
	views := render.NewViews(svc, mapSource{"layout.html": ""})

	_, err := views.Page(context.Background(), "layout.html", "nope.html", nil)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

	_, err = views.Page(context.Background(), "nope.html", "layout.html", nil)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}
