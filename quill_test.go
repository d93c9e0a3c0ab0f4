package quill_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/internal/config"
	"github.com/aretw0/quill/pkg/adapters/fake"
	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(engine string) config.Config {
	cfg := config.Default()
	cfg.UseTestPool = true
	cfg.Engine = engine
	return cfg
}

func newApp(t *testing.T, cfg config.Config, opts ...quill.Option) *quill.App {
	t.Helper()
	app, err := quill.New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		app.Close(ctx)
	})
	return app
}

func get(t *testing.T, h http.Handler, target string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestApp_RootWithFakeEngine(t *testing.T) {
	app := newApp(t, testConfig(config.EngineFake))

	code, body := get(t, app.Handler(), "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, fake.Output("layout.html"), body)
}

func TestApp_TestRedisUsesMemoryStore(t *testing.T) {
	app := newApp(t, testConfig(config.EngineFake))

	code, body := get(t, app.Handler(), "/test-redis")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "testval", body)
}

func TestApp_Health(t *testing.T) {
	app := newApp(t, testConfig(config.EngineLua))

	code, body := get(t, app.Handler(), "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"engine":"lua"`)
}

func TestApp_Metrics(t *testing.T) {
	app := newApp(t, testConfig(config.EngineFake))
	h := app.Handler()

	code, _ := get(t, h, "/")
	require.Equal(t, http.StatusOK, code)

	assert.Eventually(t, func() bool {
		_, body := get(t, h, "/metrics")
		return strings.Contains(body, `quill_renders_total{outcome="ok",template="layout.html"} 1`)
	}, time.Second, 10*time.Millisecond)
}

func TestApp_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("handlebars")
	_, err := quill.New(cfg)
	assert.ErrorContains(t, err, "unknown engine")
}

func TestApp_InjectedEngineAndSource(t *testing.T) {
	engine := fake.New()
	app := newApp(t, testConfig(config.EngineLua),
		quill.WithEngine(engine),
		quill.WithSource(memory.NewLoader(map[string]string{"only.html": "x"})),
	)

	out, err := app.Render(context.Background(), "only.html", nil)
	require.NoError(t, err)
	assert.Equal(t, "[rendered:only.html]", out)

	_, err = app.Render(context.Background(), "index.html", nil)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	assert.Len(t, engine.Calls(), 1)
}

func TestApp_DevModeRereadsTemplates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.html")
	require.NoError(t, os.WriteFile(path, []byte("v1 {{ n }}"), 0o644))

	cfg := testConfig(config.EngineLua)
	cfg.Templates.Dev = true
	cfg.Templates.Dir = dir
	app := newApp(t, cfg)

	ctx := context.Background()
	out, err := app.Render(ctx, "live.html", map[string]any{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, "v1 1", out)

	require.NoError(t, os.WriteFile(path, []byte("v2 {{ n }}"), 0o644))
	out, err = app.Render(ctx, "live.html", map[string]any{"n": 2})
	require.NoError(t, err)
	assert.Equal(t, "v2 2", out)
}

func TestApp_CloseFailsFast(t *testing.T) {
	app, err := quill.New(testConfig(config.EngineFake))
	require.NoError(t, err)
	require.NoError(t, app.Close(context.Background()))

	_, err = app.Render(context.Background(), "index.html", nil)
	assert.ErrorIs(t, err, domain.ErrEngineUnavailable)
}

func TestApp_AdminShutdown(t *testing.T) {
	called := make(chan struct{}, 1)
	app := newApp(t, testConfig(config.EngineFake), quill.WithShutdown(func() { called <- struct{}{} }))

	code, body := get(t, app.Handler(), "/admin/shutdown")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "shutting down", body)
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("shutdown callback not called")
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{"layout.html", "index.html", "email_inbox/list.html"} {
		_, err := io.ReadAll(mustOpen(t, name))
		assert.NoError(t, err, name)
	}
}

func mustOpen(t *testing.T, name string) io.Reader {
	t.Helper()
	f, err := quill.EmbeddedTemplates().Open(name)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, strings.TrimSpace(quill.Version))
}

// Golden files live in testdata/; refresh them with `go test -run Golden -update`.

func TestGolden_IndexPage(t *testing.T) {
	app := newApp(t, testConfig(config.EngineLua))

	code, body := get(t, app.Handler(), "/?name=ann")
	require.Equal(t, http.StatusOK, code)

	g := goldie.New(t)
	g.Assert(t, "index_page", []byte(body))
}

func TestGolden_InboxList(t *testing.T) {
	app := newApp(t, testConfig(config.EngineLua))
	h := app.Handler()

	code, body := get(t, h, "/email-inbox/list")
	require.Equal(t, http.StatusOK, code)
	goldie.New(t).Assert(t, "inbox_empty", []byte(body))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/email-inbox", strings.NewReader(
		`{"from_mail":"a@example.com","to_mail":"me@example.com","send_date":"2024-01-01 10:00","subject":"Hi & bye"}`,
	)))
	require.Equal(t, http.StatusCreated, rec.Code)

	code, body = get(t, h, "/email-inbox/list")
	require.Equal(t, http.StatusOK, code)
	goldie.New(t).Assert(t, "inbox_list", []byte(body))
}
