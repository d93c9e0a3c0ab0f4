package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/quill/internal/store"
	"github.com/aretw0/quill/pkg/adapters/fake"
	"github.com/aretw0/quill/pkg/adapters/lua"
	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/adapters/redis"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/aretw0/quill/pkg/observability"
	"github.com/aretw0/quill/pkg/ports"
	"github.com/aretw0/quill/pkg/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTemplates = map[string]string{
	"layout.html":           "<title>{{ title }}</title><main>{{! content }}</main>",
	"index.html":            "Hello {{ name }}:{% for _, u in ipairs(users) do %}[{{ u.id }} {{ u.name }}]{% end %}",
	"email_inbox/list.html": "{% for _, m in ipairs(messages) do %}<li>{{ m.subject }}</li>{% end %}",
	"broken.html":           "{{ nope }}",
}

type fixture struct {
	handler  http.Handler
	svc      *render.Service
	db       *store.Store
	shutdown atomic.Int32
}

func newFixture(t *testing.T, engine ports.Engine, kv ports.KeyValueStore, templates map[string]string) *fixture {
	t.Helper()

	db, err := store.Open(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	if kv == nil {
		kv = memory.NewStore()
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	svc := render.NewService(engine, render.WithHooks(metrics.Hooks()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	})

	f := &fixture{svc: svc, db: db}
	f.handler = NewHandler(Config{
		Views:    render.NewViews(svc, memory.NewLoader(templates)),
		Users:    db,
		Inbox:    db,
		KV:       kv,
		Gatherer: reg,
		Shutdown: func() { f.shutdown.Add(1) },
	})
	return f
}

func newLuaEngine(t *testing.T) *lua.Engine {
	t.Helper()
	e, err := lua.New()
	require.NoError(t, err)
	return e
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestIndex_FakeEngine(t *testing.T) {
	f := newFixture(t, fake.New(), nil, testTemplates)

	w := f.do(t, "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[rendered:layout.html]", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestIndex_LuaEngine(t *testing.T) {
	f := newFixture(t, newLuaEngine(t), nil, testTemplates)

	w := f.do(t, "GET", "/?name=ann", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "<title>Home</title><main>Hello ann:[1 ann]</main>", w.Body.String())

	w = f.do(t, "GET", "/?name=ann", "")
	assert.Equal(t, "<title>Home</title><main>Hello ann:[1 ann][2 ann]</main>", w.Body.String())

	w = f.do(t, "GET", "/", "")
	assert.Equal(t, "<title>Home</title><main>Hello guest:[3 guest]</main>", w.Body.String())
}

func TestIndex_EscapesUserInput(t *testing.T) {
	f := newFixture(t, newLuaEngine(t), nil, testTemplates)

	w := f.do(t, "GET", "/?name=%3Cscript%3E", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<script>")
	assert.Contains(t, w.Body.String(), "&lt;script&gt;")
}

func TestRenderErrorsAreGeneric500(t *testing.T) {
	templates := map[string]string{
		"layout.html": testTemplates["layout.html"],
		"index.html":  "{{ undefined_thing }}",
	}
	f := newFixture(t, newLuaEngine(t), nil, templates)

	w := f.do(t, "GET", "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server Error", strings.TrimSpace(w.Body.String()))
	assert.NotContains(t, w.Body.String(), "undefined")

	// Template missing from the source.
	w = f.do(t, "GET", "/email-inbox/list", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server Error", strings.TrimSpace(w.Body.String()))
}

func TestRenderAfterShutdownIs500(t *testing.T) {
	f := newFixture(t, fake.New(), nil, testTemplates)
	require.NoError(t, f.svc.Shutdown(context.Background()))

	w := f.do(t, "GET", "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = f.do(t, "GET", "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUserRoutes(t *testing.T) {
	f := newFixture(t, fake.New(), nil, testTemplates)

	w := f.do(t, "GET", "/add-user?name=zzp", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rows affected : 1", w.Body.String())

	w = f.do(t, "GET", "/add-user", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, "GET", "/users?name=zzp", "")
	require.Equal(t, http.StatusOK, w.Code)
	var users []domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "zzp", users[0].Name)

	w = f.do(t, "GET", "/update-user/1?name=renamed", "")
	assert.Equal(t, "rows affected : 1", w.Body.String())

	w = f.do(t, "GET", "/update-user/42?name=x", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, "GET", "/update-user/abc?name=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, "GET", "/delete-user/1", "")
	assert.Equal(t, "rows affected : 1", w.Body.String())

	w = f.do(t, "GET", "/delete-user/1", "")
	assert.Equal(t, "rows affected : 0", w.Body.String())

	w = f.do(t, "GET", "/users", "")
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestInboxRoutes(t *testing.T) {
	f := newFixture(t, newLuaEngine(t), nil, testTemplates)

	w := f.do(t, "POST", "/email-inbox", `{"from_mail":"a@example.com","to_mail":"me@example.com","subject":"<hi>"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":1}`, w.Body.String())

	w = f.do(t, "POST", "/email-inbox", `{"subject":"no addresses"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, "POST", "/email-inbox", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, "GET", "/email-inbox/list", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "<li>&lt;hi&gt;</li>", w.Body.String())

	w = f.do(t, "GET", "/email-inbox/delete-all", "")
	assert.Equal(t, "delete count : 1", w.Body.String())

	w = f.do(t, "GET", "/email-inbox/list", "")
	assert.Equal(t, "", w.Body.String())
}

func TestTestRedis(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		f := newFixture(t, fake.New(), memory.NewStore(), testTemplates)
		w := f.do(t, "GET", "/test-redis", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "testval", w.Body.String())
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		kv := redis.New(mr.Addr(), "", 0)
		t.Cleanup(func() { kv.Close() })

		f := newFixture(t, fake.New(), kv, testTemplates)
		w := f.do(t, "GET", "/test-redis", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "testval", w.Body.String())
		assert.True(t, mr.Exists("quill:testkey"))
	})
}

func TestOperationalRoutes(t *testing.T) {
	f := newFixture(t, fake.New(), nil, testTemplates)

	w := f.do(t, "GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","engine":"fake","pending":0}`, w.Body.String())

	f.do(t, "GET", "/", "")
	// Completion hooks run on the worker after the caller already has its result.
	require.Eventually(t, func() bool {
		w := f.do(t, "GET", "/metrics", "")
		return w.Code == http.StatusOK &&
			strings.Contains(w.Body.String(), `quill_renders_total{outcome="ok",template="layout.html"} 1`)
	}, time.Second, 10*time.Millisecond)

	w = f.do(t, "GET", "/admin/shutdown", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, f.shutdown.Load())
}

func TestCORS(t *testing.T) {
	f := newFixture(t, fake.New(), nil, testTemplates)

	w := f.do(t, "OPTIONS", "/users", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
