package render_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aretw0/quill/pkg/domain"
)

// echoEngine renders "<name>:<tag>" so a test can tell whose payload produced a result.
type echoEngine struct{}

func (echoEngine) Name() string { return "echo" }

func (echoEngine) Render(_ context.Context, tpl domain.Template, data any) (string, error) {
	m, _ := data.(map[string]any)
	return fmt.Sprintf("%s:%v", tpl.Name, m["tag"]), nil
}

func (echoEngine) Close() error { return nil }

// gateEngine blocks every render of gated templates until release is called,
// and records render order and panics or fails on demand.
type gateEngine struct {
	mu      sync.Mutex
	calls   []string
	gate    chan struct{}
	started chan string
	once    sync.Once
	resets  atomic.Int32
	closed  atomic.Bool
}

func newGateEngine() *gateEngine {
	return &gateEngine{
		gate:    make(chan struct{}),
		started: make(chan string, 128),
	}
}

func (g *gateEngine) Name() string { return "gate" }

func (g *gateEngine) Render(ctx context.Context, tpl domain.Template, _ any) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, tpl.Name)
	g.mu.Unlock()
	g.started <- tpl.Name

	switch tpl.Name {
	case "block.html":
		<-g.gate
	case "panic.html":
		panic("interpreter exploded")
	case "fail.html":
		return "", errors.New("line 1: unexpected symbol")
	case "payload.html":
		return "", domain.NewRenderError(domain.ErrPayload, "", errors.New("unsupported value"))
	case "ctx.html":
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "ok:" + tpl.Name, nil
}

func (g *gateEngine) Close() error {
	g.closed.Store(true)
	return nil
}

func (g *gateEngine) Reset() error {
	g.resets.Add(1)
	return nil
}

func (g *gateEngine) release() {
	g.once.Do(func() { close(g.gate) })
}

func (g *gateEngine) order() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.calls))
	copy(out, g.calls)
	return out
}

// mapSource is an in-memory template source.
type mapSource map[string]string

func (m mapSource) Lookup(name string) (domain.Template, error) {
	content, ok := m[name]
	if !ok {
		return domain.Template{}, domain.NewRenderError(domain.ErrTemplateNotFound, name, nil)
	}
	return domain.StaticTemplate(name, content), nil
}

func (m mapSource) List() ([]string, error) {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out, nil
}
