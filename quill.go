package quill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/quill/internal/config"
	"github.com/aretw0/quill/internal/logging"
	"github.com/aretw0/quill/internal/store"
	"github.com/aretw0/quill/pkg/adapters/fake"
	httpAdapter "github.com/aretw0/quill/pkg/adapters/http"
	"github.com/aretw0/quill/pkg/adapters/lua"
	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/adapters/redis"
	"github.com/aretw0/quill/pkg/adapters/source"
	"github.com/aretw0/quill/pkg/observability"
	"github.com/aretw0/quill/pkg/ports"
	"github.com/aretw0/quill/pkg/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App wires configuration, storage, the template source and the render service together.
// Build it once at startup, share it, and Close it on the way out.
type App struct {
	Config  config.Config
	Service *render.Service
	Views   *render.Views
	Store   *store.Store
	KV      ports.KeyValueStore
	Metrics *observability.Metrics

	logger   *slog.Logger
	registry *prometheus.Registry
	engine   ports.Engine
	source   ports.TemplateSource
	shutdown func()
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// WithEngine injects an engine instead of the variant named by the config.
// The App takes ownership of it.
func WithEngine(engine ports.Engine) Option {
	return func(a *App) {
		a.engine = engine
	}
}

// WithSource injects a template source instead of the embedded or directory source.
func WithSource(src ports.TemplateSource) Option {
	return func(a *App) {
		a.source = src
	}
}

// WithShutdown enables GET /admin/shutdown, which calls fn.
func WithShutdown(fn func()) Option {
	return func(a *App) {
		a.shutdown = fn
	}
}

// New builds the application from cfg.
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	dbPath := cfg.DB.Path
	if cfg.UseTestPool {
		dbPath = store.MemoryPath
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	a.Store = db

	a.KV = newKeyValueStore(cfg)

	if a.source == nil {
		a.source, err = newSource(cfg)
		if err != nil {
			a.closeStores()
			return nil, err
		}
	}

	if a.engine == nil {
		a.engine, err = NewEngine(cfg.Engine, a.logger)
		if err != nil {
			a.closeStores()
			return nil, err
		}
	}

	a.Metrics = observability.NewMetrics(a.registry)
	a.Service = render.NewService(a.engine,
		render.WithLogger(a.logger),
		render.WithHooks(a.Metrics.Hooks()),
		render.WithHooks(observability.LoggingHooks(a.logger)),
		render.WithRenderTimeout(cfg.Render.Timeout),
	)
	a.Views = render.NewViews(a.Service, a.source)

	a.logger.Info("quill ready",
		"engine", a.engine.Name(),
		"dev", cfg.Templates.Dev,
		"db", dbPath,
		"redis", cfg.Redis.Addr != "" && !cfg.UseTestPool,
	)
	return a, nil
}

// NewEngine creates the engine variant named by variant.
func NewEngine(variant string, logger *slog.Logger) (ports.Engine, error) {
	switch variant {
	case config.EngineLua:
		return lua.New(lua.WithLogger(logger))
	case config.EngineFake:
		return fake.New(), nil
	}
	return nil, fmt.Errorf("unknown engine %q", variant)
}

func newKeyValueStore(cfg config.Config) ports.KeyValueStore {
	if cfg.UseTestPool || cfg.Redis.Addr == "" {
		return memory.NewStore()
	}
	return redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.Prefix))
}

func newSource(cfg config.Config) (ports.TemplateSource, error) {
	if cfg.Templates.Dev {
		return source.Directory(cfg.Templates.Dir), nil
	}
	src, err := source.Embedded(EmbeddedTemplates())
	if err != nil {
		return nil, fmt.Errorf("load embedded templates: %w", err)
	}
	return src, nil
}

// Handler returns the HTTP handler for the application.
func (a *App) Handler() http.Handler {
	return httpAdapter.NewHandler(httpAdapter.Config{
		Views:          a.Views,
		Users:          a.Store,
		Inbox:          a.Store,
		KV:             a.KV,
		Logger:         a.logger,
		Gatherer:       a.registry,
		Shutdown:       a.shutdown,
		RequestTimeout: a.Config.Server.RequestTimeout,
	})
}

// Render renders the named template with data.
func (a *App) Render(ctx context.Context, name string, data map[string]any) (string, error) {
	return a.Views.Fragment(ctx, name, data)
}

// RenderPage renders fragment inside page.
func (a *App) RenderPage(ctx context.Context, page, fragment string, data map[string]any) (string, error) {
	return a.Views.Page(ctx, page, fragment, data)
}

// Close drains the render queue, then closes the key-value store and the database.
func (a *App) Close(ctx context.Context) error {
	err := a.Service.Shutdown(ctx)
	return errors.Join(err, a.closeStores())
}

func (a *App) closeStores() error {
	var errs []error
	if a.KV != nil {
		errs = append(errs, a.KV.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
