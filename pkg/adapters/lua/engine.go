package lua

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/quill/internal/logging"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/microcosm-cc/bluemonday"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"golang.org/x/text/language"
)

// Name is the variant name reported by the Lua engine.
const Name = "lua"

// compiled is a cached chunk. Protos hold no interpreter state and survive a Reset.
type compiled struct {
	content string
	proto   *lua.FunctionProto
}

// Engine renders templates with an embedded Lua interpreter.
type Engine struct {
	L      *lua.LState
	logger *slog.Logger

	cache map[string]*compiled

	policy *bluemonday.Policy
	lang   language.Tag

	// Per-render output; the writer functions append here.
	out    strings.Builder
	writer []lua.LValue
}

// Option configures the Lua engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPolicy replaces the HTML policy used by the sanitize built-in.
func WithPolicy(p *bluemonday.Policy) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithLanguage sets the language used by the title built-in.
func WithLanguage(tag language.Tag) Option {
	return func(e *Engine) {
		e.lang = tag
	}
}

// New creates the interpreter and registers the built-ins.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: logging.NewNop(),
		cache:  make(map[string]*compiled),
		policy: bluemonday.UGCPolicy(),
		lang:   language.English,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.open(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) Name() string {
	return Name
}

// open creates a fresh LState with the safe standard libraries and the built-ins.
func (e *Engine) open() error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return fmt.Errorf("open lua library %q: %w", lib.name, err)
		}
	}

	// No file, module or console access from templates.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module", "print"} {
		L.SetGlobal(name, lua.LNil)
	}

	e.registerBuiltins(L)
	e.writer = []lua.LValue{
		L.NewFunction(e.luaWrite),
		L.NewFunction(e.luaWriteEscaped),
		L.NewFunction(e.luaWriteRaw),
	}
	e.L = L
	return nil
}

// Render executes tpl against data.
func (e *Engine) Render(ctx context.Context, tpl domain.Template, data any) (string, error) {
	if e.L == nil {
		return "", domain.NewRenderError(domain.ErrEngineUnavailable, tpl.Name, errors.New("lua engine is closed"))
	}

	bindings, err := toBindings(e.L, data)
	if err != nil {
		return "", domain.NewRenderError(domain.ErrPayload, tpl.Name, err)
	}

	proto, err := e.compile(tpl)
	if err != nil {
		return "", domain.NewRenderError(domain.ErrRenderFailure, tpl.Name, err)
	}

	fn := e.L.NewFunctionFromProto(proto)
	fn.Env = e.newEnv(bindings)

	e.out.Reset()
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	if err := e.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, e.writer...); err != nil {
		return "", domain.NewRenderError(domain.ErrRenderFailure, tpl.Name, runtimeCause(ctx, err))
	}

	return e.out.String(), nil
}

// compile returns the cached proto for tpl, recompiling when the content changed.
func (e *Engine) compile(tpl domain.Template) (*lua.FunctionProto, error) {
	if c, ok := e.cache[tpl.Name]; ok && c.content == tpl.Content {
		return c.proto, nil
	}

	src, err := translate(tpl.Content)
	if err != nil {
		return nil, err
	}
	chunk, err := parse.Parse(strings.NewReader(src), tpl.Name)
	if err != nil {
		return nil, fmt.Errorf("syntax: %w", err)
	}
	proto, err := lua.Compile(chunk, tpl.Name)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	e.cache[tpl.Name] = &compiled{content: tpl.Content, proto: proto}
	e.logger.Debug("template compiled", "template", tpl.Name, "kind", tpl.Kind, "cached", len(e.cache))
	return proto, nil
}

// newEnv builds the global environment of one render. Lookups try the payload, then the
// interpreter globals, and fail for anything else.
func (e *Engine) newEnv(bindings map[string]lua.LValue) *lua.LTable {
	env := e.L.NewTable()
	mt := e.L.NewTable()
	e.L.SetField(mt, "__index", e.L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(2)
		if v, ok := bindings[key]; ok {
			L.Push(v)
			return 1
		}
		if v := L.GetGlobal(key); v != lua.LNil {
			L.Push(v)
			return 1
		}
		L.RaiseError("undefined binding %q", key)
		return 0
	}))
	e.L.SetMetatable(env, mt)
	return env
}

// Reset replaces the interpreter after a fault. Compiled templates are kept.
func (e *Engine) Reset() error {
	if e.L != nil {
		e.L.Close()
		e.L = nil
	}
	e.logger.Warn("lua state reset")
	return e.open()
}

// Close releases the interpreter. Later renders fail with ErrEngineUnavailable.
func (e *Engine) Close() error {
	if e.L != nil {
		e.L.Close()
		e.L = nil
	}
	return nil
}

// runtimeCause strips the Lua traceback and surfaces context errors for errors.Is.
func runtimeCause(ctx context.Context, err error) error {
	msg := err.Error()
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		msg = apiErr.Object.String()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s", ctxErr, msg)
	}
	return errors.New(msg)
}
