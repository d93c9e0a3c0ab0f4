package lua

import (
	"fmt"
	"html"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/text/cases"
)

func (e *Engine) registerBuiltins(L *lua.LState) {
	L.SetGlobal("escape", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(html.EscapeString(mustString(L, L.Get(1)))))
		return 1
	}))

	L.SetGlobal("sanitize", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(e.policy.Sanitize(mustString(L, L.Get(1)))))
		return 1
	}))

	L.SetGlobal("title", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(cases.Title(e.lang).String(mustString(L, L.Get(1)))))
		return 1
	}))

	L.SetGlobal("default", L.NewFunction(func(L *lua.LState) int {
		v := L.Get(1)
		if v == lua.LNil || v == lua.LFalse {
			L.Push(L.Get(2))
			return 1
		}
		L.Push(v)
		return 1
	}))
}

// luaWrite appends template text verbatim.
func (e *Engine) luaWrite(L *lua.LState) int {
	e.out.WriteString(L.CheckString(1))
	return 0
}

// luaWriteEscaped appends the value of a {{ }} tag.
func (e *Engine) luaWriteEscaped(L *lua.LState) int {
	e.out.WriteString(html.EscapeString(mustString(L, L.Get(1))))
	return 0
}

// luaWriteRaw appends the value of a {{! }} tag.
func (e *Engine) luaWriteRaw(L *lua.LState) int {
	e.out.WriteString(mustString(L, L.Get(1)))
	return 0
}

// mustString renders scalar values and raises a Lua error for anything else.
func mustString(L *lua.LState, v lua.LValue) string {
	s, err := stringify(v)
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	return s
}

func stringify(v lua.LValue) (string, error) {
	switch val := v.(type) {
	case *lua.LNilType:
		return "", nil
	case lua.LBool, lua.LNumber, lua.LString:
		return val.String(), nil
	case *lua.LTable:
		return "", fmt.Errorf("cannot render a table; index a field or use table.concat")
	default:
		return "", fmt.Errorf("cannot render a %s value", v.Type())
	}
}
