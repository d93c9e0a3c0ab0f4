/*
Package lua implements the real Engine variant on top of an embedded Lua interpreter
(github.com/yuin/gopher-lua).

Templates are plain text with three kinds of tags:

	{{ expr }}   evaluates a Lua expression and writes it HTML-escaped
	{{! expr }}  writes the expression without escaping
	{% stmts %}  runs Lua statements (loops, conditionals, locals)
	{# note #}   is dropped

Each template compiles to a Lua chunk once and is cached by name until its content changes.
Payload keys become the free variables of the template. Reading a name that is neither a
payload key nor a built-in is a render failure, not an empty string:

	Hello {{ name }}                      -- "Hello world" with {"name": "world"}
	{% for _, u in ipairs(users) do %}
	  <li>{{ u.name }}</li>
	{% end %}

Built-ins available to templates: escape, sanitize (bluemonday UGC policy), title,
default, and the Lua base, string, table and math libraries without file or module access.

An LState is not safe for concurrent use; the Engine must be owned by exactly one
goroutine (the render worker).
*/
package lua
