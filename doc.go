/*
Package quill is a template-rendering bridge that lets many concurrent request handlers share a
single, non-thread-safe scripting engine.

It implements a "Single Owner Worker" architecture: every render call becomes a request on an
unbounded FIFO queue, one dedicated goroutine owns the engine and executes requests strictly in
arrival order, and each caller blocks on its own one-shot completion handle until its result
arrives.

# Concept

Handlers never touch the engine. They build a Template descriptor (static content baked in at
build time, or dynamic content re-read from disk on every call), hand it to the render Service
together with a payload, and wait. Failures come back as a single RenderError classified by kind:
EngineUnavailable, TemplateNotFound, RenderFailure or PayloadError. A failing or panicking render
never takes the worker down.

# Key Features

  - Serialized Execution: At most one render is in flight, always on the same goroutine.
  - Fail Fast: After shutdown begins, new calls return EngineUnavailable immediately.
  - Drain on Shutdown: Requests accepted before shutdown still receive their result.
  - Pluggable Engines: A Lua engine for real templates and a fake engine for tests.
  - Batteries Included: The App type wires SQLite, Redis (or memory), metrics and an HTTP router.

# Usage

	package main

	import (
		"context"
		"log"
		"net/http"

		"github.com/aretw0/quill"
		"github.com/aretw0/quill/internal/config"
	)

	func main() {
		app, err := quill.New(config.Default())
		if err != nil {
			log.Fatal(err)
		}
		defer app.Close(context.Background())

		log.Fatal(http.ListenAndServe(":8080", app.Handler()))
	}

# Template Syntax

The Lua engine understands four tags:

	{{ expr }}   evaluates expr and writes it HTML-escaped
	{{! expr }}  writes expr verbatim
	{% code %}   runs a Lua statement (if, for, local ...)
	{# note #}   a comment, dropped from the output

Payload keys are visible as globals inside the template. Reading an undefined name is a
RenderFailure, not an empty string.
*/
package quill
