package quill_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/quill/pkg/adapters/fake"
	"github.com/aretw0/quill/pkg/adapters/lua"
	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/aretw0/quill/pkg/render"
)

// Example_lua renders an in-memory template with the Lua engine.
func Example_lua() {
	engine, err := lua.New()
	if err != nil {
		log.Fatal(err)
	}

	svc := render.NewService(engine)
	defer svc.Close()

	out, err := svc.Render(context.Background(),
		domain.StaticTemplate("hello.html", "Hello {{ name }}"),
		map[string]any{"name": "world"},
	)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out)
	// Output: Hello world
}

// Example_fake shows the deterministic output of the fake engine.
func Example_fake() {
	svc := render.NewService(fake.New())
	defer svc.Close()

	out, _ := svc.Render(context.Background(), domain.StaticTemplate("index.html", "ignored"), nil)
	fmt.Println(out)
	// Output: [rendered:index.html]
}

// Example_page composes a fragment into a layout page.
func Example_page() {
	engine, err := lua.New()
	if err != nil {
		log.Fatal(err)
	}
	svc := render.NewService(engine)
	defer svc.Close()

	views := render.NewViews(svc, memory.NewLoader(map[string]string{
		"layout.html": "<title>{{ title }}</title>{{! content }}",
		"greet.html":  "<b>Hi {{ who }}</b>",
	}))

	out, err := views.Page(context.Background(), "layout.html", "greet.html", map[string]any{
		"title": "Greeting",
		"who":   "<ann>",
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out)
	// Output: <title>Greeting</title><b>Hi &lt;ann&gt;</b>
}

// Example_failure shows how render errors are classified.
func Example_failure() {
	engine, err := lua.New()
	if err != nil {
		log.Fatal(err)
	}
	svc := render.NewService(engine)
	svc.Close()

	_, err = svc.Render(context.Background(), domain.StaticTemplate("late.html", "x"), nil)
	fmt.Println(domain.KindOf(err) == domain.ErrEngineUnavailable)
	// Output: true
}
