/*
Package observability turns render lifecycle events into metrics and structured logs.

Both Metrics.Hooks and LoggingHooks return domain.RenderHooks, so they can be merged and
passed to render.WithHooks:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	svc := render.NewService(engine, render.WithHooks(m.Hooks().Merge(observability.LoggingHooks(logger))))
*/
package observability
