// Package metrics collects request, rejection and upstream health
// observations for the front server.
//
// Handlers emit MetricEvent values through Collector.Emit, which never
// blocks: events go into a buffered channel consumed by a dedicated goroutine
// and are dropped if the buffer is full. Each event updates two views:
//
//   - an in-memory store with per-route counts, status codes and response
//     time percentiles (P50, P95, P99), served as JSON by Collector.Handler;
//   - Prometheus collectors registered on the registry passed to
//     NewPrometheus and exposed through promhttp.
//
// Typical wiring:
//
//	prom := metrics.NewPrometheus(registry)
//	collector := metrics.NewCollector(1024, prom, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:       metrics.EventResponseCompleted,
//		Route:      "/api/:path*",
//		Upstream:   "http://127.0.0.1:8000",
//		Duration:   150 * time.Millisecond,
//		StatusCode: 200,
//	})
//
// On cancellation the collector drains queued events before stopping.
package metrics
