package main

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angeloszaimis/modelhub-web/internal/handler"
	"github.com/angeloszaimis/modelhub-web/internal/httpx"
	"github.com/angeloszaimis/modelhub-web/internal/view"
)

type routes struct {
	page      http.Handler
	rewrites  http.Handler
	readiness http.Handler
	stats     http.Handler
	registry  *prometheus.Registry
}

// setupRouter mounts the operational endpoints next to the page and the
// rewrite table. Anything not claimed here goes through handler.Root.
func setupRouter(r routes, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/", handler.Root(r.page, r.rewrites))
	mux.Handle("/static/", view.Static())
	mux.HandleFunc("/healthz", handler.Liveness)
	mux.Handle("/readyz", r.readiness)
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	mux.Handle("/stats", r.stats)

	var h http.Handler = mux
	h = httpx.WithLogging(log, h)
	h = httpx.WithRecovery(log, h)
	h = httpx.WithRequestID(h)
	return h
}
