package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/angeloszaimis/modelhub-web/internal/metrics"
	"github.com/angeloszaimis/modelhub-web/internal/view"
)

const pageRoute = "/"

// PageHandler renders the front page.
type PageHandler struct {
	logger           *slog.Logger
	title            string
	body             templ.Component
	metricsCollector *metrics.Collector
}

func NewPageHandler(logger *slog.Logger, title string, body templ.Component, collector *metrics.Collector) *PageHandler {
	return &PageHandler{
		logger:           logger,
		title:            title,
		body:             body,
		metricsCollector: collector,
	}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	status := http.StatusOK

	// Render into a buffer so a failing component still yields a clean 500.
	var buf bytes.Buffer
	if err := view.Page(h.title, h.body).Render(r.Context(), &buf); err != nil {
		h.logger.Error("Failed to render page", slog.Any("err", err))
		status = http.StatusInternalServerError
		http.Error(w, http.StatusText(status), status)
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if r.Method == http.MethodGet {
			_, _ = w.Write(buf.Bytes())
		}
	}

	h.metricsCollector.Emit(metrics.MetricEvent{
		Type:  metrics.EventRequestReceived,
		Route: pageRoute,
	})
	h.metricsCollector.Emit(metrics.MetricEvent{
		Type:       metrics.EventResponseCompleted,
		Route:      pageRoute,
		Method:     r.Method,
		Duration:   time.Since(start),
		StatusCode: status,
	})
}

// Root sends exactly "/" to page and every other path to rewrites, which
// answers 404 for paths outside the rewrite table.
func Root(page, rewrites http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == pageRoute {
			page.ServeHTTP(w, r)
			return
		}
		rewrites.ServeHTTP(w, r)
	})
}
