package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/modelhub-web/internal/circuitbreaker"
	"github.com/angeloszaimis/modelhub-web/internal/httpx"
	"github.com/angeloszaimis/modelhub-web/internal/metrics"
	"github.com/angeloszaimis/modelhub-web/internal/rewrite"
	"github.com/angeloszaimis/modelhub-web/internal/upstream"
)

const unmatchedRoute = "unmatched"

// Limiter decides whether a request may be forwarded.
type Limiter interface {
	Allow(r *http.Request) bool
}

// RewriteHandler forwards requests matched by the rewrite table to their
// destination origin.
type RewriteHandler struct {
	logger           *slog.Logger
	router           *rewrite.Router
	upstreams        upstream.Set
	breakers         *circuitbreaker.Registry
	limiter          Limiter
	metricsCollector *metrics.Collector
}

// NewRewriteHandler wires the handler. limiter and collector may be nil.
func NewRewriteHandler(
	logger *slog.Logger,
	router *rewrite.Router,
	upstreams upstream.Set,
	breakers *circuitbreaker.Registry,
	limiter Limiter,
	collector *metrics.Collector,
) *RewriteHandler {
	return &RewriteHandler{
		logger:           logger,
		router:           router,
		upstreams:        upstreams,
		breakers:         breakers,
		limiter:          limiter,
		metricsCollector: collector,
	}
}

func (h *RewriteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientIP := httpx.ClientIP(r)

	match, ok := h.router.Resolve(r.URL.Path)
	if !ok {
		h.reject(w, r, unmatchedRoute, metrics.ReasonNoRoute, http.StatusNotFound)
		return
	}
	route := match.Rule.Source

	h.metricsCollector.Emit(metrics.MetricEvent{
		Type:  metrics.EventRequestReceived,
		Route: route,
	})

	if h.limiter != nil && !h.limiter.Allow(r) {
		h.logger.Warn("Rate limit exceeded",
			slog.String("client", clientIP),
			slog.String("route", route))
		h.reject(w, r, route, metrics.ReasonRateLimited, http.StatusTooManyRequests)
		return
	}

	up, ok := h.upstreams.Lookup(match.Origin())
	if !ok {
		h.logger.Error("No upstream for destination",
			slog.String("route", route),
			slog.String("destination", match.Destination.String()))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	origin := up.Origin().String()

	if !up.IsHealthy() {
		h.logger.Warn("Upstream unavailable",
			slog.String("client", clientIP),
			slog.String("upstream", origin))
		h.reject(w, r, route, metrics.ReasonUpstreamDown, http.StatusServiceUnavailable)
		return
	}

	breaker := h.breakers.Get(origin)
	generation, ok := breaker.Allow()
	if !ok {
		h.logger.Warn("Circuit open",
			slog.String("client", clientIP),
			slog.String("upstream", origin))
		h.reject(w, r, route, metrics.ReasonCircuitOpen, http.StatusServiceUnavailable)
		return
	}

	out := r.Clone(r.Context())
	out.URL.Path = match.Destination.Path
	out.URL.RawPath = ""
	out.URL.RawQuery = joinQuery(match.Destination.RawQuery, r.URL.RawQuery)

	h.logger.Debug("Forwarding request",
		slog.String("client", clientIP),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("destination", match.Destination.String()))

	up.Acquire()
	defer up.Release()
	start := time.Now()

	wrapped := httpx.NewStatusRecorder(w)
	up.ReverseProxy().ServeHTTP(wrapped, out)

	duration := time.Since(start)
	up.RecordResponse(duration)

	switch {
	case r.Context().Err() != nil:
		// The client went away; says nothing about the upstream.
		breaker.Abandon(generation)
	case wrapped.Status() >= http.StatusInternalServerError:
		breaker.RecordFailure(generation)
	default:
		breaker.RecordSuccess(generation)
	}

	h.metricsCollector.Emit(metrics.MetricEvent{
		Type:       metrics.EventResponseCompleted,
		Route:      route,
		Upstream:   origin,
		Method:     r.Method,
		Duration:   duration,
		StatusCode: wrapped.Status(),
	})
}

func (h *RewriteHandler) reject(w http.ResponseWriter, r *http.Request, route, reason string, status int) {
	h.metricsCollector.Emit(metrics.MetricEvent{
		Type:   metrics.EventRequestRejected,
		Route:  route,
		Method: r.Method,
		Reason: reason,
	})
	http.Error(w, http.StatusText(status), status)
}

func joinQuery(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "&" + b
	}
}
