package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus bundles the collectors exported on /metrics.
type Prometheus struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDurationSec *prometheus.HistogramVec
	RejectedTotal      *prometheus.CounterVec
	RateLimitDropped   prometheus.Counter
	UpstreamErrors     *prometheus.CounterVec
	UpstreamUp         *prometheus.GaugeVec
}

func NewPrometheus(registry prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "web_requests_total",
			Help: "Total number of completed requests by route.",
		}, []string{"route", "method", "status"}),
		RequestDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "web_request_duration_seconds",
			Help:    "Request duration in seconds by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "web_requests_rejected_total",
			Help: "Requests refused before reaching an upstream.",
		}, []string{"route", "reason"}),
		RateLimitDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "web_ratelimit_dropped_total",
			Help: "Requests dropped by the rate limiter.",
		}),
		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "web_upstream_errors_total",
			Help: "Proxied requests answered with a 5xx status.",
		}, []string{"upstream"}),
		UpstreamUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "web_upstream_up",
			Help: "1 if the last health check of the upstream succeeded.",
		}, []string{"upstream"}),
	}

	registry.MustRegister(
		p.RequestsTotal,
		p.RequestDurationSec,
		p.RejectedTotal,
		p.RateLimitDropped,
		p.UpstreamErrors,
		p.UpstreamUp,
	)

	return p
}

func (p *Prometheus) observe(event MetricEvent) {
	if p == nil {
		return
	}

	switch event.Type {
	case EventRequestRejected:
		p.RejectedTotal.WithLabelValues(event.Route, event.Reason).Inc()
		if event.Reason == ReasonRateLimited {
			p.RateLimitDropped.Inc()
		}
	case EventResponseCompleted:
		status := strconv.Itoa(event.StatusCode)
		p.RequestsTotal.WithLabelValues(event.Route, event.Method, status).Inc()
		p.RequestDurationSec.WithLabelValues(event.Route, event.Method, status).Observe(event.Duration.Seconds())
		if event.Upstream != "" && event.StatusCode >= 500 {
			p.UpstreamErrors.WithLabelValues(event.Upstream).Inc()
		}
	case EventHealthChanged:
		up := 0.0
		if event.Healthy {
			up = 1
		}
		p.UpstreamUp.WithLabelValues(event.Upstream).Set(up)
	}
}
