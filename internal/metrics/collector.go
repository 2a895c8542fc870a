package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRequestReceived   EventType = "request_received"
	EventRequestRejected   EventType = "request_rejected"
	EventResponseCompleted EventType = "response_completed"
	EventHealthChanged     EventType = "health_changed"
)

// Rejection reasons carried by EventRequestRejected.
const (
	ReasonUpstreamDown = "upstream_down"
	ReasonCircuitOpen  = "circuit_open"
	ReasonRateLimited  = "rate_limited"
	ReasonNoRoute      = "no_route"
)

// MetricEvent describes one observation. Route is the rewrite source (or
// the page path) the request was served by; Upstream is the origin it was
// forwarded to, if any.
type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Route      string
	Upstream   string
	Method     string
	Duration   time.Duration
	StatusCode int
	Healthy    bool
	Reason     string
}

// Collector drains events from a buffered channel on its own goroutine so the
// request path never blocks on bookkeeping.
type Collector struct {
	eventCh    chan MetricEvent
	metrics    *Metrics
	prometheus *Prometheus
	logger     *slog.Logger
	done       chan struct{}
}

// NewCollector creates a collector. prom may be nil.
func NewCollector(bufferSize int, prom *Prometheus, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh:    make(chan MetricEvent, bufferSize),
		metrics:    NewMetrics(),
		prometheus: prom,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Emit queues event without blocking. Events are dropped when the buffer is
// full. A nil collector ignores everything.
func (c *Collector) Emit(event MetricEvent) {
	if c == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

// Done is closed once the collector has drained after cancellation.
func (c *Collector) Done() <-chan struct{} {
	return c.done
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")
	defer close(c.done)

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventRequestReceived:
		c.metrics.IncrementRequests(event.Route)
	case EventRequestRejected:
		c.metrics.RecordRejection(event.Route, event.Reason)
	case EventResponseCompleted:
		c.metrics.RecordResponse(event.Route, event.Duration, event.StatusCode)
	case EventHealthChanged:
		c.metrics.UpdateHealthStatus(event.Upstream, event.Healthy)
	}

	c.prometheus.observe(event)
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
