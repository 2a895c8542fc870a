package healthcheck

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/angeloszaimis/modelhub-web/internal/metrics"
	"github.com/angeloszaimis/modelhub-web/internal/upstream"
)

const (
	DefaultPath     = "/openapi.json"
	DefaultInterval = 10 * time.Second
	DefaultTimeout  = 3 * time.Second
)

type Config struct {
	Interval time.Duration
	Timeout  time.Duration
	Path     string
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
	return c
}

// Run probes the upstream once immediately and then on every interval until
// ctx is cancelled. Health transitions are logged and emitted to events,
// which may be nil.
func Run(
	ctx context.Context,
	u *upstream.Upstream,
	cfg Config,
	logger *slog.Logger,
	events *metrics.Collector,
) {
	cfg = cfg.withDefaults()

	client := &http.Client{
		Timeout: cfg.Timeout,
	}
	healthURL := u.Origin().ResolveReference(&url.URL{Path: cfg.Path})
	origin := u.Origin().String()

	check := func(first bool) {
		healthy := Probe(ctx, client, healthURL.String())
		if ctx.Err() != nil {
			return
		}

		changed := u.SetHealthy(healthy)
		if !changed && !first {
			return
		}

		events.Emit(metrics.MetricEvent{
			Type:     metrics.EventHealthChanged,
			Upstream: origin,
			Healthy:  healthy,
		})

		if !changed {
			return
		}
		if healthy {
			logger.Info("Upstream is back up", slog.String("upstream", origin))
		} else {
			logger.Warn("Upstream is down", slog.String("upstream", origin))
		}
	}

	check(true)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Health check stopped", slog.String("upstream", origin))
			return
		case <-ticker.C:
			check(false)
		}
	}
}

// Probe issues a GET to target. Any response below 500 counts as healthy:
// the origin is reachable and serving, even if the path needs auth.
func Probe(ctx context.Context, client *http.Client, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}

	res, err := client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	return res.StatusCode < http.StatusInternalServerError
}
