package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/angeloszaimis/modelhub-web/config"
	"github.com/angeloszaimis/modelhub-web/internal/circuitbreaker"
	"github.com/angeloszaimis/modelhub-web/internal/handler"
	"github.com/angeloszaimis/modelhub-web/internal/healthcheck"
	"github.com/angeloszaimis/modelhub-web/internal/httpserver"
	"github.com/angeloszaimis/modelhub-web/internal/metrics"
	"github.com/angeloszaimis/modelhub-web/internal/ratelimit"
	"github.com/angeloszaimis/modelhub-web/internal/rewrite"
	"github.com/angeloszaimis/modelhub-web/internal/supabaseclient"
	"github.com/angeloszaimis/modelhub-web/internal/upstream"
	"github.com/angeloszaimis/modelhub-web/pkg/logger"
)

const pageTitle = "Model Hub"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the front page and proxy the API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize", slog.Any("err", err))
		return err
	}

	if _, err := supabaseclient.CredentialsFromEnv(); err != nil {
		log.Warn("Supabase client not configured", slog.Any("err", err))
	}

	srv, err := httpserver.New(cfg.Server.Address, a.handler, httpserver.Timeouts{
		Read:     config.Duration(cfg.Server.ReadTimeout),
		Write:    config.Duration(cfg.Server.WriteTimeout),
		Idle:     config.Duration(cfg.Server.IdleTimeout),
		Shutdown: config.Duration(cfg.Server.ShutdownTimeout),
	})
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		return err
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Serving",
		slog.String("addr", srv.Addr()),
		slog.Int("rewrites", len(a.router.Rules())))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting server", slog.Any("err", err))
			return err
		}
	}

	cancel()
	<-a.collector.Done()
	return nil
}

// app holds the wired components behind the HTTP handler.
type app struct {
	handler   http.Handler
	router    *rewrite.Router
	upstreams upstream.Set
	breakers  *circuitbreaker.Registry
	collector *metrics.Collector
	registry  *prometheus.Registry
}

// newApp wires every component and starts the background workers, which run
// until ctx is cancelled.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	router, err := rewrite.Compile(rewriteTable(cfg.Rewrites))
	if err != nil {
		return nil, fmt.Errorf("compile rewrites: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	collector := metrics.NewCollector(cfg.Metrics.BufferSize, metrics.NewPrometheus(registry), log)
	collector.Start(ctx)

	upstreams := upstream.NewSet(router.Origins(), upstream.Options{}, log)
	hc := healthcheck.Config{
		Interval: config.Duration(cfg.HealthCheck.Interval),
		Timeout:  config.Duration(cfg.HealthCheck.Timeout),
		Path:     cfg.HealthCheck.Path,
	}
	for _, up := range upstreams {
		go healthcheck.Run(ctx, up, hc, log, collector)
	}

	breakers := circuitbreaker.NewRegistry(
		cfg.CircuitBreaker.Threshold,
		config.Duration(cfg.CircuitBreaker.ResetTimeout),
	)

	limiter := ratelimit.New(ratelimit.Config{
		RPS:               cfg.RateLimit.RPS,
		Burst:             cfg.RateLimit.Burst,
		GlobalRPS:         cfg.RateLimit.GlobalRPS,
		GlobalBurst:       cfg.RateLimit.GlobalBurst,
		TrustForwardedFor: cfg.RateLimit.TrustForwardedFor,
	})

	a := &app{
		router:    router,
		upstreams: upstreams,
		breakers:  breakers,
		collector: collector,
		registry:  registry,
	}

	a.handler = setupRouter(routes{
		page:      handler.NewPageHandler(log, pageTitle, nil, collector),
		rewrites:  handler.NewRewriteHandler(log, router, upstreams, breakers, limiter, collector),
		readiness: handler.NewReadinessHandler(upstreams, checkSupabase),
		stats:     collector.Handler(a.withUpstreamState),
		registry:  registry,
	}, log)

	return a, nil
}

// withUpstreamState adds live upstream load and breaker state to a stats
// snapshot.
func (a *app) withUpstreamState(snap *metrics.Snapshot) {
	for origin, up := range a.upstreams {
		u := snap.Upstreams[origin]
		u.InFlight = up.InFlight()
		u.AvgResponse = up.AverageResponse()
		snap.Upstreams[origin] = u
	}
	for origin, state := range a.breakers.States() {
		u := snap.Upstreams[origin]
		u.Breaker = state.String()
		snap.Upstreams[origin] = u
	}
}

func rewriteTable(rewrites []config.RewriteConfig) rewrite.Table {
	t := make(rewrite.Table, 0, len(rewrites))
	for _, rw := range rewrites {
		t = append(t, rewrite.Rule{Source: rw.Source, Destination: rw.Destination})
	}
	return t
}

func checkSupabase() error {
	_, err := supabaseclient.New()
	return err
}
