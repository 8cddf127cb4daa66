package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/oteladapters"
	"github.com/AntonStoeckl/entitystore-go/entitystore/promadapters"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell/config"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell/observable"
)

const tracerName = "github.com/AntonStoeckl/entitystore-go/library"

type app struct {
	cfg            config.Config
	logger         *oteladapters.SlogBridgeLogger
	metrics        *promadapters.MetricsCollector
	tracing        *oteladapters.TracingCollector
	tracerProvider *sdktrace.TracerProvider
	metricsServer  *http.Server
	uows           entitystore.UnitOfWorkFactory
	closeEngine    config.CloseFunc
}

func newApp(ctx context.Context, flags *rootFlags, forceMigrate bool) (*app, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, err
	}
	if forceMigrate {
		cfg.AutoMigrate = true
	}

	var level slog.Level
	if err = level.UnmarshalText([]byte(flags.logLevel)); err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	a.metrics = promadapters.NewMetricsCollector(registry)

	if flags.tracing {
		a.tracerProvider = sdktrace.NewTracerProvider()
		a.tracing = oteladapters.NewTracingCollector(a.tracerProvider.Tracer(tracerName))
	}

	obs := config.Observability{ContextualLogger: a.logger, Metrics: a.metrics}
	if a.tracing != nil {
		obs.Tracing = a.tracing
	}

	engine, closeEngine, err := config.NewEngine(ctx, cfg, obs)
	if err != nil {
		return nil, err
	}
	a.closeEngine = closeEngine

	uowOptions := []entitystore.Option{
		entitystore.WithContextualLogger(a.logger),
		entitystore.WithMetrics(a.metrics),
	}
	if a.tracing != nil {
		uowOptions = append(uowOptions, entitystore.WithTracing(a.tracing))
	}
	a.uows = entitystore.NewUnitOfWorkFactory(engine, uowOptions...)

	if flags.metricsAddr != "" {
		a.serveMetrics(flags.metricsAddr, registry)
	}

	return a, nil
}

func (a *app) serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	a.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.ErrorContext(context.Background(), "metrics server failed", "error", err.Error())
		}
	}()
}

// wrapperOptions are shared by all command and query wrappers.
func (a *app) wrapperOptions() []observable.Option {
	opts := []observable.Option{
		observable.WithContextualLogging(a.logger),
		observable.WithMetrics(a.metrics),
	}
	if a.tracing != nil {
		opts = append(opts, observable.WithTracing(a.tracing))
	}

	return opts
}

func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.metricsServer != nil {
		_ = a.metricsServer.Shutdown(ctx)
	}
	if a.tracerProvider != nil {
		_ = a.tracerProvider.Shutdown(ctx)
	}
	if err := a.metrics.Err(); err != nil {
		a.logger.WarnContext(ctx, "metrics registration failed", "error", err.Error())
	}
	if a.closeEngine != nil {
		_ = a.closeEngine()
	}
}
