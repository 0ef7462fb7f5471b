// Package observability wires OpenTelemetry tracing and metrics and the
// application's own counters.
package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"applykit/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Manager owns the tracer and meter providers.
type Manager struct {
	cfg     config.ObservabilityConfig
	version string

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics

	// manualReader is set when no exporter is configured.
	manualReader   *sdkmetric.ManualReader
	metricsHandler http.Handler
	promServer     *http.Server

	shutdownFuncs []func(context.Context) error
}

// NewManager sets up providers according to cfg. A disabled configuration
// yields a manager whose metrics are no-ops.
func NewManager(cfg config.ObservabilityConfig, version string) (*Manager, error) {
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = version
	}
	m := &Manager{cfg: cfg, version: version}
	if !cfg.Enabled {
		m.metrics = &Metrics{}
		return m, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("service.instance.id", cfg.ServiceInstance),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := m.initTracing(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := m.initMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return m, nil
}

func (m *Manager) initTracing(res *resource.Resource) error {
	if !m.cfg.Tracing.Enabled {
		return nil
	}

	var exporter sdktrace.SpanExporter
	var err error
	switch {
	case m.cfg.ConsoleOutput:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case m.cfg.OTLP.Enabled:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(m.cfg.OTLP.Endpoint)}
		if m.cfg.OTLP.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(m.cfg.OTLP.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(m.cfg.OTLP.Headers))
		}
		exporter, err = otlptracehttp.New(context.Background(), opts...)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(m.cfg.Tracing.SampleRate))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

func (m *Manager) initMetrics(res *resource.Resource) error {
	if !m.cfg.Metrics.Enabled {
		m.metrics = &Metrics{}
		return nil
	}

	interval := m.cfg.Metrics.CollectionInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	var readers []sdkmetric.Reader
	if m.cfg.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	}
	if m.cfg.OTLP.Enabled {
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(m.cfg.OTLP.Endpoint)}
		if m.cfg.OTLP.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		if len(m.cfg.OTLP.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(m.cfg.OTLP.Headers))
		}
		exporter, err := otlpmetrichttp.New(context.Background(), opts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	}
	if m.cfg.Prometheus.Enabled {
		reader, handler, err := newPrometheusReader()
		if err != nil {
			return err
		}
		readers = append(readers, reader)
		m.metricsHandler = handler
	}
	if len(readers) == 0 {
		m.manualReader = sdkmetric.NewManualReader()
		readers = append(readers, m.manualReader)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	metrics, err := newMetrics(mp.Meter(m.cfg.ServiceName))
	if err != nil {
		return err
	}
	m.metrics = metrics
	return nil
}

// Metrics returns the application counters. It is never nil.
func (m *Manager) Metrics() *Metrics {
	if m == nil || m.metrics == nil {
		return &Metrics{}
	}
	return m.metrics
}

// MetricsHandler serves Prometheus metrics, or nil when disabled.
func (m *Manager) MetricsHandler() http.Handler {
	return m.metricsHandler
}

// StartMetricsServer serves metrics on the dedicated Prometheus port when
// one is configured. Without a port the caller mounts MetricsHandler.
func (m *Manager) StartMetricsServer() {
	if m.metricsHandler == nil || m.cfg.Prometheus.Port == "" || m.promServer != nil {
		return
	}
	m.promServer = startPrometheusServer(m.cfg.Prometheus, m.metricsHandler)
	m.shutdownFuncs = append(m.shutdownFuncs, m.promServer.Shutdown)
}

// HTTPMiddleware instruments handlers with otelhttp.
func (m *Manager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !m.cfg.Enabled || m.tracerProvider == nil && m.meterProvider == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	}
	if m.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(m.tracerProvider))
	}
	if m.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(m.meterProvider))
	}
	return otelhttp.NewMiddleware(m.cfg.ServiceName, opts...)
}

// Tracer returns a named tracer, a no-op one when tracing is off.
func (m *Manager) Tracer(name string) trace.Tracer {
	if m == nil || m.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return m.tracerProvider.Tracer(name)
}

// Shutdown flushes exporters and stops the metrics server.
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(m.shutdownFuncs) - 1; i >= 0; i-- {
		if err := m.shutdownFuncs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
