package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"applykit/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// newPrometheusReader creates an OTel metric reader backed by a private
// Prometheus registry, so several managers can coexist in one process.
func newPrometheusReader() (sdkmetric.Reader, http.Handler, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return exporter, handler, nil
}

// startPrometheusServer serves the metrics handler on its own port.
func startPrometheusServer(cfg config.PrometheusConfig, handler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Endpoint, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	fmt.Printf("Metrics available at: http://localhost:%s%s\n", cfg.Port, cfg.Endpoint)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("Prometheus server error: %v\n", err)
		}
	}()
	return server
}
