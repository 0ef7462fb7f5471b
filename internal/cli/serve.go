package cli

import (
	"context"
	"fmt"
	"time"

	"applykit/internal/documents"
	"applykit/internal/errors"
	"applykit/internal/observability"
	"applykit/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing content generation, profile and job
library management, text extraction and PDF rendering.

Available endpoints:
- POST /generate: Generate tailored content
- GET, PUT /profile and POST /profile/import: Candidate profile
- GET, POST /jobs, DELETE /jobs/{id}, POST /jobs/extract: Job library
- POST /render/{kind}: Render resume, cover-letter or brief to PDF
- GET /health: Health check (?deep=true checks the AI models)
- GET /stats: Rate limiting and request limits

Without an AI API key the server still renders and manages the profile;
AI-backed endpoints answer 503.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveOpts struct {
	host string
	port string
}

func init() {
	serveCmd.Flags().StringVarP(&serveOpts.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveOpts.host, "host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	if serveOpts.port != "" {
		cfg.Server.Port = serveOpts.port
	}
	if serveOpts.host != "" {
		cfg.Server.Host = serveOpts.host
	}

	obs, err := observability.NewManager(cfg.Observability, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	services, err := optionalServices(ctx, cfg, logger, obs.Metrics())
	if err != nil {
		return err
	}
	defer closeServices(services, logger)

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	builder, err := documents.NewBuilderFromConfig(cfg.Document, "applykit "+Version)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid document settings", err)
	}

	deps := server.Dependencies{
		Store:         st,
		Ingestor:      newIngestor(cfg, logger, services, obs.Metrics()),
		Builder:       builder,
		Observability: obs,
	}
	if services != nil {
		deps.Generator = services.Generate
		deps.Models = make(map[string]server.ModelChecker)
		for op, svc := range services.All() {
			deps.Models[op] = svc
		}
	}

	return server.NewServer(cfg, Version, deps, logger).Start(ctx)
}
