package cli

import (
	"context"

	"applykit/internal/ai"
	"applykit/internal/config"
	"applykit/internal/errors"
	"applykit/internal/ingest"
	"applykit/internal/observability"
	"applykit/internal/store"
)

func openStore(cfg *config.Config, logger *errors.Logger) (*store.FileStore, error) {
	return store.Open(cfg.Store.Path, logger)
}

// requireServices builds the AI services and fails without an API key.
func requireServices(ctx context.Context, cfg *config.Config, logger *errors.Logger, metrics *observability.Metrics) (*ai.Services, error) {
	if err := cfg.RequireAIKey(); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey, err.Error(), nil)
	}
	return ai.NewServices(ctx, cfg, logger, ai.WithMetrics(metrics))
}

// optionalServices builds the AI services when a key is configured and
// returns nil otherwise.
func optionalServices(ctx context.Context, cfg *config.Config, logger *errors.Logger, metrics *observability.Metrics) (*ai.Services, error) {
	if cfg.RequireAIKey() != nil {
		logger.Warn("No AI API key configured; AI features are disabled")
		return nil, nil
	}
	return requireServices(ctx, cfg, logger, metrics)
}

// newIngestor wires the AI parse and extract services into the ingestor
// when they are available.
func newIngestor(cfg *config.Config, logger *errors.Logger, services *ai.Services, metrics *observability.Metrics) *ingest.Ingestor {
	opts := []ingest.Option{ingest.WithMetrics(metrics)}
	if services != nil {
		opts = append(opts,
			ingest.WithTextExtractor(services.Extract),
			ingest.WithProfileParser(services.Parse))
	}
	return ingest.New(cfg.Ingest, logger, opts...)
}

func closeServices(services *ai.Services, logger *errors.Logger) {
	if services == nil {
		return
	}
	if err := services.Close(); err != nil {
		logger.LogError(err, "Failed to close AI services")
	}
}
