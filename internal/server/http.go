// Package server exposes generation, profile, job library and rendering
// over HTTP.
package server

import (
	"context"
	"io"
	"os"
	"time"

	"applykit/internal/ai"
	"applykit/internal/config"
	"applykit/internal/documents"
	"applykit/internal/errors"
	"applykit/internal/observability"
	"applykit/internal/store"
	"applykit/internal/types"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ContentGenerator produces tailored content for a job.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, input types.GenerateContentInput) (types.TailoredContent, error)
}

// FileIngestor reads uploaded documents.
type FileIngestor interface {
	ExtractBytes(ctx context.Context, name string, data []byte) (string, error)
	ImportProfileBytes(ctx context.Context, name string, data []byte) (types.CandidateProfile, error)
	MaxFileSize() int64
}

// ModelChecker reports model availability for deep health checks.
type ModelChecker interface {
	GetModelInfo(ctx context.Context) *ai.ModelInfo
}

// Dependencies are the components the handlers call into. Generator may be
// nil when no AI key is configured; generation then answers 503.
type Dependencies struct {
	Store         *store.FileStore
	Generator     ContentGenerator
	Ingestor      FileIngestor
	Builder       *documents.Builder
	Models        map[string]ModelChecker
	Observability *observability.Manager
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	AppConfig *config.Config

	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	store     *store.FileStore
	generator ContentGenerator
	ingestor  FileIngestor
	builder   *documents.Builder
	models    map[string]ModelChecker
	obs       *observability.Manager
	metrics   *observability.Metrics

	started time.Time
	now     func() time.Time
	out     io.Writer

	Logger *errors.Logger
}

// NewServer creates a Server from the application configuration.
func NewServer(appCfg *config.Config, version string, deps Dependencies, logger *errors.Logger) *Server {
	apiKeyMap := make(map[string]bool)
	for _, key := range appCfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	rateLimit := appCfg.Server.RateLimit
	var rateLimiter *RateLimiter
	if rateLimit.Enabled {
		rateLimiter = NewRateLimiter(rateLimit, logger)
	}

	return &Server{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		AppConfig:      appCfg,
		APIKeys:        apiKeyMap,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.Server.MaxRequestSize,
		RateLimit:      &rateLimit,
		RateLimiter:    rateLimiter,
		store:          deps.Store,
		generator:      deps.Generator,
		ingestor:       deps.Ingestor,
		builder:        deps.Builder,
		models:         deps.Models,
		obs:            deps.Observability,
		metrics:        deps.Observability.Metrics(),
		started:        time.Now(),
		now:            time.Now,
		out:            os.Stdout,
		Logger:         logger,
	}
}
