package ai

import (
	"context"
	"fmt"
	"strings"

	"applykit/internal/config"
	"applykit/internal/documents"
	"applykit/internal/errors"
	"applykit/internal/observability"
	"applykit/internal/types"
)

// Service runs one AI operation against a provider, recording metrics and
// validating results.
type Service struct {
	Provider  Provider
	operation string
	metrics   *observability.Metrics
	logger    *errors.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records operation metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService creates the service of one operation from its resolved
// configuration.
func NewService(ctx context.Context, cfg config.OperationAIConfig, operation string, logger *errors.Logger, opts ...Option) (*Service, error) {
	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation", operation,
		"model", cfg.Model,
		"temperature", deref(cfg.Temperature, 0),
		"timeout", deref(cfg.Timeout, 0),
		"max_retries", deref(cfg.MaxRetries, 0))

	var provider Provider
	var err error
	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(ctx, cfg, operation, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, err
	}
	return NewServiceWithProvider(provider, operation, logger, opts...), nil
}

// NewServiceWithProvider wraps an existing provider.
func NewServiceWithProvider(provider Provider, operation string, logger *errors.Logger, opts ...Option) *Service {
	s := &Service{
		Provider:  provider,
		operation: operation,
		metrics:   &observability.Metrics{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Operation returns the operation name the service was built for.
func (s *Service) Operation() string {
	return s.operation
}

// GenerateContent produces validated tailored content.
func (s *Service) GenerateContent(ctx context.Context, input types.GenerateContentInput) (types.TailoredContent, error) {
	if strings.TrimSpace(input.JobDescription) == "" {
		return types.TailoredContent{}, errors.NewValidationError(errors.ErrCodeInvalidRequest, "job description is empty", nil)
	}
	if strings.TrimSpace(input.Profile.Name) == "" {
		return types.TailoredContent{}, errors.NewValidationError(errors.ErrCodeInvalidProfile, "profile has no name", nil)
	}

	var content types.TailoredContent
	err := s.metrics.TrackAIOperation(ctx, s.operation, func(ctx context.Context) *observability.AIOperationResult {
		out, usage, err := s.Provider.GenerateContent(ctx, input)
		if err == nil {
			err = normalizeContent(&out)
		}
		content = out
		return &observability.AIOperationResult{Error: err, TokenUsage: usage}
	})
	if err != nil {
		s.metrics.RecordGeneration(ctx, "none", false)
		s.logger.LogError(err, "Content generation failed", "operation", s.operation)
		return types.TailoredContent{}, err
	}
	s.metrics.RecordGeneration(ctx, documents.MatchBand(content.MatchScore), true)
	s.logger.Info("Content generated",
		"match_score", content.MatchScore,
		"target_title", content.ResumeTargetTitle)
	return content, nil
}

// ParseProfile produces a validated profile from a document or text.
func (s *Service) ParseProfile(ctx context.Context, input types.ParseProfileInput) (types.CandidateProfile, error) {
	if len(input.Document) == 0 && strings.TrimSpace(input.Text) == "" {
		return types.CandidateProfile{}, errors.NewValidationError(errors.ErrCodeInvalidRequest, "nothing to parse", nil)
	}

	var profile types.CandidateProfile
	err := s.metrics.TrackAIOperation(ctx, s.operation, func(ctx context.Context) *observability.AIOperationResult {
		out, usage, err := s.Provider.ParseProfile(ctx, input)
		if err == nil {
			err = normalizeProfile(&out)
		}
		profile = out
		return &observability.AIOperationResult{Error: err, TokenUsage: usage}
	})
	if err != nil {
		s.logger.LogError(err, "Profile parsing failed", "operation", s.operation)
		return types.CandidateProfile{}, err
	}
	return profile, nil
}

// ExtractText returns the text of a document. An empty transcription is
// an error.
func (s *Service) ExtractText(ctx context.Context, input types.ExtractTextInput) (string, error) {
	if len(input.Document) == 0 {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, "document is empty", nil)
	}

	var text string
	err := s.metrics.TrackAIOperation(ctx, s.operation, func(ctx context.Context) *observability.AIOperationResult {
		out, usage, err := s.Provider.ExtractText(ctx, input)
		text = strings.TrimSpace(out.Text)
		if err == nil && text == "" {
			err = errors.NewAIError(errors.ErrCodeExtractionEmpty, "no text extracted from document", nil)
		}
		return &observability.AIOperationResult{Error: err, TokenUsage: usage}
	})
	if err != nil {
		s.logger.LogError(err, "Text extraction failed", "operation", s.operation)
		return "", err
	}
	return text, nil
}

// GetModelInfo returns model availability for health checks.
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// BreakerStats returns circuit breaker statistics when the provider
// exposes them.
func (s *Service) BreakerStats() map[string]any {
	if p, ok := s.Provider.(interface{ BreakerStats() map[string]any }); ok {
		return p.BreakerStats()
	}
	return nil
}

// Close releases the provider.
func (s *Service) Close() error {
	return s.Provider.Close()
}

// Services bundles one Service per operation.
type Services struct {
	Generate *Service
	Parse    *Service
	Extract  *Service
}

// NewServices builds every operation service from cfg.
func NewServices(ctx context.Context, cfg *config.Config, logger *errors.Logger, opts ...Option) (*Services, error) {
	build := func(op string) (*Service, error) {
		opCfg, err := cfg.OperationConfig(op)
		if err != nil {
			return nil, err
		}
		return NewService(ctx, opCfg, op, logger, opts...)
	}

	var s Services
	var err error
	if s.Generate, err = build(config.OperationGenerate); err != nil {
		return nil, err
	}
	if s.Parse, err = build(config.OperationParse); err != nil {
		return nil, err
	}
	if s.Extract, err = build(config.OperationExtract); err != nil {
		return nil, err
	}
	return &s, nil
}

// All returns the services keyed by operation name.
func (s *Services) All() map[string]*Service {
	return map[string]*Service{
		config.OperationGenerate: s.Generate,
		config.OperationParse:    s.Parse,
		config.OperationExtract:  s.Extract,
	}
}

// Close releases every provider.
func (s *Services) Close() error {
	var first error
	for _, svc := range s.All() {
		if svc == nil {
			continue
		}
		if err := svc.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
