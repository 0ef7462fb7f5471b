package observability

import (
	"context"
	"fmt"
	"time"

	"applykit/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application's custom instruments. The zero value
// records nothing.
type Metrics struct {
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	DocumentsRendered metric.Int64Counter
	PagesRendered     metric.Int64Histogram
	ContentGenerated  metric.Int64Counter
	ProfilesImported  metric.Int64Counter
	TextsExtracted    metric.Int64Counter

	RateLimitHits metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram("applykit_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}
	if m.AIRequestCount, err = meter.Int64Counter("applykit_ai_requests_total",
		metric.WithDescription("Total number of AI requests")); err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}
	if m.AIErrorCount, err = meter.Int64Counter("applykit_ai_errors_total",
		metric.WithDescription("Total number of AI request errors")); err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}
	if m.AITokenUsage, err = meter.Int64Histogram("applykit_ai_token_usage",
		metric.WithDescription("Token usage of AI requests by token type"),
		metric.WithUnit("{token}")); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.DocumentsRendered, err = meter.Int64Counter("applykit_documents_rendered_total",
		metric.WithDescription("Total number of PDF documents rendered")); err != nil {
		return nil, fmt.Errorf("failed to create documents rendered metric: %w", err)
	}
	if m.PagesRendered, err = meter.Int64Histogram("applykit_document_pages",
		metric.WithDescription("Pages per rendered document"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 4, 6, 10)); err != nil {
		return nil, fmt.Errorf("failed to create pages rendered metric: %w", err)
	}
	if m.ContentGenerated, err = meter.Int64Counter("applykit_content_generated_total",
		metric.WithDescription("Total number of tailored content generations")); err != nil {
		return nil, fmt.Errorf("failed to create content generated metric: %w", err)
	}
	if m.ProfilesImported, err = meter.Int64Counter("applykit_profiles_imported_total",
		metric.WithDescription("Total number of profile imports")); err != nil {
		return nil, fmt.Errorf("failed to create profiles imported metric: %w", err)
	}
	if m.TextsExtracted, err = meter.Int64Counter("applykit_texts_extracted_total",
		metric.WithDescription("Total number of job description text extractions")); err != nil {
		return nil, fmt.Errorf("failed to create texts extracted metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter("applykit_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limited requests")); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}
	return m, nil
}

// AIOperationResult is what an instrumented AI call reports back.
type AIOperationResult struct {
	Error      error
	TokenUsage *types.TokenUsage
}

// TrackAIOperation runs fn inside a span and records duration, request,
// error and token metrics.
func (m *Metrics) TrackAIOperation(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	ctx, span := otel.Tracer("applykit.ai").Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	if result == nil {
		result = &AIOperationResult{}
	}
	duration := time.Since(start).Seconds()

	kv := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", result.Error == nil),
	}
	span.SetAttributes(kv...)

	if m.AIProcessingTime != nil {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(kv...))
		m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(kv...))
		if result.Error != nil {
			m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(kv...))
		}
	}

	if usage := result.TokenUsage; usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
		if m.AITokenUsage != nil {
			for tokenType, value := range map[string]int64{
				"input":  usage.InputTokens,
				"output": usage.OutputTokens,
				"total":  usage.TotalTokens,
			} {
				m.AITokenUsage.Record(ctx, value, metric.WithAttributes(
					attribute.String("operation", operation),
					attribute.String("token_type", tokenType),
				))
			}
		}
	}

	if result.Error != nil {
		span.RecordError(result.Error)
	}
	return result.Error
}

// RecordDocument counts a rendered document and its page count.
func (m *Metrics) RecordDocument(ctx context.Context, kind string, pages int, success bool) {
	if m.DocumentsRendered == nil {
		return
	}
	opt := metric.WithAttributes(attribute.String("kind", kind), attribute.Bool("success", success))
	m.DocumentsRendered.Add(ctx, 1, opt)
	if success {
		m.PagesRendered.Record(ctx, int64(pages), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// RecordGeneration counts a content generation and its match band.
func (m *Metrics) RecordGeneration(ctx context.Context, band string, success bool) {
	if m.ContentGenerated == nil {
		return
	}
	m.ContentGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("match_band", band), attribute.Bool("success", success)))
}

// RecordProfileImport counts a profile import by source format.
func (m *Metrics) RecordProfileImport(ctx context.Context, source string, success bool) {
	if m.ProfilesImported == nil {
		return
	}
	m.ProfilesImported.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source), attribute.Bool("success", success)))
}

// RecordExtraction counts a text extraction by method (local or ai).
func (m *Metrics) RecordExtraction(ctx context.Context, method string, success bool) {
	if m.TextsExtracted == nil {
		return
	}
	m.TextsExtracted.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method), attribute.Bool("success", success)))
}

// RecordRateLimitHit counts a rejected request.
func (m *Metrics) RecordRateLimitHit(ctx context.Context, keyType string) {
	if m.RateLimitHits == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType)))
}
