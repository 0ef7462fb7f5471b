package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"applykit/internal/config"
	"applykit/internal/errors"
	"applykit/internal/types"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

const modelCheckTimeout = 10 * time.Second

// GeminiProvider implements Provider on the Google Gemini API.
type GeminiProvider struct {
	client       *genai.Client
	config       config.OperationAIConfig
	operation    string
	breaker      *Breaker[*genai.GenerateContentResponse]
	modelBreaker *Breaker[*genai.Model]
	retry        retryPolicy
	logger       *errors.Logger
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a provider for one operation. cfg must have
// every inherited value resolved, as returned by Config.OperationConfig.
func NewGeminiProvider(ctx context.Context, cfg config.OperationAIConfig, operation string, logger *errors.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			fmt.Sprintf("no API key configured for the %s operation", operation), nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: deref(cfg.Timeout, 60*time.Second)},
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}

	// The model check trips after consecutive failures only.
	modelTrip := func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= max(cfg.CircuitBreaker.MinRequests, 1)
	}

	return &GeminiProvider{
		client:       client,
		config:       cfg,
		operation:    operation,
		breaker:      NewBreaker[*genai.GenerateContentResponse](operationBreakerName(operation), cfg.CircuitBreaker, nil, logger),
		modelBreaker: NewBreaker[*genai.Model](operationBreakerName(operation)+"-model", cfg.CircuitBreaker, modelTrip, logger),
		retry:        newRetryPolicy(deref(cfg.MaxRetries, 0), logger),
		logger:       logger,
	}, nil
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// GetModelInfo checks that the configured model is reachable.
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"operation", g.operation,
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", info.DisplayName,
		"version", info.Version)
	return info
}

// BreakerStats reports both breakers and whether they are closed.
func (g *GeminiProvider) BreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.breaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.breaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close releases the provider. The genai client holds no resources in
// request-response mode.
func (g *GeminiProvider) Close() error {
	return nil
}

// generationConfig builds the request config; schema may be nil for
// free-text responses.
func (g *GeminiProvider) generationConfig(systemPrompt string, schema *genai.Schema) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = schema
	}
	if t := deref(g.config.Temperature, 0); t > 0 {
		cfg.Temperature = &t
	}
	if n := deref(g.config.MaxOutputTokens, 0); n > 0 {
		cfg.MaxOutputTokens = n
	}
	if deref(g.config.UseSystemPrompts, true) && systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	return cfg
}

// userContents builds the user turn, with an optional inline document
// placed before the instruction text.
func userContents(prompt string, document []byte, mimeType string) []*genai.Content {
	if len(document) == 0 {
		return genai.Text(prompt)
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(document, mimeType),
		genai.NewPartFromText(prompt),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// call runs one request through the breaker and the retry policy inside a
// span named after the operation.
func (g *GeminiProvider) call(ctx context.Context, name string, contents []*genai.Content, genCfg *genai.GenerateContentConfig, attrs ...attribute.KeyValue) (*genai.GenerateContentResponse, *types.TokenUsage, error) {
	ctx, span := otel.Tracer("applykit.ai.gemini").Start(ctx, "gemini."+name)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(deref(g.config.Temperature, 0))),
	)
	span.SetAttributes(attrs...)

	result, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return retry(ctx, g.retry, name, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, contents, genCfg)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		code := errors.ErrCodeAIServiceFailed
		if ctx.Err() == context.DeadlineExceeded {
			code = errors.ErrCodeAITimeout
		}
		return nil, nil, errors.NewAIError(code, "Failed to run "+name, err).WithContext("model", g.config.Model)
	}

	usage := extractTokenUsage(result)
	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))
	return result, usage, nil
}

func decodeJSON[T any](result *genai.GenerateContentResponse, name string) (T, error) {
	var out T
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return out, errors.NewAIError("AI_RESPONSE_EMPTY", "Empty AI response for "+name, nil)
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, errors.NewAIError("AI_RESPONSE_PARSE_FAILED", "Failed to parse AI response for "+name, err)
	}
	return out, nil
}

// GenerateContent produces tailored application content for one job.
func (g *GeminiProvider) GenerateContent(ctx context.Context, input types.GenerateContentInput) (types.TailoredContent, *types.TokenUsage, error) {
	systemPrompt, userPrompt := generatePrompts(g.config.SystemPrompt, g.config.UserPrompt, input)
	result, usage, err := g.call(ctx, "generate_content", genai.Text(userPrompt),
		g.generationConfig(systemPrompt, contentSchema()),
		attribute.Int("input.job_length", len(input.JobDescription)),
		attribute.String("input.target_role", input.TargetRole),
	)
	if err != nil {
		return types.TailoredContent{}, nil, err
	}
	content, err := decodeJSON[types.TailoredContent](result, "generate_content")
	if err != nil {
		return types.TailoredContent{}, usage, err
	}
	return content, usage, nil
}

// ParseProfile turns a resume document or text into a profile.
func (g *GeminiProvider) ParseProfile(ctx context.Context, input types.ParseProfileInput) (types.CandidateProfile, *types.TokenUsage, error) {
	systemPrompt, userPrompt := parsePrompts(g.config.SystemPrompt, g.config.UserPrompt, input)
	result, usage, err := g.call(ctx, "parse_profile",
		userContents(userPrompt, input.Document, input.MIMEType),
		g.generationConfig(systemPrompt, profileSchema()),
		attribute.Int("input.document_bytes", len(input.Document)),
		attribute.Int("input.text_length", len(input.Text)),
	)
	if err != nil {
		return types.CandidateProfile{}, nil, err
	}
	profile, err := decodeJSON[types.CandidateProfile](result, "parse_profile")
	if err != nil {
		return types.CandidateProfile{}, usage, err
	}
	return profile, usage, nil
}

// ExtractText transcribes a document. The response is free text.
func (g *GeminiProvider) ExtractText(ctx context.Context, input types.ExtractTextInput) (types.ExtractTextOutput, *types.TokenUsage, error) {
	systemPrompt, userPrompt := extractPrompts(g.config.SystemPrompt, g.config.UserPrompt)
	result, usage, err := g.call(ctx, "extract_text",
		userContents(userPrompt, input.Document, input.MIMEType),
		g.generationConfig(systemPrompt, nil),
		attribute.Int("input.document_bytes", len(input.Document)),
		attribute.String("input.mime_type", input.MIMEType),
	)
	if err != nil {
		return types.ExtractTextOutput{}, nil, err
	}
	return types.ExtractTextOutput{Text: strings.TrimSpace(result.Text())}, usage, nil
}

func extractTokenUsage(result *genai.GenerateContentResponse) *types.TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	usage := result.UsageMetadata
	return &types.TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
