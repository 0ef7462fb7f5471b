package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"applykit/internal/config"
	"applykit/internal/errors"

	"google.golang.org/genai"
)

func configWithProvider(provider string) config.OperationAIConfig {
	timeout := 5 * time.Second
	retries := 1
	temperature := float32(0.4)
	maxTokens := int32(2048)
	useSystem := true
	return config.OperationAIConfig{
		Provider:         provider,
		Model:            "gemini-2.5-flash",
		APIKey:           "test-key",
		Timeout:          &timeout,
		MaxRetries:       &retries,
		Temperature:      &temperature,
		MaxOutputTokens:  &maxTokens,
		UseSystemPrompts: &useSystem,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      2,
			FailureThreshold: 0.5,
		},
	}
}

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	cfg := configWithProvider("gemini")
	cfg.APIKey = ""

	_, err := NewGeminiProvider(context.Background(), cfg, config.OperationGenerate, testLogger())
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeMissingAPIKey {
		t.Fatalf("Expected missing API key error, got %v", err)
	}
}

func TestGeminiGenerationConfig(t *testing.T) {
	g, err := NewGeminiProvider(context.Background(), configWithProvider("gemini"), config.OperationGenerate, testLogger())
	if err != nil {
		t.Fatalf("NewGeminiProvider() error = %v", err)
	}

	cfg := g.generationConfig("be helpful", contentSchema())
	if cfg.ResponseMIMEType != "application/json" {
		t.Errorf("Expected JSON response type, got %q", cfg.ResponseMIMEType)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.4 {
		t.Errorf("Expected temperature 0.4, got %v", cfg.Temperature)
	}
	if cfg.MaxOutputTokens != 2048 {
		t.Errorf("Expected max output tokens 2048, got %d", cfg.MaxOutputTokens)
	}
	if cfg.SystemInstruction == nil {
		t.Error("Expected system instruction to be set")
	}

	free := g.generationConfig("", nil)
	if free.ResponseMIMEType != "" || free.ResponseSchema != nil {
		t.Error("Expected free-text config without schema")
	}
	if free.SystemInstruction != nil {
		t.Error("Expected no system instruction for empty prompt")
	}

	stats := g.BreakerStats()
	if healthy, _ := stats["overall_healthy"].(bool); !healthy {
		t.Errorf("Expected fresh breakers to be healthy, got %v", stats)
	}
}

func TestGeminiSystemPromptsDisabled(t *testing.T) {
	cfg := configWithProvider("gemini")
	off := false
	cfg.UseSystemPrompts = &off
	g, err := NewGeminiProvider(context.Background(), cfg, config.OperationParse, testLogger())
	if err != nil {
		t.Fatalf("NewGeminiProvider() error = %v", err)
	}
	if got := g.generationConfig("system", profileSchema()); got.SystemInstruction != nil {
		t.Error("Expected system instruction to be omitted when disabled")
	}
}

func TestUserContents(t *testing.T) {
	text := userContents("hello", nil, "")
	if len(text) != 1 || len(text[0].Parts) != 1 || text[0].Parts[0].Text != "hello" {
		t.Errorf("Expected a single text part, got %+v", text)
	}

	withDoc := userContents("extract", []byte("%PDF"), "")
	parts := withDoc[0].Parts
	if len(parts) != 2 {
		t.Fatalf("Expected document and text parts, got %d", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "application/pdf" {
		t.Errorf("Expected inline PDF part first, got %+v", parts[0])
	}
	if parts[1].Text != "extract" {
		t.Errorf("Expected instruction text second, got %q", parts[1].Text)
	}
}

func TestSchemasRequireCoreFields(t *testing.T) {
	content := contentSchema()
	if len(content.Required) != len(content.Properties) {
		t.Errorf("Expected every content field required, got %d of %d", len(content.Required), len(content.Properties))
	}
	for _, field := range content.Required {
		if _, ok := content.Properties[field]; !ok {
			t.Errorf("Required field %s has no property", field)
		}
	}
	if !strings.Contains(content.Properties["cover_letter_body"].Description, "1800") {
		t.Error("Expected cover letter limit in description")
	}

	profile := profileSchema()
	for _, field := range []string{"name", "location", "roles", "core_skills", "signature_projects", "education"} {
		found := false
		for _, r := range profile.Required {
			if r == field {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %s to be required in profile schema", field)
		}
	}
}

func TestExtractTokenUsage(t *testing.T) {
	if extractTokenUsage(nil) != nil {
		t.Error("Expected nil usage for nil response")
	}
	usage := extractTokenUsage(&genai.GenerateContentResponse{
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     12,
			CandidatesTokenCount: 30,
			TotalTokenCount:      42,
		},
	})
	if usage == nil || usage.InputTokens != 12 || usage.OutputTokens != 30 || usage.TotalTokens != 42 {
		t.Errorf("Unexpected usage %+v", usage)
	}
}
