package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigFileDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gemini-from-env")
	cfg, err := LoadConfigFile(writeConfig(t, "app:\n  logLevel: warn\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.App.LogLevel != "warn" {
		t.Errorf("Expected log level 'warn', got '%s'", cfg.App.LogLevel)
	}
	if cfg.AI.APIKey != "gemini-from-env" {
		t.Errorf("Expected API key from GEMINI_API_KEY, got '%s'", cfg.AI.APIKey)
	}
	if cfg.Document.PageSize != "a4" || cfg.Document.FontFamily != "helvetica" {
		t.Errorf("Unexpected document defaults: %+v", cfg.Document)
	}
	if cfg.Ingest.MaxFileSize != 10*1024*1024 {
		t.Errorf("Expected 10 MiB ingest limit, got %d", cfg.Ingest.MaxFileSize)
	}
	if filepath.Base(cfg.Store.Path) != "state.json" || cfg.Store.Path[0] == '~' {
		t.Errorf("Expected expanded store path, got '%s'", cfg.Store.Path)
	}

	letter, err := cfg.Document.CoverLetterGeometry()
	if err != nil {
		t.Fatalf("CoverLetterGeometry failed: %v", err)
	}
	if letter.Margins.Left != 25 || letter.Width != 210 {
		t.Errorf("Expected A4 with 25 mm margins, got %+v", letter)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("APPLYKIT_AI_APIKEY", "env-key")
	t.Setenv("APPLYKIT_DOCUMENT_PAGESIZE", "letter")
	t.Setenv("APPLYKIT_SERVER_APIKEYS", "one, two ,three")
	t.Setenv("APPLYKIT_AI_GENERATE_MODEL", "gemini-2.5-pro")

	cfg, err := LoadConfigFile(writeConfig(t, "server:\n  port: \"9000\"\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.AI.APIKey != "env-key" {
		t.Errorf("Expected env API key, got '%s'", cfg.AI.APIKey)
	}
	if cfg.Document.PageSize != "letter" {
		t.Errorf("Expected letter page size, got '%s'", cfg.Document.PageSize)
	}
	if len(cfg.Server.APIKeys) != 3 || cfg.Server.APIKeys[1] != "two" {
		t.Errorf("Expected three trimmed API keys, got %q", cfg.Server.APIKeys)
	}
	gen, err := cfg.OperationConfig(OperationGenerate)
	if err != nil {
		t.Fatal(err)
	}
	if gen.Model != "gemini-2.5-pro" {
		t.Errorf("Expected generate model override, got '%s'", gen.Model)
	}
	parse, _ := cfg.OperationConfig(OperationParse)
	if parse.Model != cfg.AI.Model {
		t.Errorf("Expected parse to inherit model '%s', got '%s'", cfg.AI.Model, parse.Model)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestOperationConfigInheritance(t *testing.T) {
	timeout := 5 * time.Second
	cfg := &Config{AI: AIConfig{
		Provider:         "gemini",
		Model:            "global-model",
		APIKey:           "global-key",
		Timeout:          30 * time.Second,
		MaxRetries:       4,
		Temperature:      0.5,
		MaxOutputTokens:  1024,
		UseSystemPrompts: true,
		Extract:          OperationAIConfig{Model: "extract-model", Timeout: &timeout},
	}}

	tests := []struct {
		operation   string
		model       string
		timeout     time.Duration
		expectError bool
	}{
		{OperationGenerate, "global-model", 30 * time.Second, false},
		{OperationParse, "global-model", 30 * time.Second, false},
		{OperationExtract, "extract-model", 5 * time.Second, false},
		{"tailor", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			op, err := cfg.OperationConfig(tt.operation)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error for unknown operation")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if op.Model != tt.model {
				t.Errorf("Expected model '%s', got '%s'", tt.model, op.Model)
			}
			if *op.Timeout != tt.timeout {
				t.Errorf("Expected timeout %v, got %v", tt.timeout, *op.Timeout)
			}
			if op.APIKey != "global-key" || *op.MaxRetries != 4 || *op.MaxOutputTokens != 1024 || !*op.UseSystemPrompts {
				t.Errorf("Expected inherited values, got %+v", op)
			}
		})
	}

	op, _ := cfg.OperationConfig(OperationGenerate)
	*op.MaxRetries = 99
	if cfg.AI.MaxRetries != 4 {
		t.Error("Resolved operation config must not alias the global settings")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AI:     AIConfig{Timeout: time.Second},
			Server: ServerConfig{Port: "8080"},
			App:    AppConfig{DefaultFormat: "json", SupportedFormats: []string{"json", "text"}, LogFormat: "json"},
			Document: DocumentConfig{
				PageSize:          "a4",
				FontFamily:        "go",
				ResumeMargins:     MarginConfig{20, 20, 20, 20},
				CoverLetterMargin: MarginConfig{25, 25, 25, 25},
				BriefMargins:      MarginConfig{20, 20, 20, 20},
			},
			Store:  StoreConfig{Path: "/tmp/state.json"},
			Ingest: IngestConfig{MaxFileSize: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"valid", func(*Config) {}, true},
		{"zero timeout", func(c *Config) { c.AI.Timeout = 0 }, false},
		{"unsupported default format", func(c *Config) { c.App.DefaultFormat = "xml" }, false},
		{"bad log format", func(c *Config) { c.App.LogFormat = "xml" }, false},
		{"bad font family", func(c *Config) { c.Document.FontFamily = "comic" }, false},
		{"bad page size", func(c *Config) { c.Document.PageSize = "a3" }, false},
		{"margins fill page", func(c *Config) { c.Document.BriefMargins.Left = 200 }, false},
		{"empty store path", func(c *Config) { c.Store.Path = "" }, false},
		{"zero ingest limit", func(c *Config) { c.Ingest.MaxFileSize = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestRequireAIKey(t *testing.T) {
	cfg := &Config{}
	if cfg.RequireAIKey() == nil {
		t.Error("Expected error without API key")
	}
	cfg.AI.APIKey = "k"
	if err := cfg.RequireAIKey(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestLoadPromptFiles(t *testing.T) {
	dir := t.TempDir()
	system := filepath.Join(dir, "system.generate.md")
	if err := os.WriteFile(system, []byte("  Be brief.\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{AI: AIConfig{Generate: OperationAIConfig{SystemPrompt: "inline", SystemPromptFile: system}}}
	if err := cfg.loadPromptFiles(); err != nil {
		t.Fatalf("Failed to load prompt files: %v", err)
	}
	if cfg.AI.Generate.SystemPrompt != "Be brief." {
		t.Errorf("Expected file prompt to replace inline prompt, got '%s'", cfg.AI.Generate.SystemPrompt)
	}

	cfg.AI.Parse.UserPromptFile = filepath.Join(dir, "missing.md")
	if err := cfg.loadPromptFiles(); err == nil {
		t.Error("Expected error for missing prompt file")
	}

	empty := filepath.Join(dir, "empty.md")
	if err := os.WriteFile(empty, []byte("   "), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg = &Config{AI: AIConfig{Extract: OperationAIConfig{UserPromptFile: empty}}}
	if err := cfg.loadPromptFiles(); err == nil {
		t.Error("Expected error for empty prompt file")
	}
}
