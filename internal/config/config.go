// Package config loads applykit settings from config.yaml, APPLYKIT_*
// environment variables and, optionally, HashiCorp Vault.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"applykit/internal/layout"

	"github.com/spf13/viper"
)

// Operation names used for per-operation AI settings.
const (
	OperationGenerate = "generate"
	OperationParse    = "parse"
	OperationExtract  = "extract"
)

// Operations lists every AI operation.
func Operations() []string {
	return []string{OperationGenerate, OperationParse, OperationExtract}
}

// Config holds all configuration for the application
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Document      DocumentConfig      `mapstructure:"document"`
	Store         StoreConfig         `mapstructure:"store"`
	Ingest        IngestConfig        `mapstructure:"ingest"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds global AI settings and the per-operation overrides.
type AIConfig struct {
	Provider         string        `mapstructure:"provider"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	APIKey           string        `mapstructure:"apiKey"`
	MaxRetries       int           `mapstructure:"maxRetries"`
	Temperature      float32       `mapstructure:"temperature"`
	MaxOutputTokens  int32         `mapstructure:"maxOutputTokens"`
	UseSystemPrompts bool          `mapstructure:"useSystemPrompts"`

	Generate OperationAIConfig `mapstructure:"generate"`
	Parse    OperationAIConfig `mapstructure:"parse"`
	Extract  OperationAIConfig `mapstructure:"extract"`
}

// OperationAIConfig is the resolved AI configuration of one operation.
// Pointer fields are nil until inherited from AIConfig.
type OperationAIConfig struct {
	Provider         string         `mapstructure:"provider"`
	Model            string         `mapstructure:"model"`
	Timeout          *time.Duration `mapstructure:"timeout"`
	APIKey           string         `mapstructure:"apiKey"`
	MaxRetries       *int           `mapstructure:"maxRetries"`
	Temperature      *float32       `mapstructure:"temperature"`
	MaxOutputTokens  *int32         `mapstructure:"maxOutputTokens"`
	UseSystemPrompts *bool          `mapstructure:"useSystemPrompts"`

	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`

	// Inline prompts. A *File setting replaces the inline text at load time.
	SystemPrompt     string `mapstructure:"systemPrompt"`
	SystemPromptFile string `mapstructure:"systemPromptFile"`
	UserPrompt       string `mapstructure:"userPrompt"`
	UserPromptFile   string `mapstructure:"userPromptFile"`
}

// CircuitBreakerConfig holds gobreaker settings for one operation.
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MinRequests      uint32        `mapstructure:"minRequests"`
	FailureThreshold float64       `mapstructure:"failureThreshold"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host           string          `mapstructure:"host"`
	Port           string          `mapstructure:"port"`
	ReadTimeout    time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration   `mapstructure:"idleTimeout"`
	MaxRequestSize int64           `mapstructure:"maxRequestSize"`
	APIKeys        []string        `mapstructure:"apiKeys"`
	RateLimit      RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// AppConfig holds general application settings
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	LogFormat        string   `mapstructure:"logFormat"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
}

// MarginConfig is a set of page margins in document units.
type MarginConfig struct {
	Top    float64 `mapstructure:"top"`
	Right  float64 `mapstructure:"right"`
	Bottom float64 `mapstructure:"bottom"`
	Left   float64 `mapstructure:"left"`
}

// DocumentConfig controls page geometry and fonts of rendered PDFs.
type DocumentConfig struct {
	PageSize          string       `mapstructure:"pageSize"`
	FontFamily        string       `mapstructure:"fontFamily"`
	ShowDates         bool         `mapstructure:"showDates"`
	ResumeMargins     MarginConfig `mapstructure:"resumeMargins"`
	CoverLetterMargin MarginConfig `mapstructure:"coverLetterMargins"`
	BriefMargins      MarginConfig `mapstructure:"briefMargins"`
}

func (m MarginConfig) margins() layout.Margins {
	return layout.Margins{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left}
}

// ResumeGeometry is the page of resumes.
func (d DocumentConfig) ResumeGeometry() (layout.Geometry, error) {
	return layout.PageSize(d.PageSize, d.ResumeMargins.margins())
}

// CoverLetterGeometry is the page of cover letters.
func (d DocumentConfig) CoverLetterGeometry() (layout.Geometry, error) {
	return layout.PageSize(d.PageSize, d.CoverLetterMargin.margins())
}

// BriefGeometry is the page of application briefs.
func (d DocumentConfig) BriefGeometry() (layout.Geometry, error) {
	return layout.PageSize(d.PageSize, d.BriefMargins.margins())
}

// StoreConfig locates the state file.
type StoreConfig struct {
	Path          string        `mapstructure:"path"`
	Watch         bool          `mapstructure:"watch"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// IngestConfig controls file imports.
type IngestConfig struct {
	MaxFileSize int64 `mapstructure:"maxFileSize"`
	AIFallback  bool  `mapstructure:"aiFallback"`
}

// ObservabilityConfig holds OpenTelemetry settings
type ObservabilityConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	ServiceName     string  `mapstructure:"serviceName"`
	ServiceVersion  string  `mapstructure:"serviceVersion"`
	ServiceInstance string  `mapstructure:"serviceInstance"`
	ConsoleOutput   bool    `mapstructure:"consoleOutput"`
	SampleRate      float64 `mapstructure:"sampleRate"`

	Tracing    TracingConfig    `mapstructure:"tracing"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	OTLP       OTLPConfig       `mapstructure:"otlp"`
}

// TracingConfig holds tracing settings
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics settings
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// PrometheusConfig holds the Prometheus exporter settings
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds the OTLP exporter settings
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from file, environment and defaults.
func LoadConfig() (*Config, error) {
	return loadConfig("")
}

// LoadConfigFile loads configuration from an explicit file.
func LoadConfigFile(path string) (*Config, error) {
	return loadConfig(path)
}

func loadConfig(file string) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading")
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APPLYKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".applykit"))
		}
		v.AddConfigPath("/etc/applykit")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Using config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.loadPromptFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks settings that every command depends on. The AI key is
// checked by RequireAIKey since rendering works without it.
func (c *Config) Validate() error {
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}
	switch c.App.LogFormat {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be 'json' or 'text')", c.App.LogFormat)
	}
	switch c.Document.FontFamily {
	case "helvetica", "go":
	default:
		return fmt.Errorf("invalid document font family: %s (must be 'helvetica' or 'go')", c.Document.FontFamily)
	}
	for name, geometry := range map[string]func() (layout.Geometry, error){
		"resume":       c.Document.ResumeGeometry,
		"cover letter": c.Document.CoverLetterGeometry,
		"brief":        c.Document.BriefGeometry,
	} {
		g, err := geometry()
		if err != nil {
			return fmt.Errorf("invalid %s page: %w", name, err)
		}
		if err := g.Validate(); err != nil {
			return fmt.Errorf("invalid %s page: %w", name, err)
		}
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}
	if c.Ingest.MaxFileSize <= 0 {
		return fmt.Errorf("ingest max file size must be positive")
	}
	return nil
}

// RequireAIKey reports a missing Gemini API key.
func (c *Config) RequireAIKey() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("AI API key is required (set APPLYKIT_AI_APIKEY or GEMINI_API_KEY)")
	}
	return nil
}

// OperationConfig returns the configuration of an AI operation with unset
// fields inherited from the global AI settings.
func (c *Config) OperationConfig(operation string) (OperationAIConfig, error) {
	var op OperationAIConfig
	switch operation {
	case OperationGenerate:
		op = c.AI.Generate
	case OperationParse:
		op = c.AI.Parse
	case OperationExtract:
		op = c.AI.Extract
	default:
		return OperationAIConfig{}, fmt.Errorf("unknown AI operation '%s'", operation)
	}
	c.applyOperationDefaults(&op)
	return op, nil
}

func (c *Config) applyOperationDefaults(op *OperationAIConfig) {
	if op.Provider == "" {
		op.Provider = c.AI.Provider
	}
	if op.Model == "" {
		op.Model = c.AI.Model
	}
	if op.APIKey == "" {
		op.APIKey = c.AI.APIKey
	}
	if op.Timeout == nil {
		timeout := c.AI.Timeout
		op.Timeout = &timeout
	}
	if op.MaxRetries == nil {
		retries := c.AI.MaxRetries
		op.MaxRetries = &retries
	}
	if op.Temperature == nil {
		temperature := c.AI.Temperature
		op.Temperature = &temperature
	}
	if op.MaxOutputTokens == nil {
		tokens := c.AI.MaxOutputTokens
		op.MaxOutputTokens = &tokens
	}
	if op.UseSystemPrompts == nil {
		use := c.AI.UseSystemPrompts
		op.UseSystemPrompts = &use
	}
}

// applyFallbacks fills values viper cannot express as plain defaults.
func (c *Config) applyFallbacks() {
	if c.AI.APIKey == "" {
		for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if key := os.Getenv(env); key != "" {
				c.AI.APIKey = key
				break
			}
		}
	}

	// env values arrive split on commas but untrimmed
	c.Server.APIKeys = splitList(strings.Join(c.Server.APIKeys, ","))
	if len(c.Server.APIKeys) == 0 {
		if env := os.Getenv("APPLYKIT_SERVER_APIKEYS"); env != "" {
			c.Server.APIKeys = splitList(env)
		}
	}

	c.Store.Path = expandHome(c.Store.Path)

	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-%s", c.Observability.ServiceName, hostname)
		} else {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-1", c.Observability.ServiceName)
		}
	}

	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// logConfigurationSources logs where configuration came from, masking secrets.
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")
	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"APPLYKIT_AI_APIKEY",
		"APPLYKIT_AI_MODEL",
		"APPLYKIT_SERVER_PORT",
		"APPLYKIT_SERVER_HOST",
		"APPLYKIT_APP_LOGLEVEL",
		"APPLYKIT_STORE_PATH",
		"APPLYKIT_VAULT_ENABLED",
		"GEMINI_API_KEY",
		"GOOGLE_API_KEY",
	}
	log.Println("[CONFIG] Environment variables:")
	set := 0
	for _, name := range envVars {
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(name), "key") {
			value = "***MASKED***"
		}
		log.Printf("[CONFIG]   %s=%s", name, value)
		set++
	}
	if set == 0 {
		log.Println("[CONFIG]   None set")
	}

	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	if c.AI.APIKey != "" {
		log.Println("[CONFIG] AI API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] AI API Key: ***NOT SET***")
	}
	log.Printf("[CONFIG] Store Path: %s", c.Store.Path)
	log.Printf("[CONFIG] Document: %s, font %s", c.Document.PageSize, c.Document.FontFamily)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	for _, op := range Operations() {
		cfg, _ := c.OperationConfig(op)
		log.Printf("[CONFIG] %s - Provider: %s, Model: %s", op, cfg.Provider, cfg.Model)
	}
}
