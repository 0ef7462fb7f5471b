package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults registers every key so that APPLYKIT_* variables are picked
// up by AutomaticEnv.
func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.maxOutputTokens", 8192)
	v.SetDefault("ai.useSystemPrompts", true)

	// Generation writes long structured output; parsing and extraction
	// should copy, not invent.
	operationDefaults := map[string]struct {
		timeout     time.Duration
		retries     int
		temperature float64
	}{
		OperationGenerate: {90 * time.Second, 2, 0.7},
		OperationParse:    {60 * time.Second, 2, 0.1},
		OperationExtract:  {60 * time.Second, 3, 0},
	}
	for op, d := range operationDefaults {
		prefix := "ai." + op + "."
		v.SetDefault(prefix+"provider", "")
		v.SetDefault(prefix+"model", "")
		v.SetDefault(prefix+"apiKey", "")
		v.SetDefault(prefix+"timeout", d.timeout)
		v.SetDefault(prefix+"maxRetries", d.retries)
		v.SetDefault(prefix+"temperature", d.temperature)
		v.SetDefault(prefix+"systemPrompt", "")
		v.SetDefault(prefix+"systemPromptFile", "")
		v.SetDefault(prefix+"userPrompt", "")
		v.SetDefault(prefix+"userPromptFile", "")

		v.SetDefault(prefix+"circuitBreaker.enabled", true)
		v.SetDefault(prefix+"circuitBreaker.maxRequests", 3)
		v.SetDefault(prefix+"circuitBreaker.interval", 60*time.Second)
		v.SetDefault(prefix+"circuitBreaker.timeout", 60*time.Second)
		v.SetDefault(prefix+"circuitBreaker.minRequests", 3)
		v.SetDefault(prefix+"circuitBreaker.failureThreshold", 0.6)
	}

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 12*1024*1024)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.logFormat", "json")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})

	v.SetDefault("document.pageSize", "a4")
	v.SetDefault("document.fontFamily", "helvetica")
	v.SetDefault("document.showDates", false)
	for key, margin := range map[string]float64{
		"resumeMargins":      20,
		"coverLetterMargins": 25,
		"briefMargins":       20,
	} {
		v.SetDefault("document."+key+".top", margin)
		v.SetDefault("document."+key+".right", margin)
		v.SetDefault("document."+key+".bottom", margin)
		v.SetDefault("document."+key+".left", margin)
	}

	v.SetDefault("store.path", "~/.applykit/state.json")
	v.SetDefault("store.watch", true)
	v.SetDefault("store.debounceDelay", 500*time.Millisecond)

	v.SetDefault("ingest.maxFileSize", 10*1024*1024)
	v.SetDefault("ingest.aiFallback", true)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "applykit")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
