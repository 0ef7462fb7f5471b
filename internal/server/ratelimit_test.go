package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"applykit/internal/config"
	"applykit/internal/errors"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RequestsPerMin: 1, BurstCapacity: 2, Window: time.Minute}, nil)
	defer rl.Close()

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("Expected burst requests to be allowed")
	}
	if rl.Allow("a") {
		t.Error("Expected third request to be rejected")
	}
	if !rl.Allow("b") {
		t.Error("Expected a separate key to have its own bucket")
	}

	stats := rl.Stats()
	if stats["rejected_requests"] != int64(1) {
		t.Errorf("Expected 1 rejected request, got %v", stats["rejected_requests"])
	}
	if stats["active_limiters"] != 2 {
		t.Errorf("Expected 2 active limiters, got %v", stats["active_limiters"])
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RequestsPerMin: 60, BurstCapacity: 1}, nil)
	rl.Allow("stale")
	rl.mu.Lock()
	rl.lastSeen["stale"] = time.Now().Add(-time.Hour)
	rl.mu.Unlock()
	rl.Allow("fresh")

	rl.cleanup(limiterEvictionAge)

	rl.mu.Lock()
	_, staleKept := rl.limiters["stale"]
	_, freshKept := rl.limiters["fresh"]
	rl.mu.Unlock()
	if staleKept || !freshKept {
		t.Errorf("Expected only stale limiter to be evicted (stale=%v fresh=%v)", staleKept, freshKept)
	}

	rl.Close()
	rl.Close()
}

func TestRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		byAPIKey bool
		byIP     bool
		header   string
		wantKey  string
		wantType string
	}{
		{name: "api key preferred", byAPIKey: true, byIP: true, header: "k1", wantKey: "api:k1", wantType: "api_key"},
		{name: "falls back to ip", byAPIKey: true, byIP: true, wantKey: "ip:192.0.2.1", wantType: "ip"},
		{name: "ip only", byIP: true, header: "k1", wantKey: "ip:192.0.2.1", wantType: "ip"},
		{name: "nothing enabled", header: "k1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			key, keyType := rateLimitKey(req, tt.byAPIKey, tt.byIP)
			if key != tt.wantKey || keyType != tt.wantType {
				t.Errorf("Expected (%q, %q), got (%q, %q)", tt.wantKey, tt.wantType, key, keyType)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", http.ErrBodyNotAllowed, http.StatusInternalServerError},
		{"validation", errors.NewValidationError(errors.ErrCodeInvalidRequest, "bad", nil), http.StatusBadRequest},
		{"too large", errors.NewValidationError(errors.ErrCodeFileTooLarge, "big", nil), http.StatusRequestEntityTooLarge},
		{"unsupported", errors.NewValidationError(errors.ErrCodeUnsupportedFormat, "odd", nil), http.StatusUnsupportedMediaType},
		{"missing key", errors.NewConfigError(errors.ErrCodeMissingAPIKey, "no key", nil), http.StatusServiceUnavailable},
		{"ai timeout", errors.NewAIError(errors.ErrCodeAITimeout, "slow", nil), http.StatusGatewayTimeout},
		{"ai failure", errors.NewAIError(errors.ErrCodeAIServiceFailed, "down", nil), http.StatusBadGateway},
		{"network", errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "net", nil), http.StatusBadGateway},
		{"not found", errors.NewNotFoundError(errors.ErrCodeJobNotFound, "gone"), http.StatusNotFound},
		{"store", errors.NewStoreError(errors.ErrCodeStoreFailed, "disk", nil), http.StatusInternalServerError},
		{"render", errors.NewRenderError(errors.ErrCodeRenderFailed, "pdf", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}
