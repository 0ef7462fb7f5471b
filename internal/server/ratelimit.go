package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"applykit/internal/config"
	"applykit/internal/errors"

	"golang.org/x/time/rate"
)

const limiterEvictionAge = 10 * time.Minute

// RateLimiter keeps one token bucket per client key (IP or API key).
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	rejected int64
	done     chan struct{}
	stop     sync.Once
	logger   *errors.Logger
}

// NewRateLimiter spreads cfg.RequestsPerMin over cfg.Window and starts the
// eviction loop. Close stops it.
func NewRateLimiter(cfg config.RateLimitConfig, logger *errors.Logger) *RateLimiter {
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	burst := cfg.BurstCapacity
	if burst <= 0 {
		burst = 1
	}

	m := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(cfg.RequestsPerMin) / window.Seconds()),
		burst:    burst,
		done:     make(chan struct{}),
		logger:   logger,
	}
	go m.cleanupRoutine(limiterEvictionAge)
	return m
}

func (m *RateLimiter) limiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.limiters[key]
	if !ok {
		l = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = l
	}
	m.lastSeen[key] = time.Now()
	return l
}

// Allow reports whether a request for key may proceed now.
func (m *RateLimiter) Allow(key string) bool {
	if m.limiter(key).Allow() {
		return true
	}
	m.mu.Lock()
	m.rejected++
	m.mu.Unlock()
	return false
}

// Stats returns limiter statistics for the stats endpoint.
func (m *RateLimiter) Stats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"enabled":           true,
		"active_limiters":   len(m.limiters),
		"rate_per_second":   float64(m.rate),
		"rate_per_minute":   float64(m.rate) * 60.0,
		"burst_capacity":    m.burst,
		"rejected_requests": m.rejected,
	}
}

func (m *RateLimiter) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(interval)
		case <-m.done:
			return
		}
	}
}

// cleanup drops limiters idle for longer than evictionAge.
func (m *RateLimiter) cleanup(evictionAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, seen := range m.lastSeen {
		if now.Sub(seen) > evictionAge {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
		}
	}
	if m.logger != nil {
		m.logger.Debug("Rate limiter cleanup completed", "remaining_limiters", len(m.limiters))
	}
}

// Close stops the eviction loop. It is safe to call more than once.
func (m *RateLimiter) Close() {
	m.stop.Do(func() { close(m.done) })
}

// rateLimitMiddleware rejects requests over the per-client rate with 429.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key, keyType := rateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
		if key == "" {
			next(w, r)
			return
		}
		if !s.RateLimiter.Allow(key) {
			s.metrics.RecordRateLimitHit(r.Context(), keyType)
			s.Logger.Info("Rate limit exceeded",
				"key_type", keyType,
				"endpoint", r.URL.Path,
				"client_ip", clientIP(r))
			w.Header().Set("Retry-After", "60")
			writeErrorResponse(w, "RATE_LIMITED", "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// rateLimitKey prefers the API key when enabled and present, then the IP.
func rateLimitKey(r *http.Request, byAPIKey, byIP bool) (string, string) {
	if byAPIKey {
		if apiKey := apiKeyFromRequest(r); apiKey != "" {
			return "api:" + apiKey, "api_key"
		}
	}
	if byIP {
		return "ip:" + clientIP(r), "ip"
	}
	return "", ""
}

// apiKeyFromRequest reads X-API-Key, then a Bearer token.
func apiKeyFromRequest(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for ip := range strings.SplitSeq(xff, ",") {
			ip = strings.TrimSpace(ip)
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	if xri := r.Header.Get("X-Real-IP"); net.ParseIP(xri) != nil {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
