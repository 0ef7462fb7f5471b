package server

import (
	"net/http"
)

// setupRoutes registers every endpoint. Protected routes run through rate
// limiting, then API key auth, then the request size limit.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return s.rateLimitMiddleware(s.authMiddleware(s.requestSizeLimitMiddleware(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("POST /generate", protect(s.generateHandler))

	mux.HandleFunc("GET /profile", protect(s.getProfileHandler))
	mux.HandleFunc("PUT /profile", protect(s.putProfileHandler))
	mux.HandleFunc("POST /profile/import", protect(s.importProfileHandler))

	mux.HandleFunc("GET /jobs", protect(s.listJobsHandler))
	mux.HandleFunc("POST /jobs", protect(s.addJobHandler))
	mux.HandleFunc("DELETE /jobs/{id}", protect(s.removeJobHandler))
	mux.HandleFunc("POST /jobs/extract", protect(s.extractJobHandler))

	mux.HandleFunc("POST /render/{kind}", protect(s.renderHandler))

	if s.obs != nil && s.obs.MetricsHandler() != nil && s.AppConfig.Observability.Prometheus.Port == "" {
		mux.Handle("GET "+s.AppConfig.Observability.Prometheus.Endpoint, s.obs.MetricsHandler())
	}
	return mux
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := s.setupRoutes()
	if s.obs == nil {
		return mux
	}
	return s.obs.HTTPMiddleware()(mux)
}

// authMiddleware requires a configured API key when any are set.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := apiKeyFromRequest(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", clientIP(r))
			writeErrorResponse(w, "MISSING_API_KEY", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}
		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", clientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "INVALID_API_KEY", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))
		next(w, r)
	}
}

// requestSizeLimitMiddleware caps the request body.
func (s *Server) requestSizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}
		next(w, r)
	}
}

// maskAPIKey shows only the first 8 characters of a key.
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
