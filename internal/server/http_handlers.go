package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"applykit/internal/errors"
)

const healthCheckTimeout = 10 * time.Second

// healthHandler reports liveness. With ?deep=true it also checks that the
// configured models are reachable.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "applykit",
		"version": s.Version,
		"uptime":  s.now().Sub(s.started).Round(time.Second).String(),
	}

	status := http.StatusOK
	if r.URL.Query().Get("deep") == "true" && len(s.models) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		models := make(map[string]any, len(s.models))
		for op, checker := range s.models {
			info := checker.GetModelInfo(ctx)
			models[op] = info
			if !info.Available {
				response["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
		response["ai_models"] = models
	}

	writeJSON(w, status, response)
}

// statsHandler reports rate limiting and request limits.
func (s *Server) statsHandler(w http.ResponseWriter, _ *http.Request) {
	response := map[string]any{
		"service": "applykit",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_auth_enabled":       len(s.APIKeys) > 0,
		},
	}
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.Stats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}
	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}
	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest decodes a JSON body into v.
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return errors.NewValidationError(errors.ErrCodeFileTooLarge,
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return errors.NewIOError(errors.ErrCodeInvalidRequest, "failed to read request body", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to parse JSON: "+err.Error(), err)
	}
	return nil
}

// readUpload returns the name and content of the multipart "file" field.
func (s *Server) readUpload(r *http.Request) (string, []byte, error) {
	limit := s.MaxRequestSize
	if limit <= 0 {
		limit = 32 << 20
	}
	if err := r.ParseMultipartForm(limit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return "", nil, errors.NewValidationError(errors.ErrCodeFileTooLarge,
				fmt.Sprintf("upload too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return "", nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "expected a multipart form with a file field", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "missing file field", err)
	}
	defer file.Close()

	maxFile := s.ingestor.MaxFileSize()
	if maxFile > 0 && header.Size > maxFile {
		return "", nil, errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s exceeds the %d byte upload limit", header.Filename, maxFile), nil)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read upload", err)
	}
	return header.Filename, data, nil
}

// statusFor maps application errors to HTTP status codes.
func statusFor(err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case errors.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeMissingAPIKey:
		return http.StatusServiceUnavailable
	case errors.ErrCodeAITimeout:
		return http.StatusGatewayTimeout
	}
	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeAI, errors.ErrorTypeNetwork:
		return http.StatusBadGateway
	case errors.ErrorTypeConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes it in the standard envelope.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := "INTERNAL_ERROR"
	message := err.Error()
	if appErr, ok := errors.AsAppError(err); ok {
		code = appErr.Code
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed", "endpoint", r.URL.Path, "status", status)
	} else {
		s.Logger.Debug("Request rejected", "endpoint", r.URL.Path, "status", status, "code", code)
	}
	writeErrorResponse(w, code, message, status)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, code, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
