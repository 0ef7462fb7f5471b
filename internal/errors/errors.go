package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeAI         ErrorType = "ai"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeStore      ErrorType = "store"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewAIError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewRenderError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeRender, code, message, cause)
}

func NewStoreError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeStore, code, message, cause)
}

func NewNotFoundError(code, message string) *AppError {
	return newAppError(ErrorTypeNotFound, code, message, nil)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, typ ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Type == typ
}

// Logger wraps slog with application-specific methods
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a JSON logger on stderr; stdout is reserved for command output
func NewLogger(level slog.Level) *Logger {
	return NewLoggerWithWriter(os.Stderr, level, "json")
}

// NewLoggerWithWriter creates a logger writing json or text records to w
func NewLoggerWithWriter(w io.Writer, level slog.Level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &Logger{logger: slog.New(handler)}
}

// With returns a logger that adds args to every record
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// Slog exposes the underlying slog logger
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// LogError logs an application error with appropriate level and context
func (l *Logger) LogError(err error, message string, args ...any) {
	if appErr, ok := AsAppError(err); ok {
		logArgs := []any{
			"error_type", appErr.Type,
			"error_code", appErr.Code,
			"error_message", appErr.Message,
		}
		if appErr.Cause != nil {
			logArgs = append(logArgs, "cause", appErr.Cause.Error())
		}
		for key, value := range appErr.Context {
			logArgs = append(logArgs, key, value)
		}
		logArgs = append(logArgs, args...)
		l.logger.Error(message, logArgs...)
		return
	}

	logArgs := append([]any{"error", err.Error()}, args...)
	l.logger.Error(message, logArgs...)
}

func (l *Logger) Info(message string, args ...any) {
	l.logger.Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	l.logger.Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.logger.Warn(message, args...)
}

// ParseLevel maps a level name to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

// New creates a new logger instance from configuration values
func New(level, format string) (*Logger, error) {
	slogLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch format {
	case "", "json", "text":
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	return NewLoggerWithWriter(os.Stderr, slogLevel, format), nil
}

// Common error codes
const (
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable   = "FILE_NOT_READABLE"
	ErrCodeFileTooLarge      = "FILE_TOO_LARGE"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidFormat     = "INVALID_FORMAT"
	ErrCodeInvalidProfile    = "INVALID_PROFILE"
	ErrCodeAIServiceFailed   = "AI_SERVICE_FAILED"
	ErrCodeAITimeout         = "AI_TIMEOUT"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeMissingAPIKey     = "MISSING_API_KEY"
	ErrCodeNetworkTimeout    = "NETWORK_TIMEOUT"
	ErrCodeInvalidConfig     = "INVALID_CONFIG"
	ErrCodeRenderFailed      = "RENDER_FAILED"
	ErrCodeStoreFailed       = "STORE_FAILED"
	ErrCodeJobNotFound       = "JOB_NOT_FOUND"
	ErrCodeExtractionEmpty   = "EXTRACTION_EMPTY"
)
