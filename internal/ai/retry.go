package ai

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"applykit/internal/errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// retryPolicy retries transient failures with exponential backoff and
// jitter. Delays are capped at maxDelay.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *errors.Logger
}

func newRetryPolicy(maxRetries int, logger *errors.Logger) retryPolicy {
	return retryPolicy{
		maxRetries: max(maxRetries, 0),
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
		logger:     logger,
	}
}

// backoff returns the wait before the given retry attempt (1-based).
func (p retryPolicy) backoff(attempt int) time.Duration {
	delay := p.baseDelay << (attempt - 1)
	if delay <= 0 || delay > p.maxDelay {
		delay = p.maxDelay
	}
	if jitterMax := int64(delay) / 10; jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			delay += time.Duration(n.Int64())
		}
	}
	return min(delay, p.maxDelay)
}

func retry[T any](ctx context.Context, p retryPolicy, operation string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			if p.logger != nil {
				p.logger.Warn("Retrying AI operation",
					"operation", operation,
					"attempt", attempt,
					"max_retries", p.maxRetries,
					"error", lastErr.Error())
			}
			timer := time.NewTimer(p.backoff(attempt))
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 && p.logger != nil {
				p.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			if p.logger != nil {
				p.logger.Debug("Error is not retryable, stopping retry attempts",
					"operation", operation,
					"error", err.Error())
			}
			return zero, err
		}
	}

	if p.logger != nil {
		p.logger.LogError(lastErr, "AI operation failed after all retry attempts",
			"operation", operation,
			"total_attempts", p.maxRetries+1)
	}
	return zero, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, p.maxRetries, lastErr)
}

// isRetryableError reports whether err is a network failure or a
// throttling or server-side API status.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}
	var genaiErrPtr *genai.APIError
	if stderrors.As(err, &genaiErrPtr) {
		return retryableStatus(genaiErrPtr.Code)
	}
	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
