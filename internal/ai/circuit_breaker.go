package ai

import (
	"fmt"

	"applykit/internal/config"
	"applykit/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// Breaker guards calls returning T. A nil Breaker calls through.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewBreaker returns a breaker configured from cfg, or nil when disabled.
// readyToTrip overrides the failure ratio rule when non-nil.
func NewBreaker[T any](name string, cfg config.CircuitBreakerConfig, readyToTrip func(gobreaker.Counts) bool, logger *errors.Logger) *Breaker[T] {
	if !cfg.Enabled {
		return nil
	}
	if readyToTrip == nil {
		readyToTrip = func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		}
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: readyToTrip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Info("Circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String(),
					"failure_threshold", cfg.FailureThreshold)
			}
		},
	}
	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// operationBreakerName names the breaker guarding an AI operation.
func operationBreakerName(operation string) string {
	return fmt.Sprintf("AI-%s", operation)
}

// Execute runs fn through the breaker.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// Stats reports the breaker name, state and counts.
func (b *Breaker[T]) Stats() map[string]any {
	if b == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy reports whether the breaker is closed.
func (b *Breaker[T]) IsHealthy() bool {
	return b == nil || b.cb.State() == gobreaker.StateClosed
}
