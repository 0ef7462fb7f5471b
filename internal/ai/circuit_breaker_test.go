package ai

import (
	stderrors "errors"
	"testing"
	"time"

	"applykit/internal/config"

	"github.com/sony/gobreaker/v2"
)

func TestBreakerDisabled(t *testing.T) {
	b := NewBreaker[int]("AI-test", config.CircuitBreakerConfig{Enabled: false}, nil, testLogger())
	if b != nil {
		t.Fatal("Expected nil breaker when disabled")
	}
	got, err := b.Execute(func() (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Errorf("Expected pass-through call, got %d, %v", got, err)
	}
	if !b.IsHealthy() {
		t.Error("Expected disabled breaker to be healthy")
	}
	if enabled, _ := b.Stats()["enabled"].(bool); enabled {
		t.Error("Expected stats to report disabled")
	}
}

func TestBreakerTripsOnFailureRatio(t *testing.T) {
	cfg := config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
	b := NewBreaker[string](operationBreakerName("generate"), cfg, nil, testLogger())
	failure := stderrors.New("boom")

	for range 3 {
		_, _ = b.Execute(func() (string, error) { return "", failure })
	}
	if b.IsHealthy() {
		t.Fatal("Expected breaker to open after repeated failures")
	}
	_, err := b.Execute(func() (string, error) { return "ok", nil })
	if !stderrors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState, got %v", err)
	}
	if name := b.Stats()["name"]; name != "AI-generate" {
		t.Errorf("Expected name AI-generate, got %v", name)
	}
}

func TestBreakerCustomTrip(t *testing.T) {
	cfg := config.CircuitBreakerConfig{Enabled: true, Timeout: time.Minute}
	b := NewBreaker[int]("AI-model", cfg, func(c gobreaker.Counts) bool {
		return c.ConsecutiveFailures >= 1
	}, nil)

	_, _ = b.Execute(func() (int, error) { return 0, stderrors.New("down") })
	if b.IsHealthy() {
		t.Error("Expected breaker to open after one failure")
	}
}
