package common

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"applykit/internal/errors"
	"applykit/internal/types"
)

func testLogger() *errors.Logger {
	return errors.NewLoggerWithWriter(io.Discard, slog.LevelError, "text")
}

func TestRunCommand(t *testing.T) {
	var out bytes.Buffer
	var logged bool

	result, err := RunCommand(
		context.Background(),
		testLogger(),
		CommandConfig{OutputFormat: "text"},
		&out,
		func(context.Context) (string, error) { return "Platform Engineer", nil },
		func(_ context.Context, title string) (types.TailoredContent, error) {
			return types.TailoredContent{ResumeTargetTitle: title, MatchScore: 70}, nil
		},
		func(string, CommandConfig) { logged = true },
	)
	if err != nil {
		t.Fatalf("RunCommand() error = %v", err)
	}
	if result.ResumeTargetTitle != "Platform Engineer" {
		t.Errorf("Expected result to be returned, got %+v", result)
	}
	if !logged {
		t.Error("Expected log details callback to run")
	}
	if !strings.Contains(out.String(), "Score: 70/100") {
		t.Errorf("Expected formatted output, got %q", out.String())
	}
}

func TestRunCommandStopsOnInputError(t *testing.T) {
	called := false
	_, err := RunCommand(
		context.Background(),
		testLogger(),
		CommandConfig{OutputFormat: "json"},
		io.Discard,
		func(context.Context) (string, error) {
			return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, "no job", nil)
		},
		func(context.Context, string) (string, error) { called = true; return "", nil },
		nil,
	)
	if err == nil {
		t.Fatal("Expected input error")
	}
	if called {
		t.Error("Expected operation not to run")
	}
}

func TestRunCommandWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	_, err := RunCommand(
		context.Background(),
		testLogger(),
		CommandConfig{OutputFormat: "json", OutputFile: path},
		io.Discard,
		func(context.Context) (int, error) { return 3, nil },
		func(_ context.Context, n int) (map[string]int, error) { return map[string]int{"n": n}, nil },
		nil,
	)
	if err != nil {
		t.Fatalf("RunCommand() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"n": 3`) {
		t.Errorf("Unexpected file content %q", data)
	}
}
