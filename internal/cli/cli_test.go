package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"applykit/internal/config"
	"applykit/internal/errors"
	"applykit/internal/store"
)

func testCLIConfig(t *testing.T) *config.Config {
	t.Helper()
	margins := config.MarginConfig{Top: 20, Right: 20, Bottom: 20, Left: 20}
	return &config.Config{
		App: config.AppConfig{DefaultFormat: "text", SupportedFormats: []string{"json", "text", "markdown"}},
		Document: config.DocumentConfig{
			PageSize:          "a4",
			FontFamily:        "helvetica",
			ResumeMargins:     margins,
			CoverLetterMargin: margins,
			BriefMargins:      margins,
		},
		Store:  config.StoreConfig{Path: filepath.Join(t.TempDir(), "state.json")},
		Ingest: config.IngestConfig{MaxFileSize: 1 << 20},
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	logger := errors.NewLoggerWithWriter(io.Discard, slog.LevelError, "text")
	err := Execute(context.Background(), cfg, logger)
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, testCLIConfig(t), "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "applykit version "+Version) {
		t.Errorf("Unexpected version output %q", out)
	}
}

func TestJobsLifecycle(t *testing.T) {
	cfg := testCLIConfig(t)
	jobFile := filepath.Join(t.TempDir(), "staff-engineer.txt")
	if err := os.WriteFile(jobFile, []byte("Staff Engineer\nLead the platform team."), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, cfg, "jobs", "add", "--file", jobFile, "--title", "", "--source", "Acme")
	if err != nil {
		t.Fatalf("jobs add error = %v", err)
	}
	if !strings.Contains(out, "(staff-engineer)") {
		t.Errorf("Expected title from file name, got %q", out)
	}

	st, err := store.Open(cfg.Store.Path, nil)
	if err != nil {
		t.Fatal(err)
	}
	jobs := st.Jobs()
	added := jobs[len(jobs)-1]
	if added.Source != "Acme" || !strings.Contains(added.Description, "Lead the platform team.") {
		t.Errorf("Unexpected stored job %+v", added)
	}

	out, err = run(t, cfg, "jobs", "list", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, added.ID) {
		t.Errorf("Expected job id in list, got %q", out)
	}

	if _, err := run(t, cfg, "jobs", "remove", added.ID); err != nil {
		t.Fatalf("jobs remove error = %v", err)
	}
	if _, err := run(t, cfg, "jobs", "remove", added.ID); err == nil {
		t.Error("Expected error removing a missing job")
	}
}

func TestProfileExportValidateImport(t *testing.T) {
	cfg := testCLIConfig(t)
	dir := t.TempDir()
	exported := filepath.Join(dir, "profile.json")

	if _, err := run(t, cfg, "profile", "export", exported); err != nil {
		t.Fatalf("profile export error = %v", err)
	}
	out, err := run(t, cfg, "profile", "validate", exported)
	if err != nil {
		t.Fatalf("exported profile should validate: %v", err)
	}
	if !strings.Contains(out, "is a valid profile") {
		t.Errorf("Unexpected validate output %q", out)
	}

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"name": "x"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, cfg, "profile", "validate", invalid); err == nil {
		t.Error("Expected validation error")
	}

	replacement := filepath.Join(dir, "grace.json")
	body := `{"name": "Grace Hopper", "roles": ["Computer Scientist"], "core_skills": ["Compilers"]}`
	if err := os.WriteFile(replacement, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, cfg, "profile", "import", replacement); err != nil {
		t.Fatalf("profile import error = %v", err)
	}
	out, err = run(t, cfg, "profile", "show", "--format", "markdown")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "# Grace Hopper") {
		t.Errorf("Expected imported profile, got %q", out)
	}
}

func TestProfilePrefs(t *testing.T) {
	cfg := testCLIConfig(t)
	out, err := run(t, cfg, "profile", "prefs", "--role", "Producer", "--show-dates")
	if err != nil {
		t.Fatal(err)
	}
	var prefs map[string]any
	if err := json.Unmarshal([]byte(out), &prefs); err != nil {
		t.Fatalf("Expected JSON output, got %q", out)
	}
	if prefs["target_role"] != "Producer" || prefs["show_dates"] != true {
		t.Errorf("Unexpected preferences %v", prefs)
	}
}

func TestRenderWritesPDFs(t *testing.T) {
	cfg := testCLIConfig(t)
	dir := t.TempDir()
	contentFile := filepath.Join(dir, "content.json")
	content := `{"resume_target_title": "Platform Engineer", "resume_professional_summary": "Builds platforms.",
		"resume_core_bullets": ["Shipped it"], "cover_letter_body": "Dear team,", "match_score": 75}`
	if err := os.WriteFile(contentFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "pdf")
	out, err := run(t, cfg, "render", "--content", contentFile, "--kind", "resume,brief", "--out-dir", outDir)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.Contains(out, "resume: ") || !strings.Contains(out, "brief: ") || strings.Contains(out, "cover-letter") {
		t.Errorf("Unexpected render output %q", out)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 PDFs, got %d", len(entries))
	}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
			t.Errorf("%s is not a PDF", e.Name())
		}
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	_, err := run(t, testCLIConfig(t), "generate", "--job-id", "anything", "--kind", "all")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeMissingAPIKey {
		t.Errorf("Expected %s, got %v", errors.ErrCodeMissingAPIKey, err)
	}
}
