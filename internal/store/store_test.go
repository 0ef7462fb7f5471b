package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"applykit/internal/errors"
	"applykit/internal/types"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.json"), errors.NewLogger(slog.LevelDebug))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return s
}

func TestOpenSeedsDefaults(t *testing.T) {
	s := newTestStore(t)
	if s.Profile().Name != "Greg Dukes" {
		t.Errorf("Expected default profile, got '%s'", s.Profile().Name)
	}
	if len(s.Jobs()) != 3 {
		t.Errorf("Expected 3 seeded jobs, got %d", len(s.Jobs()))
	}
	if s.Snapshot().TargetRole != "AI Solutions Architect" {
		t.Errorf("Expected target role from first profile role, got '%s'", s.Snapshot().TargetRole)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("Expected no file to be written before the first change")
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(" ", nil); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestOpenInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path, nil)
	if !errors.IsType(err, errors.ErrorTypeStore) {
		t.Errorf("Expected store error, got %v", err)
	}
}

func TestJobLifecycle(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	job, err := s.AddJob(types.JobDescription{Source: "LinkedIn", Title: "Colorist", Description: "  Grade docs.  "})
	if err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	if len(job.ID) != 36 {
		t.Errorf("Expected uuid id, got '%s'", job.ID)
	}
	if job.Description != "Grade docs." || !job.AddedAt.Equal(fixed) {
		t.Errorf("Unexpected job: %+v", job)
	}

	got, err := s.Job(job.ID)
	if err != nil || got.Title != "Colorist" {
		t.Fatalf("Job lookup failed: %+v, %v", got, err)
	}

	if _, err := s.AddJob(types.JobDescription{ID: job.ID, Description: "dup"}); err == nil {
		t.Error("Expected duplicate id to be rejected")
	}
	if _, err := s.AddJob(types.JobDescription{Title: "Empty"}); !errors.IsType(err, errors.ErrorTypeValidation) {
		t.Errorf("Expected validation error for empty description, got %v", err)
	}

	if err := s.RemoveJob(job.ID); err != nil {
		t.Fatalf("RemoveJob failed: %v", err)
	}
	if _, err := s.Job(job.ID); !errors.IsType(err, errors.ErrorTypeNotFound) {
		t.Errorf("Expected not found after removal, got %v", err)
	}
	if err := s.RemoveJob("missing"); !errors.IsType(err, errors.ErrorTypeNotFound) {
		t.Errorf("Expected not found for unknown id, got %v", err)
	}
}

func TestPersistence(t *testing.T) {
	s := newTestStore(t)
	profile := types.CandidateProfile{Name: "Ana Ruiz", Location: "Lisbon", Roles: []string{"Producer"}}
	if err := s.SetProfile(profile); err != nil {
		t.Fatalf("SetProfile failed: %v", err)
	}
	if err := s.SetPreferences(true, "Line Producer"); err != nil {
		t.Fatalf("SetPreferences failed: %v", err)
	}

	reopened, err := Open(s.Path(), nil)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	state := reopened.Snapshot()
	if state.Profile.Name != "Ana Ruiz" || !state.ShowDates || state.TargetRole != "Line Producer" {
		t.Errorf("State not persisted: %+v", state)
	}
	if state.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set")
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("State file is not JSON: %v", err)
	}
	if _, ok := raw["show_dates"]; !ok {
		t.Error("Expected snake_case keys in state file")
	}

	entries, _ := os.ReadDir(filepath.Dir(s.Path()))
	if len(entries) != 1 {
		t.Errorf("Expected only the state file, found %d entries", len(entries))
	}
}

func TestSetProfileRequiresName(t *testing.T) {
	s := newTestStore(t)
	err := s.SetProfile(types.CandidateProfile{Location: "Nowhere"})
	if !errors.IsType(err, errors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if s.Profile().Name != "Greg Dukes" {
		t.Error("Failed update must not change the profile")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore(t)
	snap := s.Snapshot()
	snap.Jobs[0].Title = "changed"
	if s.Jobs()[0].Title == "changed" {
		t.Error("Snapshot shares the job slice with the store")
	}
}

func TestWatcherReloadsExternalEdits(t *testing.T) {
	s := newTestStore(t)

	changed := make(chan State, 1)
	w := NewWatcher(s, 20*time.Millisecond, func(st State) {
		select {
		case changed <- st:
		default:
		}
	}, errors.NewLogger(slog.LevelDebug))
	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer w.Stop()

	if !w.IsRunning() {
		t.Fatal("Expected watcher to be running")
	}
	if err := w.Start(); err == nil {
		t.Error("Expected second Start to fail")
	}

	edited := DefaultState()
	edited.Profile.Name = "Edited By Hand"
	data, _ := json.Marshal(edited)
	if err := os.WriteFile(s.Path(), data, 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case st := <-changed:
		if st.Profile.Name != "Edited By Hand" {
			t.Errorf("Expected reloaded profile, got '%s'", st.Profile.Name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}
	if s.Profile().Name != "Edited By Hand" {
		t.Error("Store was not reloaded")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if w.IsRunning() {
		t.Error("Expected watcher to be stopped")
	}
}

func TestSaveReplacesState(t *testing.T) {
	s := newTestStore(t)
	state := DefaultState()
	state.Jobs = state.Jobs[:1]
	state.ShowDates = true
	if err := s.Save(state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got := s.Snapshot(); len(got.Jobs) != 1 || !got.ShowDates {
		t.Errorf("Expected saved state, got %+v", got)
	}
}

func TestWatchStopsWithContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	w, err := s.Watch(ctx, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for w.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if w.IsRunning() {
		t.Error("Expected watcher to stop after cancel")
	}
}

func TestReloadDuringWritesKeepsJobs(t *testing.T) {
	s := newTestStore(t)
	seeded := len(s.Jobs())
	const added = 50

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				if err := s.Reload(); err != nil {
					t.Errorf("Reload failed: %v", err)
					return
				}
			}
		}
	}()

	for i := range added {
		if _, err := s.AddJob(types.JobDescription{Title: fmt.Sprintf("job %d", i), Description: "text"}); err != nil {
			t.Fatalf("AddJob %d failed: %v", i, err)
		}
	}
	close(done)
	wg.Wait()

	if got := len(s.Jobs()); got != seeded+added {
		t.Errorf("Expected %d jobs, got %d", seeded+added, got)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Final reload failed: %v", err)
	}
	if got := len(s.Jobs()); got != seeded+added {
		t.Errorf("Expected %d jobs on disk, got %d", seeded+added, got)
	}
}
