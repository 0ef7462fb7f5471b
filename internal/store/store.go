// Package store persists the candidate profile, the job library and user
// preferences in a single JSON file.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"applykit/internal/errors"
	"applykit/internal/types"

	"github.com/google/uuid"
)

// State is everything the store keeps.
type State struct {
	Profile    types.CandidateProfile `json:"profile"`
	Jobs       []types.JobDescription `json:"jobs"`
	ShowDates  bool                   `json:"show_dates"`
	TargetRole string                 `json:"target_role,omitempty"`
	UpdatedAt  time.Time              `json:"updated_at,omitzero"`
}

// DefaultState is the state of a store whose file does not exist yet.
func DefaultState() State {
	profile := DefaultProfile()
	return State{
		Profile:    profile,
		Jobs:       DefaultJobs(),
		TargetRole: profile.PrimaryRole(),
	}
}

// FileStore keeps State in memory and writes it through to disk.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	state  State
	now    func() time.Time
	logger *errors.Logger
}

// Open loads the state file at path. A missing file yields DefaultState,
// which is written on the first change.
func Open(path string, logger *errors.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "store path cannot be empty", nil)
	}
	s := &FileStore{path: filepath.Clean(path), now: time.Now, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the state file location.
func (s *FileStore) Path() string {
	return s.path
}

// Reload replaces the in-memory state with the file contents. The file is
// read under the write lock so a concurrent update is never rolled back.
func (s *FileStore) Reload() error {
	s.mu.Lock()
	state, err := readState(s.path)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = state
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.Debug("State loaded", "path", s.path, "jobs", len(state.Jobs))
	}
	return nil
}

func readState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultState(), nil
	}
	if err != nil {
		return State{}, errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to read state file", err).
			WithContext("path", path)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, errors.NewStoreError(errors.ErrCodeInvalidFormat, "state file is not valid JSON", err).
			WithContext("path", path)
	}
	return state, nil
}

// Save replaces the whole state, for example after an import.
func (s *FileStore) Save(state State) error {
	return s.update(func(st *State) error {
		*st = state
		st.Jobs = slices.Clone(state.Jobs)
		return nil
	})
}

// Snapshot returns a copy of the current state.
func (s *FileStore) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	state.Jobs = slices.Clone(s.state.Jobs)
	return state
}

// Profile returns the stored candidate profile.
func (s *FileStore) Profile() types.CandidateProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Profile
}

// SetProfile replaces the candidate profile.
func (s *FileStore) SetProfile(profile types.CandidateProfile) error {
	if strings.TrimSpace(profile.Name) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidProfile, "profile name is required", nil)
	}
	return s.update(func(st *State) error {
		st.Profile = profile
		if st.TargetRole == "" {
			st.TargetRole = profile.PrimaryRole()
		}
		return nil
	})
}

// Jobs returns the job library.
func (s *FileStore) Jobs() []types.JobDescription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Jobs)
}

// Job looks up a job by id.
func (s *FileStore) Job(id string) (types.JobDescription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, job := range s.state.Jobs {
		if job.ID == id {
			return job, nil
		}
	}
	return types.JobDescription{}, errors.NewNotFoundError(errors.ErrCodeJobNotFound, fmt.Sprintf("job '%s' not found", id))
}

// AddJob stores a job description, assigning an id when it has none.
func (s *FileStore) AddJob(job types.JobDescription) (types.JobDescription, error) {
	job.Description = strings.TrimSpace(job.Description)
	if job.Description == "" {
		return job, errors.NewValidationError(errors.ErrCodeInvalidRequest, "job description cannot be empty", nil)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Title == "" {
		job.Title = "Untitled role"
	}
	job.AddedAt = s.now().UTC()

	err := s.update(func(st *State) error {
		if slices.ContainsFunc(st.Jobs, func(j types.JobDescription) bool { return j.ID == job.ID }) {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest, fmt.Sprintf("job '%s' already exists", job.ID), nil)
		}
		st.Jobs = append(st.Jobs, job)
		return nil
	})
	return job, err
}

// RemoveJob deletes a job by id.
func (s *FileStore) RemoveJob(id string) error {
	return s.update(func(st *State) error {
		i := slices.IndexFunc(st.Jobs, func(j types.JobDescription) bool { return j.ID == id })
		if i < 0 {
			return errors.NewNotFoundError(errors.ErrCodeJobNotFound, fmt.Sprintf("job '%s' not found", id))
		}
		st.Jobs = slices.Delete(st.Jobs, i, i+1)
		return nil
	})
}

// SetPreferences stores the date visibility flag and the target role.
func (s *FileStore) SetPreferences(showDates bool, targetRole string) error {
	return s.update(func(st *State) error {
		st.ShowDates = showDates
		st.TargetRole = strings.TrimSpace(targetRole)
		return nil
	})
}

func (s *FileStore) update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Jobs = slices.Clone(s.state.Jobs)
	if err := fn(&next); err != nil {
		return err
	}
	next.UpdatedAt = s.now().UTC()
	if err := writeState(s.path, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// writeState replaces the file atomically through a temp file in the same
// directory.
func writeState(path string, state State) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to create state directory", err).WithContext("dir", dir)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to encode state", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to create temp file", err).WithContext("dir", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to write state", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to close temp file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to replace state file", err).WithContext("path", path)
	}
	return nil
}
