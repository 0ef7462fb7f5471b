package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"applykit/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a FileStore when its file is changed by another process,
// for example a hand edit or a second CLI invocation.
type Watcher struct {
	mu sync.Mutex

	store       *FileStore
	lastModTime time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onChange func(State)
	logger   *errors.Logger

	running bool
}

// NewWatcher creates a watcher that calls onChange with the reloaded state.
func NewWatcher(store *FileStore, debounceDelay time.Duration, onChange func(State), logger *errors.Logger) *Watcher {
	if debounceDelay <= 0 {
		debounceDelay = 500 * time.Millisecond
	}
	return &Watcher{
		store:         store,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching. The directory is watched rather than the file so
// atomic replacements and late creation are seen.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("state watcher is already running")
	}

	dir := filepath.Dir(w.store.Path())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	w.fsWatcher = fsWatcher
	w.lastModTime = modTime(w.store.Path())
	w.running = true

	go w.watchLoop()

	if w.logger != nil {
		w.logger.Info("State file watcher started", "file", w.store.Path(), "debounce_delay", w.debounceDelay)
	}
	return nil
}

// Stop ends the watch loop and releases the file watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.running = false

	if err := w.fsWatcher.Close(); err != nil {
		if w.logger != nil {
			w.logger.LogError(err, "Failed to close file system watcher")
		}
		return err
	}
	if w.logger != nil {
		w.logger.Info("State file watcher stopped")
	}
	return nil
}

// Watch starts a watcher on s and stops it when ctx is done.
func (s *FileStore) Watch(ctx context.Context, debounce time.Duration, onChange func(State)) (*Watcher, error) {
	w := NewWatcher(s, debounce, onChange, s.logger)
	if err := w.Start(); err != nil {
		return nil, err
	}
	go func() {
		<-ctx.Done()
		_ = w.Stop()
	}()
	return w, nil
}

// IsRunning returns whether the watcher is currently running
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.isStateEvent(event) {
				w.scheduleReload()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.LogError(err, "File watcher error")
			}

		case <-w.reloadChan:
			w.reload()

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) isStateEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.store.Path() {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) reload() {
	current := modTime(w.store.Path())
	if current.IsZero() || !current.After(w.lastModTime) {
		return
	}
	if err := w.store.Reload(); err != nil {
		if w.logger != nil {
			w.logger.LogError(err, "Failed to reload state file")
		}
		return
	}
	w.lastModTime = current
	if w.logger != nil {
		w.logger.Info("State file changed, reloaded", "file", w.store.Path())
	}
	if w.onChange != nil {
		w.onChange(w.store.Snapshot())
	}
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
