package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for more writes before
// reloading.
const DefaultDebounce = 250 * time.Millisecond

// ConfigWatcher reloads configuration when the config file or any of its
// includes change on disk.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	logger   *slog.Logger

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}
}

// NewConfigWatcher watches files and calls onChange once per burst of writes.
// Parent directories are watched instead of the files themselves so that
// editors replacing the file by rename are noticed.
func NewConfigWatcher(files []string, debounce time.Duration, onChange func(), logger *slog.Logger) (*ConfigWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &ConfigWatcher{
		watcher:  watcher,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}
	if err := w.SetFiles(files); err != nil {
		watcher.Close()
		return nil, err
	}
	return w, nil
}

// SetFiles replaces the watched file set; new directories are added, stale
// ones are left in place.
func (w *ConfigWatcher) SetFiles(files []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.files = make(map[string]struct{}, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", f, err)
		}
		w.files[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				w.logger.Debug("config directory does not exist, not watching", "dir", dir)
				continue
			}
			return fmt.Errorf("watch %q: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	return nil
}

func (w *ConfigWatcher) isWatched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[abs]
	return ok
}

// Run delivers debounced change notifications until ctx is cancelled.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case evt, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			// Ignore events that are not related to file content changes.
			if evt.Op == fsnotify.Chmod || !w.isWatched(evt.Name) {
				continue
			}
			w.logger.Debug("config file changed", "file", evt.Name, "op", evt.Op.String())
			timer.Reset(w.debounce)
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-fire:
			fire = nil
			w.onChange()
		}
	}
}
