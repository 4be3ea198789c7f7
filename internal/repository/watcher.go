package repository

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mgit/internal/logging"

	"github.com/fsnotify/fsnotify"
)

const watcherDebounceDelay = 350 * time.Millisecond

// Watcher reports when the working tree or repository metadata changes, so
// the UI can refresh status without polling. Bursts of events (a checkout
// touches many files) coalesce into a single notification after a short
// quiet period.
type Watcher struct {
	changes chan struct{}
	watcher *fsnotify.Watcher
	logger  *logging.AppLogger

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// WatchRepository starts watching the handle's working tree and .git
// directory. The returned watcher must be stopped when no longer needed.
func WatchRepository(h *Handle, logger *logging.AppLogger) (*Watcher, error) {
	if !h.IsValid() {
		return nil, h.invalid()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}

	w := &Watcher{
		changes: make(chan struct{}, 1),
		watcher: fsw,
		logger:  logger,
	}

	// fsnotify does not recurse, so every directory is registered
	// separately. The .git internals are covered by the HEAD and refs
	// paths; watching .git/objects would only add churn.
	root := h.RootPath()
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" && path != root {
			return fs.SkipDir
		}
		return fsw.Add(path)
	})
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	gitDir := filepath.Join(root, ".git")
	_ = fsw.Add(gitDir)
	_ = fsw.Add(filepath.Join(gitDir, "refs", "heads"))

	go w.loop()
	return w, nil
}

// Changes delivers one value per settled burst of filesystem activity.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	_ = w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ignoreWatchPath(ev.Name) {
				continue
			}
			if w.logger != nil {
				w.logger.Debug("Filesystem event", "op", ev.Op.String(), "path", ev.Name)
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("Watcher error", "error", err)
			}
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watcherDebounceDelay, w.notify)
}

func (w *Watcher) notify() {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

// ignoreWatchPath filters the lock files git cycles on nearly every command.
func ignoreWatchPath(name string) bool {
	if strings.ToLower(filepath.Ext(name)) == ".lock" {
		return true
	}
	base := filepath.Base(name)
	return base == "ORIG_HEAD" || base == "FETCH_HEAD"
}
