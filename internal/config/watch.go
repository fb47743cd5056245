package config

import (
	"log/slog"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/nextlevelbuilder/pyrunner/internal/policy"
)

// PolicyWatcher watches a policy override file and atomically swaps in
// a freshly parsed policy.Catalog whenever it changes, mirroring the
// teacher's config-reload pattern. The zero value is not usable; build
// one with WatchPolicy.
type PolicyWatcher struct {
	path    string
	current atomic.Pointer[policy.Catalog]
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// WatchPolicy loads the policy catalog from path (or policy.Default()
// if path is empty) and, if path is non-empty, starts a background
// watch for subsequent changes. Call Close to stop watching.
func WatchPolicy(path string, logger *slog.Logger) (*PolicyWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cat, err := LoadPolicyCatalog(path)
	if err != nil {
		return nil, err
	}
	w := &PolicyWatcher{path: path, logger: logger}
	w.current.Store(cat)

	if path == "" {
		return w, nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}
	w.watcher = fw
	go w.run()
	return w, nil
}

// Catalog returns the currently active catalog. Safe to call
// concurrently with a reload in progress.
func (w *PolicyWatcher) Catalog() *policy.Catalog {
	return w.current.Load()
}

// Close stops the background watch, if any.
func (w *PolicyWatcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

func (w *PolicyWatcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cat, err := LoadPolicyCatalog(w.path)
			if err != nil {
				w.logger.Warn("policy reload failed, keeping previous catalog", "path", w.path, "error", err)
				continue
			}
			w.current.Store(cat)
			w.logger.Info("policy catalog reloaded", "path", w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("policy watcher error", "error", err)
		}
	}
}
