// Package watch reruns an action when files under watched roots change.
//
// It drives the install --watch loop: edits to a source tree trigger a
// reinstall after a short quiet period, so a burst of saves collapses
// into a single run.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period required after the last change
// before the action runs.
const DefaultDebounce = 500 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Roots are the directories to watch, each recursively.
	Roots []string

	// Debounce is the quiet period before firing. Defaults to
	// DefaultDebounce when zero.
	Debounce time.Duration

	// Logger receives watch progress. Defaults to slog.Default.
	Logger *slog.Logger
}

// Watcher rebuilds on filesystem changes beneath a set of roots.
type Watcher struct {
	roots    []string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a Watcher for the configured roots.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Roots) == 0 {
		return nil, errors.New("no directories to watch")
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		roots:    cfg.Roots,
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Run watches until ctx is canceled, invoking fn after each debounced
// batch of changes. Errors from fn are logged and the loop keeps
// watching; a failed run should not end the watch session. Run returns
// nil when ctx is canceled.
func (w *Watcher) Run(ctx context.Context, fn func() error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer fw.Close()

	for _, root := range w.roots {
		if err := addRecursive(fw, root); err != nil {
			return err
		}
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ignored(event.Name) {
				continue
			}
			// Directories created after startup need their own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(fw, event.Name); err != nil {
						w.logger.Warn("watching new directory", "path", event.Name, "error", err)
					}
				}
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			if err := fn(); err != nil {
				w.logger.Error("run failed, still watching", "error", err)
			}
		}
	}
}

// addRecursive watches root and every directory beneath it. fsnotify
// watches are not recursive.
func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walking %s", path)
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return errors.Wrapf(err, "watching %s", path)
		}
		return nil
	})
}

// ignored reports whether a changed path should not trigger a run.
// Git bookkeeping churns during fetches and must not retrigger installs.
func ignored(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".git" {
			return true
		}
	}
	return false
}
