// Package watch reformats files when they are saved.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/r9s-ai/padfmt/internal/config"
	"github.com/r9s-ai/padfmt/internal/driver"
)

// DefaultDebounce is how long a file must stay quiet before it is formatted.
const DefaultDebounce = 200 * time.Millisecond

// minTick bounds how often pending files are checked.
const minTick = time.Millisecond

// Event reports one format-on-save attempt.
type Event struct {
	Path    string
	Changed bool
	Err     error
}

// Watcher formats files under a root directory after they change.
type Watcher struct {
	root     string
	settings *config.Settings
	logger   *zap.Logger
	debounce time.Duration
	onEvent  func(Event)

	mu      sync.Mutex
	pending map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithEventHandler is called after every formatting attempt.
func WithEventHandler(fn func(Event)) Option {
	return func(w *Watcher) { w.onEvent = fn }
}

// New creates a watcher for root.
func New(root string, settings *config.Settings, logger *zap.Logger, opts ...Option) *Watcher {
	if settings == nil {
		settings = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		root:     root,
		settings: settings,
		logger:   logger,
		debounce: DefaultDebounce,
		pending:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.settings.AutoFormat {
		return errors.New("watch: auto_format is disabled")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addRecursive(fsw, w.root); err != nil {
		return err
	}
	w.logger.Info("watching", zap.String("root", w.root), zap.Duration("debounce", w.debounce))

	ticker := time.NewTicker(max(w.debounce/2, minTick))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case now := <-ticker.C:
			for _, path := range w.due(now) {
				w.formatFile(path)
			}
		}
	}
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch %q: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && driver.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("watch %q: %w", dir, err)
			}
			w.logger.Warn("cannot watch directory", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.mu.Lock()
		delete(w.pending, event.Name)
		w.mu.Unlock()
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(fsw, event.Name); err != nil {
				w.logger.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}
	if !w.settings.Handles(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// due removes and returns the paths that have been quiet for the debounce
// interval.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var paths []string
	for path, changed := range w.pending {
		if now.Sub(changed) >= w.debounce {
			paths = append(paths, path)
			delete(w.pending, path)
		}
	}
	return paths
}

func (w *Watcher) formatFile(path string) {
	ev := Event{Path: path}
	formatted, changed, err := driver.FormatFile(path, w.settings.Language(path), w.settings.Profile())
	if err == nil && changed {
		err = driver.WriteFile(path, formatted)
	}
	ev.Changed = changed && err == nil
	ev.Err = err

	switch {
	case err != nil:
		w.logger.Warn("format on save failed", zap.String("path", path), zap.Error(err))
	case changed:
		w.logger.Info("formatted on save", zap.String("path", path))
	default:
		w.logger.Debug("already formatted", zap.String("path", path))
	}
	if w.onEvent != nil {
		w.onEvent(ev)
	}
}
