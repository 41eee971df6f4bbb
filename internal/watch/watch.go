// Package watch reruns a callback when files in a directory change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the directory must stay quiet before the
// callback fires.
const DefaultDebounce = 200 * time.Millisecond

// Handler is called with the base names that changed since the last call.
// Calls never overlap.
type Handler func(ctx context.Context, changed []string)

// Watcher watches one directory, non-recursively.
type Watcher struct {
	Dir string
	// Match selects relevant file names (base name only). Nil matches all.
	Match func(name string) bool
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Run blocks until ctx is done, invoking fn after each burst of changes.
// The handler runs on the watch goroutine, so events arriving meanwhile are
// batched into the next call.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}
	logger.Info("watching for changes", "dir", w.Dir)

	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if w.Match != nil && !w.Match(name) {
				continue
			}
			logger.Debug("change detected", "file", name, "op", event.Op.String())
			pending[name] = struct{}{}
			timer.Reset(debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			slices.Sort(changed)
			clear(pending)
			fn(ctx, changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
