// Package watch feeds filesystem events into the ingestion pipeline.
//
// Create and write events are debounced per path, so a file being
// copied in or saved repeatedly by an editor is ingested once, after
// it has stayed quiet for the debounce window. Duplicate ingestions
// are harmless regardless: processing is idempotent per path.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chartsift/chartsift/internal/core/ports/driving"
	"github.com/chartsift/chartsift/internal/logger"
)

// DefaultDebounce is the quiet window before a changed file is
// ingested, when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors one directory and hands settled files to the
// ingestor.
type Watcher struct {
	ingestor driving.Ingestor
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher over the given ingestor. A debounce of zero
// or less means DefaultDebounce.
func New(ingestor driving.Ingestor, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		ingestor: ingestor,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// Watch blocks processing events for dir until ctx is cancelled.
// Watcher errors are logged, not raised; only failing to establish the
// watch is returned.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	logger.Section("Watch")
	logger.Info("Watching %s (debounce %s)", dir, w.debounce)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Write == fsnotify.Write:
				w.schedule(ctx, event.Name)
			default:
				continue
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// schedule arms, or re-arms, the debounce timer for one path. The
// timer firing means the file stayed quiet for the whole window.
func (w *Watcher) schedule(ctx context.Context, path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.debounce)
		return
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		logger.Debug("File settled: %s", path)
		if _, err := w.ingestor.ProcessFile(ctx, path); err != nil {
			logger.Warn("Processing %s: %v", path, err)
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}
