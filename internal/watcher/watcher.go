// Package watcher nudges the ingestion loop when the source directory changes.
package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches the source directory with fsnotify and signals the nudge
// channel after a quiet period. It never touches files itself: the ingestion
// loop's next pass owns all per-file work, so a nudge is only ever an early
// tick. Missed nudges cost nothing; the interval poll catches up.
type Watcher struct {
	dir      string
	nudge    chan<- struct{}
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	started bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher creates a watcher for dir that signals nudge on changes.
func NewWatcher(dir string, nudge chan<- struct{}, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:      dir,
		nudge:    nudge,
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.mu.Unlock()
	if w.logger != nil {
		w.logger.Debug("watcher started", zap.String("dir", w.dir))
	}
	go w.run(ctx, watcher)
	return nil
}

// run receives events from the captured watcher, never re-reading w.watcher:
// Stop nils the field concurrently, and closing the watcher closes both
// channels, which is what terminates this loop.
func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			switch {
			case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write), ev.Op.Has(fsnotify.Remove):
				if w.logger != nil {
					w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
				}
				w.scheduleNudge()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

// scheduleNudge coalesces bursts of events into one nudge after the debounce.
func (w *Watcher) scheduleNudge() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.nudge <- struct{}{}:
		default:
			// A nudge is already pending; the next pass covers this change too.
		}
	})
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started || w.watcher == nil {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
}
