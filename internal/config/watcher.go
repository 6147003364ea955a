package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/timvw/tmux-runner/internal/logging"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reloads the config file when it changes and publishes the result
// into a Store. It watches the parent directory rather than the file itself:
// editors usually save by writing a new file and renaming it over the old
// one, which would silently end a watch on the file.
type Watcher struct {
	path   string
	home   string
	store  *Store
	logger *zap.Logger

	// OnReload, when set, is called after each successful reload.
	OnReload func(Snapshot)

	// Debounce collapses bursts of events into one reload.
	Debounce time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path, home string, store *Store, logger *zap.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		home:     home,
		store:    store,
		logger:   logging.OrNop(logger),
		Debounce: defaultDebounce,
	}
}

// Start begins watching. It is non-blocking; events are handled in a goroutine
// until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.fsw = fsw
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.logger.Debug("watching config file", zap.String("path", w.path))

	go w.run(ctx, fsw, w.stopCh, w.doneCh)
	return nil
}

// Stop ends the watch and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	fsw := w.fsw
	w.mu.Unlock()

	<-done
	if err := fsw.Close(); err != nil {
		w.logger.Warn("closing config watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	// Armed only by matching events.
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		case <-timer.C:
			w.reload()
		}
	}
}

// reload re-reads the config and publishes it. A broken file keeps the
// previous snapshot in place.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous settings",
			zap.String("path", w.path), zap.Error(err))
		return
	}
	snap := cfg.Snapshot(w.home)
	w.store.Publish(snap)
	w.logger.Info("config reloaded", zap.String("path", w.path))
	if w.OnReload != nil {
		w.OnReload(snap)
	}
}
