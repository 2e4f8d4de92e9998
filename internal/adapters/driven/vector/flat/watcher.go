package flat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

// DefaultDebounce is how long the watcher waits for a rebuild to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a bundle into a Handle whenever the bundle directory
// is replaced. It watches the parent directory because Save swaps the
// bundle by rename.
type Watcher struct {
	handle   *Handle
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	onReload func(*Index, error)
}

// NewWatcher creates a watcher for the bundle at path.
func NewWatcher(handle *Handle, path string) (*Watcher, error) {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0700); err != nil {
		return nil, fmt.Errorf("flat: create bundle parent: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("flat: create watcher: %w", err)
	}
	if err := fsw.Add(parent); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("flat: watch %s: %w", parent, err)
	}

	return &Watcher{
		handle:   handle,
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		fsw:      fsw,
	}, nil
}

// SetDebounce overrides the settle delay.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// OnReload registers a callback run after every reload attempt.
func (w *Watcher) OnReload(fn func(*Index, error)) {
	w.onReload = fn
}

// Run processes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("Bundle event: %s", event)
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Index watcher error: %v", err)

		case <-timer.C:
			w.reload()
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Write)
}

func (w *Watcher) reload() {
	idx, err := w.handle.Reload(w.path)
	switch {
	case err == nil:
		logger.Info("Reloaded index %s: %d chunks", idx.BuildID(), idx.Len())
	case errors.Is(err, domain.ErrIndexUnavailable):
		logger.Debug("Bundle not present yet: %v", err)
	default:
		logger.Warn("Reload index: %v", err)
	}
	if w.onReload != nil {
		w.onReload(idx, err)
	}
}
