package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultReloadDelay coalesces the burst of write events editors produce
// when saving a file.
const defaultReloadDelay = 100 * time.Millisecond

// ReloadFunc is called after a watched file settles.
type ReloadFunc func(path string)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithReloadDelay sets the debounce delay applied to file events.
func WithReloadDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// Watcher monitors configuration files and invokes a reload callback when
// they change. Events are debounced per file.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	reload  ReloadFunc
	delay   time.Duration
	timers  map[string]*time.Timer
	watched map[string]bool
	done    chan struct{}
	wg      sync.WaitGroup
	closed  bool
}

// NewWatcher creates a watcher that calls reload when a watched file
// changes.
func NewWatcher(reload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		fsw:     fsw,
		reload:  reload,
		delay:   defaultReloadDelay,
		timers:  make(map[string]*time.Timer),
		watched: make(map[string]bool),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch starts watching a file. The containing directory is watched so
// atomic save-and-rename sequences still produce events.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.watched[abs] {
		return nil
	}
	if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", abs, err)
	}
	w.watched[abs] = true
	return nil
}

// Close stops the watcher. Closing more than once is a no-op.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	_ = w.fsw.Close()
	w.wg.Wait()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule(ev.Name)
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are not actionable here; the next successful
			// event will still trigger a reload.
		case <-w.done:
			return
		}
	}
}

// schedule debounces a change notification for one file.
func (w *Watcher) schedule(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.watched[abs] {
		return
	}
	if t, ok := w.timers[abs]; ok {
		t.Stop()
	}
	w.timers[abs] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.timers, abs)
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.reload(abs)
		}
	})
}
