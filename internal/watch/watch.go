// Package watch monitors template and data files and coalesces change
// notifications so a compile step can re-run after a quiet period.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultInterval = 500 * time.Millisecond

// Watcher monitors a fixed set of files for modification. Editors often
// replace files by renaming a temporary over them, so the parent
// directories are watched as well and the file watch is re-added when
// the path reappears.
type Watcher struct {
	fw       *fsnotify.Watcher
	paths    map[string]bool
	mu       sync.Mutex
	pending  bool
	changes  chan struct{}
	errors   chan error
	done     chan struct{}
	interval time.Duration
}

// New watches the given files, reporting at most one change per
// interval. An interval of zero or less selects the default.
func New(interval time.Duration, paths ...string) (*Watcher, error) {
	if interval <= 0 {
		interval = defaultInterval
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fw:       fw,
		paths:    map[string]bool{},
		changes:  make(chan struct{}, 1),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
		interval: interval,
	}

	dirs := map[string]bool{}

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			fw.Close()
			return nil, err
		}

		w.paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}

	for abs := range w.paths {
		// Best effort; the directory watch covers files that
		// don't exist yet.
		fw.Add(abs) //nolint:errcheck
	}

	go w.run()

	return w, nil
}

// Changes returns the channel that receives a value after watched files
// settle. Bursts of writes collapse into a single notification.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Errors returns the channel for watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) run() {
	tick := time.NewTicker(w.interval)
	defer tick.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}

			w.handle(event)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}

			select {
			case w.errors <- err:
			default:
			}

		case <-tick.C:
			w.flush()
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := filepath.Clean(event.Name)

	if !w.paths[name] {
		return
	}

	if event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
		// The inode watch died with the old file.
		w.fw.Add(name) //nolint:errcheck
	}

	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
		w.mu.Lock()
		w.pending = true
		w.mu.Unlock()
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	fire := w.pending
	w.pending = false
	w.mu.Unlock()

	if !fire {
		return
	}

	select {
	case w.changes <- struct{}{}:
	default:
	}
}
