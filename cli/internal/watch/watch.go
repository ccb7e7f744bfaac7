// Package watch re-runs a callback whenever a file changes on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 500 * time.Millisecond

// Watcher watches one file. Editors that write via rename are covered
// by watching the containing directory rather than the file itself.
type Watcher struct {
	file     string
	callback func() error
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// New creates a watcher for file that invokes callback after each
// change, debounced so editor write bursts fire once.
func New(file string, callback func() error) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	absPath, err := filepath.Abs(file)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}
	return &Watcher{
		file:     absPath,
		callback: callback,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Start runs the callback once, then blocks dispatching change events
// until Stop is called.
func (w *Watcher) Start() error {
	if err := w.callback(); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if eventPath, err := filepath.Abs(event.Name); err == nil && eventPath == w.file {
				timer.Reset(debounce)
				pending = timer.C
			}
		case <-pending:
			pending = nil
			// Watch mode keeps running through callback errors so the
			// user can fix the file and save again.
			_ = w.callback()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		case <-w.done:
			return nil
		}
	}
}

// Stop ends the watch loop and releases the inotify handle.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
}
