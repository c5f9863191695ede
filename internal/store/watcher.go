package store

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"windrose/internal/logging"
)

// Watcher notifies on session file changes in a FileStore root so the TUI
// session list can refresh when another process (or a manual edit) touches
// the directory. Notifications are coalesced: the channel has capacity one
// and drops while a refresh is already pending.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
}

// NewWatcher starts watching the store root.
func NewWatcher(root string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(root); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logging.StoreDebug("session file change: %s %s", ev.Op, filepath.Base(ev.Name))
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.StoreWarn("watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Changes returns the notification channel.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
