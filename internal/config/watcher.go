package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the profile when its file changes on disk. The callback
// runs on a background goroutine; hosts must marshal it onto their event
// loop themselves.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	onChange func(*Profile)
	stop     chan struct{}
}

// debounceWindow coalesces the write bursts editors produce on save.
const debounceWindow = 200 * time.Millisecond

// NewWatcher watches path. The parent directory is watched rather than the
// file itself so rename-over saves keep working.
func NewWatcher(path string, onChange func(*Profile)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{path: path, fsw: fsw, onChange: onChange, stop: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) Close() error {
	close(w.stop)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	var pending <-chan time.Time
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(debounceWindow)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("config: watch error: %v", err)
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	l := &Loader{OverridePath: w.path}
	p, err := l.Load()
	if err != nil {
		log.Printf("config: reload of %s failed, keeping previous profile: %v", w.path, err)
		return
	}
	w.onChange(p)
}
