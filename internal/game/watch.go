package game

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Watcher polls the YAML files under a directory and calls onChange with
// the path of every file that was added or modified since the last scan.
type Watcher struct {
	Root     string
	Interval time.Duration

	onChange  func(string)
	stopCh    chan struct{}
	lastMTime map[string]time.Time
}

// NewWatcher creates a watcher for root, scanning every interval.
func NewWatcher(root string, interval time.Duration, onChange func(string)) *Watcher {
	return &Watcher{
		Root:      root,
		Interval:  interval,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// Start primes the mtime cache and polls in a goroutine until Stop.
func (w *Watcher) Start() {
	w.scan(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
}

func (w *Watcher) scan(prime bool) {
	_ = filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are retried on the next tick
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}
		fi, err := os.Stat(path)
		if err != nil {
			return nil
		}
		mt := fi.ModTime()
		last, seen := w.lastMTime[path]
		if seen && !mt.After(last) {
			return nil
		}
		w.lastMTime[path] = mt
		if !prime && w.onChange != nil {
			w.onChange(path)
		}
		return nil
	})
}
