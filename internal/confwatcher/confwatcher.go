// Package confwatcher contains a configuration file watcher.
package confwatcher

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	minInterval = 1 * time.Second
)

// ConfWatcher is a configuration file watcher.
type ConfWatcher struct {
	FilePath string

	inner        *fsnotify.Watcher
	absolutePath string

	// out
	signal chan struct{}
	done   chan struct{}
}

// Initialize initializes a ConfWatcher.
func (w *ConfWatcher) Initialize() error {
	var err error
	w.inner, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// use absolute paths so that we can compare event paths
	w.absolutePath, _ = filepath.Abs(w.FilePath)

	// watch the directory, since the file may be moved over by editors
	err = w.inner.Add(filepath.Dir(w.absolutePath))
	if err != nil {
		w.inner.Close()
		return err
	}

	w.signal = make(chan struct{})
	w.done = make(chan struct{})

	go w.run()

	return nil
}

// Close closes a ConfWatcher.
func (w *ConfWatcher) Close() {
	go func() {
		for range w.signal {
		}
	}()
	w.inner.Close()
	<-w.done
}

func (w *ConfWatcher) run() {
	defer close(w.done)

	var lastCalled time.Time

outer:
	for {
		select {
		case event := <-w.inner.Events:
			if time.Since(lastCalled) < minInterval {
				continue
			}

			eventPath, _ := filepath.Abs(event.Name)

			if eventPath != w.absolutePath {
				continue
			}

			if (event.Op&fsnotify.Write) == fsnotify.Write ||
				(event.Op&fsnotify.Create) == fsnotify.Create {
				// wait some additional time to allow the writer to finish
				time.Sleep(10 * time.Millisecond)

				// check that the file still exists
				if _, err := os.Stat(event.Name); err != nil {
					continue
				}

				lastCalled = time.Now()
				w.signal <- struct{}{}
			}

		case <-w.inner.Errors:
			break outer
		}
	}

	close(w.signal)
}

// Watch returns a channel that is called when the configuration file has changed.
func (w *ConfWatcher) Watch() chan struct{} {
	return w.signal
}
