package ui

import (
	"io"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// DocWatcher reports changes to one document. The parent directory is
// watched because saves replace the file by renaming over it.
type DocWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
	logger  *log.Logger
}

// WatchDocument starts watching path. A nil logger discards diagnostics.
func WatchDocument(path string, logger *log.Logger) (*DocWatcher, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}
	dw := &DocWatcher{
		path:    filepath.Clean(path),
		watcher: w,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
	go dw.loop()
	return dw, nil
}

// Changes signals at most one pending change at a time.
func (dw *DocWatcher) Changes() <-chan struct{} {
	return dw.changes
}

// Close stops watching and closes Changes.
func (dw *DocWatcher) Close() error {
	err := dw.watcher.Close()
	<-dw.done
	return err
}

func (dw *DocWatcher) loop() {
	defer close(dw.done)
	defer close(dw.changes)
	for {
		select {
		case evt, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != dw.path {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case dw.changes <- struct{}{}:
			default:
			}
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.logger.Printf("watcher: %v", err)
		}
	}
}
