package cfg

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// WatchError reports a problem seen while watching the configuration
// file. Fatal is true when the watcher itself has stopped; a reloaded file
// that fails to parse is reported with Fatal false and the watcher keeps
// running, so an edit-in-progress does not crash the manager mid-session.
type WatchError struct {
	Err   error
	Fatal bool
}

// Watcher reloads a configuration file on every write and reports the
// freshly parsed Config (or a parse error) to the caller.
type Watcher struct {
	ch chan bool
}

// Watch spawns a goroutine that watches path for writes and reloads the
// configuration, sending each new Config on confch. A parse error is sent
// on errch as a non-fatal WatchError. Fatal watcher failures (the file
// disappearing, the underlying fsnotify watcher closing) are also reported
// on errch and end the goroutine.
func Watch(path string, confch chan Config, errch chan WatchError) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	stopch := make(chan bool, 1)
	go func() {
		defer fsw.Close()
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					errch <- WatchError{Err: fmt.Errorf("config watcher closed"), Fatal: true}
					return
				}
				switch event.Op {
				case fsnotify.Remove, fsnotify.Rename:
					errch <- WatchError{Err: fmt.Errorf("config file gone: %s", path), Fatal: true}
					return
				case fsnotify.Write, fsnotify.Create:
					conf, err := Load(path)
					if err != nil {
						errch <- WatchError{Err: err, Fatal: false}
						continue
					}
					confch <- conf
				}
			case err, ok := <-fsw.Errors:
				errch <- WatchError{Err: err, Fatal: !ok}
				if !ok {
					return
				}
			case <-stopch:
				return
			}
		}
	}()

	return &Watcher{ch: stopch}, nil
}

// Stop ends the watcher goroutine.
func (w *Watcher) Stop() {
	w.ch <- true
}
