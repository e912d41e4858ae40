package resolver

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"manifestctl/pkg/tasks"
)

// Watcher observes the files it is given (the files that could feed a
// resolution, e.g. the base config file and overlay candidates) and invokes onChange
// when any of them is modified. It never mutates a live config in place
// — it only calls back so the caller can re-resolve and trigger a
// rebuild.
type Watcher struct {
	log     *logrus.Entry
	tasks   *tasks.Manager
	paths   []string
	onEvent func()
}

// NewWatcher builds a Watcher over the given files. Non-existent paths
// are ignored rather than erroring, since an overlay file is optional.
func NewWatcher(log *logrus.Entry, paths []string, onEvent func()) *Watcher {
	return &Watcher{
		log:     log,
		tasks:   tasks.NewManager(),
		paths:   paths,
		onEvent: onEvent,
	}
}

// Start begins watching in the background. Calling Start again restarts
// the watch loop (e.g. after the overlay path changes) without leaking
// the previous fsnotify.Watcher.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, p := range w.paths {
		if p == "" {
			continue
		}
		if err := fsw.Add(filepath.Dir(p)); err != nil {
			w.log.WithField("path", p).WithError(err).Warn("could not watch config file directory")
		}
	}

	watchSet := map[string]bool{}
	for _, p := range w.paths {
		watchSet[p] = true
	}

	w.tasks.Start(func(stop chan struct{}) {
		defer fsw.Close()
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if watchSet[ev.Name] {
					w.onEvent()
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.log.WithError(err).Warn("config watcher error")
			}
		}
	})

	return nil
}

// Stop ends the watch loop.
func (w *Watcher) Stop() {
	w.tasks.Stop()
}
