package library

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// reloadDelay lets editors finish writing before the list is re-parsed
const reloadDelay = 250 * time.Millisecond

// Watcher re-parses a local track list whenever the file changes
type Watcher struct {
	path    string
	fs      afero.Fs
	watcher *fsnotify.Watcher
	lists   chan *List
	logger  logrus.FieldLogger
}

// NewWatcher watches the directory holding path, so renames by editors are seen too
func NewWatcher(path string, fs afero.Fs, logger logrus.FieldLogger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{
		path:    filepath.Clean(path),
		fs:      fs,
		watcher: w,
		lists:   make(chan *List, 1),
		logger:  logger.WithField("track_list", path),
	}, nil
}

// Lists delivers freshly parsed lists. Only the newest undelivered list is kept.
func (w *Watcher) Lists() <-chan *List {
	return w.lists
}

// Run selects on watcher channels until ctx is done
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				reload = time.After(reloadDelay)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Error("Track list watcher error")

		case <-reload:
			reload = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	list, err := LoadFile(w.fs, w.path)
	if err != nil {
		w.logger.WithError(err).Warn("Changed track list could not be parsed, keeping the old one")
		return
	}
	for _, warning := range list.Warnings {
		w.logger.Warn(warning)
	}

	select {
	case <-w.lists:
	default:
	}
	w.lists <- list
	w.logger.WithField("tracks", len(list.Tracks)).Info("Track list reloaded")
}
