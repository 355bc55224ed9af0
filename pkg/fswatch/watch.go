package fswatch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/tagmirror/pkg/errors"
)

var fs = afero.NewOsFs()

// Watcher notifies about changes to a set of files.
type Watcher struct {
	// Events receives a value whenever a watched file changes. Changes that
	// happen before the previous event is consumed are combined.
	Events chan struct{}

	watcher *fsnotify.Watcher
}

// Watch watches the given files. Only changes to the files themselves
// trigger events, even though their parent directories are watched so that
// files that are replaced rather than written in place are noticed.
func Watch(paths ...string) (*Watcher, error) {
	files, dirs, err := getPathsToWatch(paths)
	if err != nil {
		return nil, errors.WithContext(err, "get paths")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			// Close the watcher so that we release the file handlers for the
			// previously added paths.
			if err := watcher.Close(); err != nil {
				log.WithError(err).Warn("Failed to close file watcher")
			}

			return nil, errors.WithContext(err, fmt.Sprintf("watch %q", dir))
		}
	}

	go func() {
		for err := range watcher.Errors {
			log.WithError(err).Warn("File watcher error")
		}
	}()

	return &Watcher{
		Events:  combineUpdates(watcher.Events, files),
		watcher: watcher,
	}, nil
}

// Close stops watching. The Events channel is closed once all pending
// events have been dropped.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func combineUpdates(updates <-chan fsnotify.Event, files map[string]struct{}) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		defer close(combined)
		for event := range updates {
			if _, ok := files[filepath.Clean(event.Name)]; !ok {
				continue
			}

			log.WithField("event", event.String()).Debug("Watched file changed")
			select {
			case combined <- struct{}{}:
			default:
			}
		}
	}()
	return combined
}

// getPathsToWatch returns the cleaned set of files to report changes for,
// and the directories that contain them.
func getPathsToWatch(paths []string) (files map[string]struct{}, dirs []string, err error) {
	files = map[string]struct{}{}
	seenDirs := map[string]struct{}{}
	for _, path := range paths {
		path = filepath.Clean(path)
		fi, err := fs.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil, errors.FileNotFound{Path: path}
			}
			return nil, nil, errors.WithContext(err, "stat")
		}

		if fi.IsDir() {
			return nil, nil, errors.New(fmt.Sprintf("%q is a directory", path))
		}

		files[path] = struct{}{}
		dir := filepath.Dir(path)
		if _, ok := seenDirs[dir]; !ok {
			seenDirs[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}
	return files, dirs, nil
}
