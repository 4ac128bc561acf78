// Package fswatch notifies callers when anything within an addon tree
// changes.
package fswatch

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/addonsync/pkg/errors"
)

var fs = afero.NewOsFs()

// Watch watches for changes to any file beneath `dir`. It sends an event on
// the returned channel whenever something changes. Bursts of changes are
// coalesced, so a single event may stand for many changes. Directories
// created after Watch returns are watched as well.
func Watch(dir string) (chan struct{}, error) {
	pathsToWatch, err := getPathsToWatch(dir)
	if err != nil {
		return nil, errors.WithContext(err, "get paths")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}

	for _, path := range pathsToWatch {
		if err := watcher.Add(path); err != nil {
			// Close the watcher so that we release the file handlers for the
			// previously added paths.
			if err := watcher.Close(); err != nil {
				log.WithError(err).Warn("Failed to close file watcher")
			}

			return nil, errors.WithContext(err, fmt.Sprintf("watch %q", path))
		}
	}

	go func() {
		for err := range watcher.Errors {
			log.WithError(err).Warn("File watcher error")
		}
	}()

	watchNew := func(path string) {
		isDir, err := afero.IsDir(fs, path)
		if err != nil || !isDir {
			return
		}

		// The directory may already have contents by the time it's watched,
		// but the event that's about to be sent covers them.
		subpaths, err := getPathsToWatch(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("Failed to watch new directory")
			return
		}
		for _, subpath := range subpaths {
			if err := watcher.Add(subpath); err != nil {
				log.WithError(err).WithField("path", subpath).Warn("Failed to watch new directory")
			}
		}
	}
	return combineUpdates(watcher.Events, watchNew), nil
}

func combineUpdates(updates <-chan fsnotify.Event, onCreate func(path string)) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		for event := range updates {
			if event.Has(fsnotify.Create) {
				onCreate(event.Name)
			}

			select {
			case combined <- struct{}{}:
			default:
			}
		}
	}()
	return combined
}

// getPathsToWatch returns `dir` and all of its subdirectories. fsnotify
// doesn't watch directories recursively, but a watched directory reports
// changes to the files directly within it.
func getPathsToWatch(dir string) (paths []string, err error) {
	fi, err := fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: dir}
		}
		return nil, errors.WithContext(err, "stat")
	}

	if !fi.IsDir() {
		return nil, errors.NewFriendlyError("%q isn't a directory. Only addon "+
			"directories can be watched.", dir)
	}

	err = afero.Walk(fs, dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return errors.WithContext(err, "walk error")
		}

		if fi.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}
