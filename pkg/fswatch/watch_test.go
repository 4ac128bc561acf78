package fswatch

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/addonsync/pkg/errors"
)

func TestGetPathsToWatch(t *testing.T) {
	fs = afero.NewMemMapFs()
	defer func() { fs = afero.NewOsFs() }()

	dirs := []string{"/addons/Bagnon", "/addons/Bagnon/core", "/addons/Bagnon/core/deep",
		"/addons/Bagnon/locale"}
	files := []string{"/addons/Bagnon/Bagnon.toc", "/addons/Bagnon/core/bags.lua",
		"/addons/Bagnon/core/deep/item.lua"}
	for _, dir := range dirs {
		assert.NoError(t, fs.MkdirAll(dir, 0755))
	}
	for _, file := range files {
		assert.NoError(t, afero.WriteFile(fs, file, []byte("testfile"), 0644))
	}

	paths, err := getPathsToWatch("/addons/Bagnon")
	assert.NoError(t, err)

	// Sort for consistency.
	sort.Strings(dirs)
	sort.Strings(paths)
	assert.Equal(t, dirs, paths)

	_, err = getPathsToWatch("/addons/missing")
	assert.Equal(t, errors.FileNotFound{Path: "/addons/missing"}, err)

	_, err = getPathsToWatch("/addons/Bagnon/Bagnon.toc")
	assert.Error(t, err)
}

func TestCombineUpdates(t *testing.T) {
	t.Parallel()

	updates := make(chan fsnotify.Event, 1024)
	addEvents := func(num int) {
		for i := 0; i < num; i++ {
			updates <- fsnotify.Event{Op: fsnotify.Write}
		}
	}

	// Seed with events.
	numUpdates := 100
	addEvents(numUpdates)
	combined := combineUpdates(updates, func(string) {
		t.Error("unexpected create")
	})

	// Assert that the events are being combined.
	numCombined := countEvents(combined)
	assert.True(t, numCombined < numUpdates,
		"expected less combined events (%d) than %d", numCombined, numUpdates)

	// Add more events.
	addEvents(100)
	<-combined
}

func TestCombineUpdatesCreate(t *testing.T) {
	t.Parallel()

	updates := make(chan fsnotify.Event, 2)
	created := make(chan string, 2)
	combined := combineUpdates(updates, func(path string) {
		created <- path
	})

	updates <- fsnotify.Event{Name: "/addons/new.lua", Op: fsnotify.Write}
	updates <- fsnotify.Event{Name: "/addons/newdir", Op: fsnotify.Create}

	assert.Equal(t, "/addons/newdir", <-created)
	<-combined
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "core"), 0755))

	events, err := Watch(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "core", "bags.lua"), []byte("bags"), 0644))
	waitForEvent(t, events)

	// Directories created after the watch started are watched too.
	newDir := filepath.Join(dir, "locale")
	require.NoError(t, os.Mkdir(newDir, 0755))
	waitForEvent(t, events)

	// Give the watcher a moment to add the new directory, then drain
	// anything left over from the previous changes.
	time.Sleep(100 * time.Millisecond)
	drain(events)

	require.NoError(t, os.WriteFile(filepath.Join(newDir, "enUS.lua"), []byte("L = {}"), 0644))
	waitForEvent(t, events)
}

func waitForEvent(t *testing.T, events chan struct{}) {
	select {
	case <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func drain(events chan struct{}) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}

func countEvents(c chan struct{}) (n int) {
	// Block until the first event.
	<-c
	n++

	// Count the number of events until there hasn't been any new events in 500
	// milliseconds.
	for {
		select {
		case <-c:
			n++
		case <-time.After(500 * time.Millisecond):
			return n
		}
	}
}
