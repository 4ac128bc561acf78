package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sidkik/addonsync/pkg/errors"
)

// fs is used for mock tests. It will be overridden by afero.NewMemMapFs()
// in the tests.
var fs = afero.NewOsFs()

// tempDirName is the directory reserved for addonsync within the OS temp
// directory.
const tempDirName = "addonsync"

// tempDir will be overridden in mock tests.
var tempDir = os.TempDir

// TempRoot returns the scratch directory that staged installs and other
// temporary trees are created in. The path is stable for the lifetime of the
// process, but the directory isn't guaranteed to exist. Use EnsureTempRoot to
// create it.
func TempRoot() string {
	return filepath.Join(tempDir(), tempDirName)
}

// EnsureTempRoot creates TempRoot if it doesn't already exist, and returns its
// path.
func EnsureTempRoot() (string, error) {
	root := TempRoot()
	if err := fs.MkdirAll(root, 0755); err != nil {
		return "", errors.E(errors.WriteError, "make temp root", root, err)
	}
	return root, nil
}
