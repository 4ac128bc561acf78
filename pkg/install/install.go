// Package install installs and removes addons on the local filesystem.
package install

import (
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/sidkik/addonsync/pkg/archive"
	"github.com/sidkik/addonsync/pkg/config"
	"github.com/sidkik/addonsync/pkg/errors"
	"github.com/sidkik/addonsync/pkg/sync"
)

// Install unpacks the archive at `archivePath` into `addonDir`.
//
// The archive is first extracted into a staging directory under
// config.TempRoot, so that a corrupt archive fails before anything in
// `addonDir` is touched. The staged tree is then mirrored into `addonDir`
// with sync.CopyTree, using `overwrite` for existing files. The staging
// directory is always removed.
func Install(archivePath, addonDir string, overwrite bool) error {
	root, err := config.EnsureTempRoot()
	if err != nil {
		return errors.WithContext(err, "prepare staging area")
	}

	stagingDir := filepath.Join(root, uuid.New().String())
	defer func() {
		if err := sync.DeleteTree(stagingDir); err != nil {
			log.WithError(err).WithField("path", stagingDir).Warn(
				"Failed to clean up staging directory")
		}
	}()

	if err := archive.Unpack(archivePath, stagingDir); err != nil {
		return errors.WithContext(err, "stage")
	}

	if err := sync.CopyTree(stagingDir, addonDir, overwrite); err != nil {
		return errors.WithContext(err, "install")
	}

	log.WithFields(log.Fields{
		"archive": archivePath,
		"dst":     addonDir,
	}).Info("Installed addon")
	return nil
}

// Remove deletes the addon installed at `addonDir`. Removing an addon that
// isn't installed succeeds.
func Remove(addonDir string) error {
	if err := sync.DeleteTree(addonDir); err != nil {
		return errors.WithContext(err, "remove")
	}
	return nil
}
