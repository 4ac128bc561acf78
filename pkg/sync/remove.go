package sync

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/addonsync/pkg/errors"
)

// DeleteTree removes `path` and everything beneath it. Deleting a path that
// doesn't exist succeeds. If `path` is a symlink, only the link is removed,
// even if it's dangling.
func DeleteTree(path string) error {
	if _, err := lstat(path); os.IsNotExist(err) {
		log.WithField("path", path).Debug("Nothing to delete")
		return nil
	}

	if err := fs.RemoveAll(path); err != nil {
		return errors.E(errors.WriteError, "delete tree", path, err)
	}
	log.WithField("path", path).Info("Deleted tree")
	return nil
}

// lstat is like fs.Stat, but doesn't follow symlinks when the filesystem
// supports them.
func lstat(path string) (os.FileInfo, error) {
	if lstater, ok := fs.(afero.Lstater); ok {
		fi, _, err := lstater.LstatIfPossible(path)
		return fi, err
	}
	return fs.Stat(path)
}

// RenameExtension renames every regular file beneath `dir` that ends in
// `fromExt` so that it ends in `toExt` instead. The leading dot of either
// extension is optional, and `fromExt` is matched case-insensitively.
//
// Files whose new name is already taken aren't renamed. Like CopyTree, the
// rename continues past failures and returns them all in a
// *multierror.Error.
func RenameExtension(dir, fromExt, toExt string) error {
	fromExt = normalizeExtension(fromExt)
	toExt = normalizeExtension(toExt)
	if fromExt == "" {
		return errors.E(errors.PathError, "rename extension", dir,
			errors.New("empty source extension"))
	}

	var toRename []string
	err := afero.Walk(fs, dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return errors.E(errors.ReadError, "walk", path, err)
		}

		name := fi.Name()
		if fi.Mode().IsRegular() && len(name) > len(fromExt) &&
			strings.HasSuffix(strings.ToLower(name), strings.ToLower(fromExt)) {
			toRename = append(toRename, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	var result *multierror.Error
	var renamed []string
	for _, path := range toRename {
		target := path[:len(path)-len(fromExt)] + toExt
		if target == path {
			continue
		}

		if err := rename(path, target); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		renamed = append(renamed, filepath.Base(target))
	}

	if len(renamed) > 0 {
		log.WithFields(log.Fields{
			"dir":     dir,
			"renamed": truncateSlice(renamed, 5),
		}).Info("Renamed files..")
	}
	return result.ErrorOrNil()
}

func rename(path, target string) error {
	if _, err := fs.Stat(target); err == nil {
		return errors.E(errors.WriteError, "rename", target, os.ErrExist)
	}

	if err := fs.Rename(path, target); err != nil {
		return errors.E(errors.WriteError, "rename", path, err)
	}
	return nil
}

func normalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
