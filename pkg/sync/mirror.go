package sync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/addonsync/pkg/errors"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// CopyTree mirrors every file beneath `sourceDir` into `destDir`, creating
// directories as necessary. Symlinks are followed, so the destination gets
// real copies of the files and directories they point to.
//
// If `overwrite` is false, files that already exist in the destination aren't
// touched, and each one is reported as a WriteError wrapping os.ErrExist.
// The copy continues past failures: the returned error is a
// *multierror.Error listing every file or directory that couldn't be copied,
// including special files and broken or looping symlinks.
// Whatever was copied before a failure stays on disk.
func CopyTree(sourceDir, destDir string, overwrite bool) error {
	root, err := fs.Stat(sourceDir)
	if err != nil {
		return errors.E(errors.ReadError, "read directory", sourceDir, err)
	}

	var copied []string
	err = copyTree(sourceDir, destDir, overwrite, []os.FileInfo{root}, &copied)

	if len(copied) > 0 {
		log.WithFields(log.Fields{
			"src":    sourceDir,
			"dst":    destDir,
			"copied": truncateSlice(copied, 5),
		}).Info("Copied files..")
	}
	return err
}

type sourceEntry struct {
	path string
	info os.FileInfo
}

// copyTree copies `sourceDir` into `destDir`. `parents` holds the
// directories that are currently being copied, starting at the root, and is
// used to detect symlink loops.
func copyTree(sourceDir, destDir string, overwrite bool, parents []os.FileInfo,
	copied *[]string) error {

	entries, err := afero.ReadDir(fs, sourceDir)
	if err != nil {
		return errors.E(errors.ReadError, "read directory", sourceDir, err)
	}

	if err := fs.MkdirAll(destDir, 0755); err != nil {
		return errors.E(errors.WriteError, "make directory", destDir, err)
	}

	var result *multierror.Error
	var dirs, files []sourceEntry
	for _, fi := range entries {
		path := filepath.Join(sourceDir, fi.Name())
		if fi.Mode()&os.ModeSymlink != 0 {
			target, err := fs.Stat(path)
			if err != nil {
				result = multierror.Append(result,
					errors.E(errors.ReadError, "resolve symlink", path, err))
				continue
			}
			fi = target
		}

		switch {
		case fi.IsDir():
			dirs = append(dirs, sourceEntry{path, fi})
		case fi.Mode().IsRegular():
			files = append(files, sourceEntry{path, fi})
		default:
			result = multierror.Append(result, errors.E(errors.ReadError, "copy", path,
				errors.New("not a regular file")))
		}
	}

	for _, dir := range dirs {
		if isParent(dir.info, parents) {
			result = multierror.Append(result,
				errors.E(errors.PathError, "copy", dir.path, errors.ErrSymlinkLoop))
			continue
		}

		err := copyTree(dir.path, filepath.Join(destDir, filepath.Base(dir.path)),
			overwrite, append(parents[:len(parents):len(parents)], dir.info), copied)
		if err != nil {
			result = multierror.Append(result, err)
		}
	}

	for _, file := range files {
		dst := filepath.Join(destDir, filepath.Base(file.path))
		if err := copyFile(file.path, dst, overwrite); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		*copied = append(*copied, dst)
	}
	return result.ErrorOrNil()
}

func isParent(dir os.FileInfo, parents []os.FileInfo) bool {
	for _, parent := range parents {
		if os.SameFile(dir, parent) {
			return true
		}
	}
	return false
}

func copyFile(src, dst string, overwrite bool) error {
	srcFile, err := fs.Open(src)
	if err != nil {
		return errors.E(errors.ReadError, "open source", src, err)
	}
	defer srcFile.Close()

	fileInfo, err := srcFile.Stat()
	if err != nil {
		return errors.E(errors.ReadError, "stat source", src, err)
	}

	// Truncating the destination would wipe the source before it's read.
	if dstInfo, err := fs.Stat(dst); err == nil && os.SameFile(fileInfo, dstInfo) {
		return errors.E(errors.WriteError, "copy", dst, errors.ErrSameFile)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	dstFile, err := fs.OpenFile(dst, flags, fileInfo.Mode().Perm())
	if err != nil {
		if os.IsExist(err) {
			return errors.E(errors.WriteError, "copy", dst, os.ErrExist)
		}
		return errors.E(errors.WriteError, "open destination", dst, err)
	}
	defer dstFile.Close()

	// The mode passed to OpenFile only applies to newly created files.
	if err := fs.Chmod(dst, fileInfo.Mode().Perm()); err != nil {
		return errors.E(errors.WriteError, "set file mode", dst, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.E(errors.WriteError, "copy", dst, err)
	}

	if err := dstFile.Close(); err != nil {
		return errors.E(errors.WriteError, "close destination", dst, err)
	}

	// Change the modification time as the last step so that it doesn't get
	// reset by other file operations.
	if err := fs.Chtimes(dst, fileInfo.ModTime(), fileInfo.ModTime()); err != nil {
		return errors.E(errors.WriteError, "set file modtime", dst, err)
	}
	return nil
}

// truncateSlice limits the slice to `length` entries, and notes how many
// entries were left out.
func truncateSlice(slc []string, length int) []string {
	if len(slc) <= length {
		return slc
	}

	truncated := append([]string{}, slc[:length]...)
	return append(truncated, fmt.Sprintf("... %d more ...", len(slc)-length))
}
