// Package archive packs loose files into zip archives for distribution, and
// unpacks them again.
package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/saracen/fastzip"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/addonsync/pkg/errors"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// Pack creates a zip archive at `archivePath` containing the files in
// `filesToPack`, in order. Each file is stored under its base name, so the
// directory structure of the inputs is flattened.
//
// Every input must be a regular file, and no two inputs may share a base
// name. The archive is written to a temporary file next to `archivePath` and
// only moved into place once it's complete, so a failed Pack never leaves a
// partial archive behind. An existing archive at `archivePath` is replaced.
func Pack(filesToPack []string, archivePath string) error {
	infos, err := validate(filesToPack)
	if err != nil {
		return err
	}

	tmpPath := filepath.Join(filepath.Dir(archivePath),
		"."+filepath.Base(archivePath)+"."+uuid.New().String())
	if err := writeArchive(tmpPath, filesToPack, infos); err != nil {
		if rmErr := fs.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.WithError(rmErr).WithField("path", tmpPath).Warn(
				"Failed to clean up partial archive")
		}
		return errors.E(errors.PackageError, "pack", archivePath, err)
	}

	if err := fs.Rename(tmpPath, archivePath); err != nil {
		_ = fs.Remove(tmpPath)
		return errors.E(errors.PackageError, "move archive into place", archivePath, err)
	}

	log.WithFields(log.Fields{
		"archive": archivePath,
		"files":   len(filesToPack),
	}).Info("Packed archive")
	return nil
}

func validate(filesToPack []string) ([]os.FileInfo, error) {
	if len(filesToPack) == 0 {
		return nil, errors.E(errors.PackageError, "pack", "", errors.New("no files to pack"))
	}

	var infos []os.FileInfo
	names := map[string]string{}
	for _, path := range filesToPack {
		fi, err := fs.Stat(path)
		if err != nil {
			return nil, errors.E(errors.PackageError, "stat", path, err)
		}

		if !fi.Mode().IsRegular() {
			return nil, errors.E(errors.PackageError, "pack", path,
				errors.New("not a regular file"))
		}

		name := filepath.Base(path)
		if other, ok := names[name]; ok {
			return nil, errors.E(errors.PackageError, "pack", path,
				errors.New("%q has the same name", other))
		}
		names[name] = path
		infos = append(infos, fi)
	}
	return infos, nil
}

func writeArchive(path string, filesToPack []string, infos []os.FileInfo) error {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return errors.WithContext(err, "create archive")
	}
	defer f.Close()

	archive := zip.NewWriter(f)
	defer func() { _ = archive.Close() }()

	archive.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})

	for i, fileName := range filesToPack {
		if err := createZipFileEntry(archive, fileName, infos[i]); err != nil {
			return errors.WithContext(err, fileName)
		}
	}

	// Close explicitly so that flush errors aren't lost. The deferred
	// closes are no-ops afterwards.
	if err := archive.Close(); err != nil {
		return errors.WithContext(err, "finish archive")
	}
	if err := f.Close(); err != nil {
		return errors.WithContext(err, "close archive")
	}
	return nil
}

func createZipFileEntry(archive *zip.Writer, fileName string, fi os.FileInfo) error {
	fh, err := zip.FileInfoHeader(fi)
	if err != nil {
		return err
	}
	fh.Name = filepath.Base(fileName)
	fh.Method = zip.Deflate
	// Set EFS flag to indicate that filenames and comments are UTF-8 encoded
	fh.Flags |= 0x800

	fw, err := archive.CreateHeader(fh)
	if err != nil {
		return err
	}

	file, err := fs.Open(fileName)
	if err != nil {
		return err
	}

	_, err = io.Copy(fw, file)
	_ = file.Close()
	return err
}

// Unpack extracts the archive at `archivePath` into `extractPath`, recreating
// the directory structure stored in the archive. `extractPath` is created if
// it doesn't exist. Entries that would be written outside of `extractPath`
// are rejected.
//
// Extraction works on the real filesystem.
func Unpack(archivePath, extractPath string) error {
	if err := os.MkdirAll(extractPath, 0755); err != nil {
		return errors.E(errors.UnpackError, "make extract directory", extractPath, err)
	}

	extractor, err := fastzip.NewExtractor(archivePath, extractPath,
		fastzip.WithExtractorConcurrency(1))
	if err != nil {
		return errors.E(errors.UnpackError, "open archive", archivePath, err)
	}
	defer extractor.Close()

	if err := extractor.Extract(context.Background()); err != nil {
		return errors.E(errors.UnpackError, "extract", archivePath, err)
	}

	log.WithFields(log.Fields{
		"archive": archivePath,
		"dst":     extractPath,
	}).Info("Unpacked archive")
	return nil
}
