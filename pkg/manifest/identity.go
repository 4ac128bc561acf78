package manifest

import (
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/addonsync/pkg/checksum"
	"github.com/sidkik/addonsync/pkg/pathutil"
)

// FileIdentity describes the contents of a single file at the moment it was
// inspected. It's a value: comparing two identities tells whether the files
// they were built from had the same contents at the same relative location.
type FileIdentity struct {
	// Filename is the base name of the file.
	Filename string `json:"filename"`

	// RelativePath is the path of the file relative to the base directory the
	// identity was built against, always separated with `/`.
	RelativePath string `json:"relativePath"`

	// FileSize is the number of bytes that were hashed.
	FileSize int64 `json:"fileSize"`

	// Checksum is the lowercase hex digest of the file contents.
	Checksum string `json:"checksum"`
}

// SameContents returns whether the two identities describe the same bytes.
func (id FileIdentity) SameContents(other FileIdentity) bool {
	return id.FileSize == other.FileSize && id.Checksum == other.Checksum
}

// BuildIdentity hashes the file at `filePath` with the default algorithm and
// describes it relative to `basePath`.
//
// It doesn't check whether the file is locked. Callers that care should use
// lockprobe first so that they can decide when to retry.
func BuildIdentity(filePath, basePath string) (FileIdentity, error) {
	return Builder{}.Identity(filePath, basePath)
}

// Identity is like BuildIdentity, but uses the Builder's algorithm.
func (b Builder) Identity(filePath, basePath string) (FileIdentity, error) {
	sum, size, err := checksum.HashFileWith(b.algorithm(), filePath)
	if err != nil {
		return FileIdentity{}, err
	}

	relativePath := pathutil.Relative(filePath, basePath)
	if basePath != "" && !strings.HasPrefix(filePath, basePath) {
		log.WithFields(log.Fields{
			"path":     filePath,
			"basePath": basePath,
		}).Warn("File isn't within the base directory. Using its full path in the manifest.")
	}

	return FileIdentity{
		Filename:     path.Base(pathutil.ToSlash(filePath)),
		RelativePath: relativePath,
		FileSize:     size,
		Checksum:     sum,
	}, nil
}
