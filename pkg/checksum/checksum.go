// Package checksum computes content digests of files. The digests are used to
// detect changes between copies of a file, not to authenticate them.
package checksum

import (
	"encoding/hex"
	"hash"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	sha256 "github.com/minio/sha256-simd"
	"github.com/spf13/afero"

	"github.com/sidkik/addonsync/pkg/errors"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// Algorithm names a digest algorithm.
type Algorithm string

const (
	// SHA256 produces 64 hex characters.
	SHA256 Algorithm = "sha256"

	// XXHash produces 16 hex characters. It's much faster than SHA256 and
	// is good enough for change detection.
	XXHash Algorithm = "xxhash"
)

// DefaultAlgorithm is used by HashFile.
const DefaultAlgorithm = SHA256

// ParseAlgorithm converts a user supplied name into an Algorithm. The empty
// string selects DefaultAlgorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch alg := Algorithm(strings.ToLower(strings.TrimSpace(name))); alg {
	case "":
		return DefaultAlgorithm, nil
	case SHA256, XXHash:
		return alg, nil
	default:
		return "", errors.NewFriendlyError(
			"Unknown checksum algorithm %q. Supported algorithms are %q and %q.",
			name, SHA256, XXHash)
	}
}

func (alg Algorithm) newHash() (hash.Hash, error) {
	switch alg {
	case SHA256:
		return sha256.New(), nil
	case XXHash:
		return xxhash.New(), nil
	default:
		return nil, errors.New("unsupported checksum algorithm %q", alg)
	}
}

// HashFile returns the lowercase hex digest of the file at the given path
// using DefaultAlgorithm, along with the number of bytes hashed.
func HashFile(path string) (string, int64, error) {
	return HashFileWith(DefaultAlgorithm, path)
}

// HashFileWith is like HashFile, but uses the given algorithm. The file is
// streamed through the hash, and the returned size is the number of bytes
// that were hashed, so the two always describe the same read.
func HashFileWith(alg Algorithm, path string) (string, int64, error) {
	hasher, err := alg.newHash()
	if err != nil {
		return "", 0, errors.E(errors.ReadError, "hash", path, err)
	}

	f, err := fs.Open(path)
	if err != nil {
		return "", 0, errors.E(errors.ReadError, "hash", path, errors.WithContext(err, "open"))
	}
	defer f.Close()

	size, err := io.Copy(hasher, f)
	if err != nil {
		return "", 0, errors.E(errors.ReadError, "hash", path, errors.WithContext(err, "read"))
	}

	// A writer that's still appending to the file would leave us with a
	// digest of some prefix of it.
	if fi, err := f.Stat(); err == nil && fi.Size() != size {
		return "", 0, errors.E(errors.ReadError, "hash", path, errors.ErrFileChanged)
	}

	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}
