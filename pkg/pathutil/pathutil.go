// Package pathutil converts file paths into the forward-slash relative form
// stored in manifests.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/sidkik/addonsync/pkg/errors"
)

// ToSlash rewrites both Windows and host separators to `/`, regardless of the
// platform we're running on.
func ToSlash(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
}

// Relative returns the part of `path` below `basePath`, with all separators
// rewritten to `/`. `basePath` is expected to be a literal prefix of `path`; it's
// removed along with the separator left at the start of the remainder.
//
// If `basePath` isn't a prefix of `path`, the result is `path` itself with its
// separators rewritten. Use RelativeStrict to treat that case as an error.
func Relative(path, basePath string) string {
	if basePath == "" || !strings.HasPrefix(path, basePath) {
		return ToSlash(path)
	}
	return strings.TrimLeft(ToSlash(strings.TrimPrefix(path, basePath)), "/")
}

// IsUnder returns whether `path` is `basePath` or a descendant of it. The check
// is done on whole path segments, so `/a/bc` isn't under `/a/b`.
func IsUnder(path, basePath string) bool {
	path = strings.TrimRight(ToSlash(path), "/")
	basePath = strings.TrimRight(ToSlash(basePath), "/")
	if basePath == "" {
		return true
	}
	return path == basePath || strings.HasPrefix(path, basePath+"/")
}

// RelativeStrict is like Relative, but fails with a PathError if `path` isn't
// within `basePath`.
func RelativeStrict(path, basePath string) (string, error) {
	if !IsUnder(path, basePath) {
		return "", errors.E(errors.PathError, "relative path", path,
			errors.New("not within %q", basePath))
	}

	relative := strings.TrimPrefix(ToSlash(path), strings.TrimRight(ToSlash(basePath), "/"))
	return strings.TrimLeft(relative, "/"), nil
}
