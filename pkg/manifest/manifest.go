// Package manifest describes directory trees as lists of file identities:
// the name, relative path, size and checksum of every file. Manifests are how
// two copies of an addon are compared.
package manifest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ghodss/yaml"
	goversion "github.com/hashicorp/go-version"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/addonsync/pkg/checksum"
	"github.com/sidkik/addonsync/pkg/errors"
	"github.com/sidkik/addonsync/pkg/pathutil"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// FormatVersion is the version of the manifest format written by this
	// binary.
	FormatVersion = "1.0"

	// supportedVersions are the manifest versions that can be read.
	supportedVersions = ">= 1.0, < 2.0"
)

// Manifest is the list of identities of every file in a tree.
type Manifest struct {
	Version   string             `json:"version"`
	Algorithm checksum.Algorithm `json:"algorithm"`

	// Files are sorted by RelativePath.
	Files []FileIdentity `json:"files"`
}

// Builder builds FileIdentities and Manifests. The zero value hashes with
// checksum.DefaultAlgorithm and doesn't exclude anything.
type Builder struct {
	Algorithm checksum.Algorithm

	// Exclude contains doublestar patterns matched against `/` separated
	// paths relative to the root of the tree. A matching directory is
	// skipped entirely.
	Exclude []string

	// Skip is called with the path of every regular file that isn't
	// excluded, before it's hashed. Files it returns true for are left out of
	// the manifest.
	Skip func(path string) bool
}

func (b Builder) algorithm() checksum.Algorithm {
	if b.Algorithm == "" {
		return checksum.DefaultAlgorithm
	}
	return b.Algorithm
}

func (b Builder) excluded(relativePath string) (bool, error) {
	for _, pattern := range b.Exclude {
		match, err := doublestar.Match(pattern, relativePath)
		if err != nil {
			return false, errors.E(errors.PathError, "match exclude", pattern, err)
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

// Build walks `dir` and returns the identities of all the regular files in
// it. Symlinks and other special files are skipped.
func (b Builder) Build(dir string) (Manifest, error) {
	for _, pattern := range b.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return Manifest{}, errors.E(errors.PathError, "match exclude", pattern,
				doublestar.ErrBadPattern)
		}
	}

	dir = filepath.Clean(dir)
	m := Manifest{Version: FormatVersion, Algorithm: b.algorithm()}

	err := afero.Walk(fs, dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return errors.E(errors.ReadError, "walk", path, err)
		}

		if path == dir {
			return nil
		}

		relativePath, err := pathutil.RelativeStrict(path, dir)
		if err != nil {
			return err
		}

		skip, err := b.excluded(relativePath)
		if err != nil {
			return err
		}

		switch {
		case skip && fi.IsDir():
			return filepath.SkipDir
		case skip, !fi.Mode().IsRegular():
			return nil
		case b.Skip != nil && b.Skip(path):
			log.WithField("path", path).Debug("Leaving file out of manifest")
			return nil
		}

		id, err := b.Identity(path, dir)
		if err != nil {
			return err
		}
		m.Files = append(m.Files, id)
		return nil
	})
	if err != nil {
		return Manifest{}, err
	}

	m.sort()
	return m, nil
}

// Verify rebuilds the manifest of `dir` with the algorithm `expected` was
// built with, and returns how the tree differs from it.
func (b Builder) Verify(expected Manifest, dir string) (changed, added, removed []string, err error) {
	b.Algorithm = expected.Algorithm
	actual, err := b.Build(dir)
	if err != nil {
		return nil, nil, nil, errors.WithContext(err, "build manifest")
	}

	changed, added, removed = expected.Diff(actual)
	return changed, added, removed, nil
}

func (m Manifest) sort() {
	sort.Slice(m.Files, func(i, j int) bool {
		return m.Files[i].RelativePath < m.Files[j].RelativePath
	})
}

// ByPath indexes the files by their relative path.
func (m Manifest) ByPath() map[string]FileIdentity {
	files := make(map[string]FileIdentity, len(m.Files))
	for _, f := range m.Files {
		files[f.RelativePath] = f
	}
	return files
}

// Diff returns the relative paths that differ between `m` and `current`.
// Files are compared by size and checksum only.
// * changed files exist in both but have different contents.
// * added files only exist in `current`.
// * removed files only exist in `m`.
func (m Manifest) Diff(current Manifest) (changed, added, removed []string) {
	expected := m.ByPath()
	actual := current.ByPath()

	for path, exp := range expected {
		curr, ok := actual[path]
		switch {
		case !ok:
			removed = append(removed, path)
		case !curr.SameContents(exp):
			changed = append(changed, path)
		}
	}

	for path := range actual {
		if _, ok := expected[path]; !ok {
			added = append(added, path)
		}
	}

	sort.Strings(changed)
	sort.Strings(added)
	sort.Strings(removed)
	return changed, added, removed
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Marshal encodes the manifest as YAML, or as JSON if `asJSON` is set.
func Marshal(m Manifest, asJSON bool) ([]byte, error) {
	if asJSON {
		return json.MarshalIndent(m, "", "  ")
	}
	return yaml.Marshal(m)
}

// Write saves the manifest to `path`. Paths ending in `.json` are written as
// JSON, everything else as YAML.
func Write(path string, m Manifest) error {
	out, err := Marshal(m, isJSON(path))
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, out, 0644); err != nil {
		return errors.E(errors.WriteError, "write manifest", path, err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (Manifest, error) {
	in, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, errors.FileNotFound{Path: path}
		}
		return Manifest{}, errors.E(errors.ReadError, "read manifest", path, err)
	}

	var m Manifest
	if isJSON(path) {
		err = json.Unmarshal(in, &m)
	} else {
		err = yaml.Unmarshal(in, &m)
	}
	if err != nil {
		return Manifest{}, errors.NewFriendlyError(
			"The manifest at %q could not be parsed:\n%s", path, err)
	}

	if err := checkVersion(m.Version); err != nil {
		return Manifest{}, errors.NewFriendlyError(
			"The manifest at %q is incompatible with this version of addonsync: %s",
			path, err)
	}

	if m.Algorithm, err = checksum.ParseAlgorithm(string(m.Algorithm)); err != nil {
		return Manifest{}, errors.WithContext(err, "parse algorithm")
	}

	m.sort()
	return m, nil
}

func checkVersion(raw string) error {
	if raw == "" {
		return errors.New("missing version")
	}

	v, err := goversion.NewVersion(raw)
	if err != nil {
		return errors.WithContext(err, "parse version")
	}

	supported, err := goversion.NewConstraint(supportedVersions)
	if err != nil {
		return errors.WithContext(err, "parse constraint")
	}

	if !supported.Check(v) {
		return errors.New("version %s doesn't satisfy %q", v, supportedVersions)
	}
	return nil
}
