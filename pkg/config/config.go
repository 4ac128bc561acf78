package config

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"

	"github.com/sidkik/addonsync/pkg/errors"
)

// parseErrTemplate is shown when a config file isn't valid YAML, or doesn't
// match the expected schema. The YAML library doesn't say which field was
// wrong in a structured way, so the parser's message is passed on as is.
const parseErrTemplate = "The addonsync config at %q could not be parsed.\n" +
	"Check that every field has the right type, and that there are no " +
	"misspelled or unknown fields.\n\n" +
	"The parser reported:\n" +
	"%s"

// versionHeader is decoded before the rest of a config file.
type versionHeader struct {
	Version string `json:"version"`
}

type incompatibleVersionError struct {
	path, exp, actual string
}

func (err incompatibleVersionError) Error() string {
	return err.FriendlyMessage()
}

func (err incompatibleVersionError) FriendlyMessage() string {
	return fmt.Sprintf("The configuration file %q is incompatible "+
		"with this version of addonsync.\n"+
		"Expected version %q, but got %q.", err.path, err.exp, err.actual)
}

// parseVersioned decodes the YAML file at `path` into `out`. A missing
// `version` field is read as `expVersion`.
//
// The version is checked before unknown fields are rejected, so that a file
// written by a newer release reports the version mismatch rather than the
// fields this release doesn't know about.
func parseVersioned(path string, out interface{}, expVersion string) error {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileNotFound{Path: path}
		}
		return errors.WithContext(err, "read file")
	}

	var header versionHeader
	if err := yaml.Unmarshal(contents, &header); err != nil {
		return errors.NewFriendlyError(parseErrTemplate, path, err)
	}

	if header.Version != "" && header.Version != expVersion {
		return incompatibleVersionError{path, expVersion, header.Version}
	}

	if err := yaml.UnmarshalStrict(contents, out, yaml.DisallowUnknownFields); err != nil {
		return errors.NewFriendlyError(parseErrTemplate, path, err)
	}
	return nil
}
