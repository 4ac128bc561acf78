package config

import (
	"time"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/sidkik/addonsync/pkg/checksum"
	"github.com/sidkik/addonsync/pkg/errors"
)

const (
	// UserConfigPath is the default path to the addonsync user config.
	UserConfigPath = "~/.addonsync.yaml"

	// InitialUserConfigVersion is the first version of the addonsync
	// user config. Config files that do not specify a version
	// will default to this version.
	InitialUserConfigVersion = "v1alpha1"

	// SupportedUserConfigVersion is the supported version of the
	// addonsync user config of the current binary.
	SupportedUserConfigVersion = "v1alpha1"

	// DefaultLockPollInterval is how often locked files are probed when the
	// user config doesn't say otherwise.
	DefaultLockPollInterval = time.Second
)

// defaultExclude are the manifest exclude patterns used when the user config
// doesn't set any.
var defaultExclude = []string{".git", "**/.DS_Store", "**/Thumbs.db"}

// User contains the user's preferences for how addon trees are handled.
type User struct {
	Version string `json:"version,omitempty"`

	// ChecksumAlgorithm is the algorithm used for new manifests.
	ChecksumAlgorithm checksum.Algorithm `json:"checksumAlgorithm,omitempty"`

	// Exclude are the doublestar patterns of paths left out of manifests.
	Exclude []string `json:"exclude,omitempty"`

	// LockPollInterval is a duration string, such as "500ms".
	LockPollInterval string `json:"lockPollInterval,omitempty"`
}

// PollInterval returns the parsed LockPollInterval. ParseUser has already
// validated it, so invalid values fall back to the default.
func (u User) PollInterval() time.Duration {
	interval, err := time.ParseDuration(u.LockPollInterval)
	if err != nil || interval <= 0 {
		return DefaultLockPollInterval
	}
	return interval
}

// DefaultUser returns the config used when the user hasn't written one.
func DefaultUser() User {
	return User{
		Version:           InitialUserConfigVersion,
		ChecksumAlgorithm: checksum.DefaultAlgorithm,
		Exclude:           append([]string{}, defaultExclude...),
		LockPollInterval:  DefaultLockPollInterval.String(),
	}
}

// homedirExpand will be overridden in mock tests
var homedirExpand = homedir.Expand

// ParseUser attempts to parse the User stored in the default path. Fields
// that aren't set in the file keep their defaults, and a missing file
// results in DefaultUser.
func ParseUser() (User, error) {
	path, err := GetUserConfigPath()
	if err != nil {
		return User{}, errors.WithContext(err, "expand config path")
	}

	config := DefaultUser()
	if err := parseVersioned(path, &config, SupportedUserConfigVersion); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return DefaultUser(), nil
		}
		return User{}, errors.WithContext(err, "parse")
	}

	config.ChecksumAlgorithm, err = checksum.ParseAlgorithm(string(config.ChecksumAlgorithm))
	if err != nil {
		return User{}, errors.WithContext(err, "parse")
	}

	if interval, err := time.ParseDuration(config.LockPollInterval); err != nil || interval <= 0 {
		return User{}, errors.NewFriendlyError("The lock poll interval %q in %q "+
			"must be a positive duration, such as \"500ms\" or \"2s\".",
			config.LockPollInterval, path)
	}
	return config, nil
}

// WriteUser writes the given user config to disk.
func WriteUser(cfg User) error {
	cfg.Version = SupportedUserConfigVersion
	path, err := GetUserConfigPath()
	if err != nil {
		return errors.WithContext(err, "expand config path")
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// GetUserConfigPath returns the path to the user's addonsync configuration.
// This path is expanded, so it can be directly passed to file operations.
func GetUserConfigPath() (string, error) {
	return homedirExpand(UserConfigPath)
}
