package util

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/sidkik/addonsync/pkg/config"
	"github.com/sidkik/addonsync/pkg/errors"
	"github.com/sidkik/addonsync/pkg/manifest"
)

// Mocked for unit testing.
var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// HandleFatalError prints the error and exits. Errors from tree operations
// are listed one per line.
func HandleFatalError(err error) {
	log.WithError(err).Debug("Fatal error")
	fmt.Fprintln(stderr, FormatError(err))
	exit(1)
}

// FormatError returns the message shown to the user for `err`.
func FormatError(err error) string {
	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		lines := []string{fmt.Sprintf("%d errors occurred:", len(merr.Errors))}
		for _, err := range merr.Errors {
			lines = append(lines, "\t* "+errors.GetPrintableMessage(err))
		}
		return strings.Join(lines, "\n")
	}
	return errors.GetPrintableMessage(err)
}

// HandlePanic logs the panic's stack trace before exiting. It must be
// deferred.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("panic", r).Error("Unexpected crash. Please report this bug.")
		fmt.Fprintln(stderr, string(debug.Stack()))
		exit(2)
	}
}

// ParseUserConfig reads the user config, exiting if it's invalid.
func ParseUserConfig() config.User {
	cfg, err := config.ParseUser()
	if err != nil {
		HandleFatalError(errors.WithContext(err, "parse user config"))
	}
	return cfg
}

// NewBuilder returns a manifest builder configured according to the user
// config.
func NewBuilder(cfg config.User) manifest.Builder {
	return manifest.Builder{
		Algorithm: cfg.ChecksumAlgorithm,
		Exclude:   cfg.Exclude,
	}
}
