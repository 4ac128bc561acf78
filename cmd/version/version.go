package version

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/pkg/manifest"
	"github.com/sidkik/addonsync/pkg/version"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of addonsync.",
		Long: "Print the release version of addonsync, and the manifest format\n" +
			"version it writes.",
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			run()
		},
	}
}

func run() {
	local := version.Version
	if !version.IsRelease() {
		local += " (development build)"
	}
	fmt.Fprintf(stdout, "local version:   %s\n", local)
	fmt.Fprintf(stdout, "manifest format: %s\n", manifest.FormatVersion)
}
