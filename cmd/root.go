package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	configCmd "github.com/sidkik/addonsync/cmd/config"
	copyCmd "github.com/sidkik/addonsync/cmd/copy"
	deleteCmd "github.com/sidkik/addonsync/cmd/delete"
	"github.com/sidkik/addonsync/cmd/identity"
	installCmd "github.com/sidkik/addonsync/cmd/install"
	manifestCmd "github.com/sidkik/addonsync/cmd/manifest"
	"github.com/sidkik/addonsync/cmd/pack"
	"github.com/sidkik/addonsync/cmd/probe"
	"github.com/sidkik/addonsync/cmd/remove"
	"github.com/sidkik/addonsync/cmd/renameext"
	"github.com/sidkik/addonsync/cmd/temproot"
	"github.com/sidkik/addonsync/cmd/unpack"
	"github.com/sidkik/addonsync/cmd/util"
	"github.com/sidkik/addonsync/cmd/verify"
	"github.com/sidkik/addonsync/cmd/version"
	"github.com/sidkik/addonsync/cmd/watch"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "ADDONSYNC_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	rootCmd := &cobra.Command{
		Use:          "addonsync",
		Short:        "Mirror, package, and verify addon directory trees.",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		configCmd.New(),
		copyCmd.New(),
		deleteCmd.New(),
		identity.New(),
		installCmd.New(),
		manifestCmd.New(),
		pack.New(),
		probe.New(),
		remove.New(),
		renameext.New(),
		temproot.New(),
		unpack.New(),
		verify.New(),
		version.New(),
		watch.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
