package remove

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/cmd/util"
	installer "github.com/sidkik/addonsync/pkg/install"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `remove` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "remove DIR",
		Short: "Remove an installed addon",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args[0]); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func run(addonDir string) error {
	if err := installer.Remove(addonDir); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Removed %s\n", addonDir)
	return nil
}
