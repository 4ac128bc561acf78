package temproot

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/cmd/util"
	"github.com/sidkik/addonsync/pkg/config"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `temp-root` command.
func New() *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "temp-root",
		Short: "Print the scratch directory used for staging",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(create); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().BoolVar(&create, "create", false,
		"Create the directory if it doesn't exist")
	return cmd
}

func run(create bool) error {
	root := config.TempRoot()
	if create {
		var err error
		if root, err = config.EnsureTempRoot(); err != nil {
			return err
		}
	}
	fmt.Fprintln(stdout, root)
	return nil
}
