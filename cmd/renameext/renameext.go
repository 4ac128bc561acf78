package renameext

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/cmd/util"
	"github.com/sidkik/addonsync/pkg/sync"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `rename-ext` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "rename-ext DIR FROM TO",
		Short: "Rename the extension of every matching file beneath a directory",
		Long: "Rename every file beneath DIR that ends in FROM so that it ends in TO.\n" +
			"The leading dot is optional, and FROM is matched case-insensitively.\n\n" +
			"For example, `addonsync rename-ext Bagnon .lua.disabled .lua`\n" +
			"re-enables a disabled addon.",
		Args: cobra.ExactArgs(3),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args[0], args[1], args[2]); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func run(dir, fromExt, toExt string) error {
	if err := sync.RenameExtension(dir, fromExt, toExt); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Renamed %q files in %s to %q\n", fromExt, dir, toExt)
	return nil
}
