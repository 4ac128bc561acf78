package copy

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

// New creates a new `copy` command.
func New() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "copy SRC DST",
		Short: "Mirror a directory tree into another directory",
		Long: "Copy every file beneath SRC into DST, creating directories as needed.\n\n" +
			"Files that only exist in DST are left alone. When --overwrite=false,\n" +
			"existing files in DST are kept and reported, and the rest of the tree\n" +
			"is still copied.",
		Args: cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args[0], args[1], overwrite); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", true,
		"Replace files that already exist in the destination")
	return cmd
}

func run(src, dst string, overwrite bool) error {
	if err := sync.CopyTree(src, dst, overwrite); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Copied %s to %s\n", src, dst)
	return nil
}
