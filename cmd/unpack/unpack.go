package unpack

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/cmd/util"
	"github.com/sidkik/addonsync/pkg/archive"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `unpack` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack ARCHIVE DIR",
		Short: "Extract a zip archive into a directory",
		Args:  cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args[0], args[1]); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func run(archivePath, dir string) error {
	if err := archive.Unpack(archivePath, dir); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Extracted %s into %s\n", archivePath, dir)
	return nil
}
