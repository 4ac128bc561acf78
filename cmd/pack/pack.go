package pack

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

// New creates a new `pack` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "pack ARCHIVE FILE...",
		Short: "Bundle files into a zip archive",
		Long: "Bundle the given files into a zip archive at ARCHIVE. Each file is\n" +
			"stored under its base name, so no two files may share a name.\n" +
			"An existing archive is replaced.",
		Args: cobra.MinimumNArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args[0], args[1:]); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func run(archivePath string, files []string) error {
	if err := archive.Pack(files, archivePath); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Packed %d files into %s\n", len(files), archivePath)
	return nil
}
