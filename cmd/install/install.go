package install

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

// New creates a new `install` command.
func New() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "install ARCHIVE DIR",
		Short: "Install an addon archive into a directory",
		Long: "Install the addon archive at ARCHIVE into DIR.\n\n" +
			"The archive is extracted into a staging directory first, so a corrupt\n" +
			"archive doesn't touch DIR. The staged files are then copied into DIR.",
		Args: cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args[0], args[1], overwrite); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", true,
		"Replace files that already exist in the addon directory")
	return cmd
}

func run(archivePath, addonDir string, overwrite bool) error {
	if err := installer.Install(archivePath, addonDir, overwrite); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Installed %s into %s\n", archivePath, addonDir)
	return nil
}
