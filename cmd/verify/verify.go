package verify

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/cmd/util"
	"github.com/sidkik/addonsync/pkg/errors"
	"github.com/sidkik/addonsync/pkg/manifest"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `verify` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "verify MANIFEST DIR",
		Short: "Check a directory tree against a manifest",
		Long: "Check that the files in DIR match the manifest at MANIFEST.\n\n" +
			"Files are compared by checksum and size. The command lists every\n" +
			"changed, added, and removed file, and fails if there are any.",
		Args: cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			builder := util.NewBuilder(util.ParseUserConfig())
			if err := run(builder, args[0], args[1]); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func run(builder manifest.Builder, manifestPath, dir string) error {
	expected, err := manifest.Read(manifestPath)
	if err != nil {
		return errors.WithContext(err, "read manifest")
	}

	changed, added, removed, err := builder.Verify(expected, dir)
	if err != nil {
		return err
	}

	for _, group := range []struct {
		label string
		paths []string
	}{
		{"changed", changed},
		{"added", added},
		{"removed", removed},
	} {
		for _, path := range group.paths {
			fmt.Fprintf(stdout, "%-8s %s\n", group.label, path)
		}
	}

	if n := len(changed) + len(added) + len(removed); n > 0 {
		return errors.NewFriendlyError("%d files don't match the manifest.", n)
	}
	fmt.Fprintln(stdout, "All files match the manifest.")
	return nil
}
