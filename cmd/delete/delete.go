package delete

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/cmd/util"
	"github.com/sidkik/addonsync/pkg/errors"
	"github.com/sidkik/addonsync/pkg/lockprobe"
	"github.com/sidkik/addonsync/pkg/sync"
)

// Mocked for unit testing.
var (
	stdout   io.Writer = os.Stdout
	fs                 = afero.NewOsFs()
	isLocked           = lockprobe.IsLocked
)

// New creates a new `delete` command.
func New() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete PATH",
		Short: "Delete a directory tree",
		Long: "Delete PATH and everything beneath it. Deleting a path that doesn't\n" +
			"exist succeeds.\n\n" +
			"Unless --force is set, the delete is refused if any file in the tree\n" +
			"is locked by another process.",
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if err := deleteTree(args[0], force); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().BoolVar(&force, "force", false,
		"Delete even if files in the tree are locked")
	return cmd
}

func deleteTree(path string, force bool) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return errors.WithContext(err, "stat")
	}
	if !exists {
		fmt.Fprintln(stdout, "Path doesn't exist. Nothing to do.")
		return nil
	}

	if !force {
		locked, err := lockedFiles(path)
		if err != nil {
			return errors.WithContext(err, "probe locks")
		}
		if len(locked) > 0 {
			return errors.NewFriendlyError("Refusing to delete %q because "+
				"%d files are in use, including %q.\n"+
				"Close the program using them, or pass --force.",
				path, len(locked), locked[0])
		}
	}

	if err := sync.DeleteTree(path); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted %s\n", path)
	return nil
}

// lockedFiles returns the regular files beneath `root` that are locked.
func lockedFiles(root string) (locked []string, err error) {
	err = afero.Walk(fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if fi.Mode().IsRegular() && isLocked(path) {
			locked = append(locked, path)
		}
		return nil
	})
	return locked, err
}
