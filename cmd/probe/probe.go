package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/cmd/util"
	"github.com/sidkik/addonsync/pkg/errors"
	"github.com/sidkik/addonsync/pkg/lockprobe"
)

// Mocked for unit testing.
var (
	stdout io.Writer = os.Stdout
	clock            = clockwork.NewRealClock()
)

// New creates a new `probe` command.
func New() *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "probe PATH...",
		Short: "Check whether files are safe to read, move, or delete",
		Long: "Check whether files are safe to read, move, or delete.\n\n" +
			"A file is reported as locked if another process holds a lock on it,\n" +
			"or if it doesn't exist or can't be opened. The command fails if any\n" +
			"of the files are locked.",
		Args: cobra.MinimumNArgs(1),
		Run: func(_ *cobra.Command, paths []string) {
			interval := util.ParseUserConfig().PollInterval()
			if err := run(paths, wait, interval); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0,
		"Wait up to this long for locked files to be released")
	return cmd
}

func run(paths []string, wait, interval time.Duration) error {
	ctx := context.Background()
	if wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}

	var numLocked int
	for _, path := range paths {
		var err error
		if wait > 0 {
			err = lockprobe.WaitUnlocked(ctx, clock, interval, path)
		} else {
			err = lockprobe.Check(path)
		}

		if err != nil {
			numLocked++
			fmt.Fprintf(stdout, "%s: locked (%s)\n", path, errors.RootCause(err))
			continue
		}
		fmt.Fprintf(stdout, "%s: free\n", path)
	}

	if numLocked > 0 {
		return errors.NewFriendlyError("%d of %d files are locked.", numLocked, len(paths))
	}
	return nil
}
