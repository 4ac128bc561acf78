package watch

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/cmd/util"
	"github.com/sidkik/addonsync/pkg/errors"
	"github.com/sidkik/addonsync/pkg/fswatch"
	"github.com/sidkik/addonsync/pkg/lockprobe"
	"github.com/sidkik/addonsync/pkg/manifest"
	"github.com/sidkik/addonsync/pkg/pathutil"
)

// Mocked for unit testing.
var isLocked = lockprobe.IsLocked

type watcher struct {
	builder      manifest.Builder
	dir, out     string
	clock        clockwork.Clock
	pollInterval time.Duration
	lockTimeout  time.Duration
}

// New creates a new `watch` command.
func New() *cobra.Command {
	var (
		out         string
		debounce    time.Duration
		lockTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch -o FILE DIR",
		Short: "Keep a manifest of a directory tree up to date",
		Long: "Write the manifest of DIR to FILE, and rewrite it whenever anything\n" +
			"in DIR changes, until interrupted.\n\n" +
			"Files that are locked when the manifest is rebuilt are waited on,\n" +
			"so the manifest never describes a half-written file.",
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if out == "" {
				util.HandleFatalError(errors.NewFriendlyError(
					"An output file is required. Please set it with `-o`."))
			}

			cfg := util.ParseUserConfig()
			w := watcher{
				builder:      util.NewBuilder(cfg),
				dir:          args[0],
				out:          out,
				clock:        clockwork.NewRealClock(),
				pollInterval: cfg.PollInterval(),
				lockTimeout:  lockTimeout,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if err := w.watch(ctx, debounce); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "The file to write the manifest to")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond,
		"How long the tree must be quiet before the manifest is rebuilt")
	cmd.Flags().DurationVar(&lockTimeout, "lock-timeout", 30*time.Second,
		"How long to wait for locked files before giving up on a rebuild")
	return cmd
}

func (w watcher) watch(ctx context.Context, debounce time.Duration) error {
	absOut, err := filepath.Abs(w.out)
	if err != nil {
		return errors.WithContext(err, "resolve output path")
	}
	absDir, err := filepath.Abs(w.dir)
	if err != nil {
		return errors.WithContext(err, "resolve directory")
	}
	if pathutil.IsUnder(absOut, absDir) {
		return errors.NewFriendlyError("The manifest %q can't be written inside "+
			"the directory it describes, since writing it would trigger "+
			"another rebuild.", w.out)
	}

	events, err := fswatch.Watch(w.dir)
	if err != nil {
		return errors.WithContext(err, "watch")
	}
	return w.run(ctx, events, debounce)
}

func (w watcher) run(ctx context.Context, events <-chan struct{}, debounce time.Duration) error {
	if err := w.rebuild(ctx); err != nil {
		return errors.WithContext(err, "build initial manifest")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-events:
		}

		// Wait for the tree to settle before rebuilding.
		timer := w.clock.NewTimer(debounce)
	settle:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-events:
				timer.Reset(debounce)
			case <-timer.Chan():
				break settle
			}
		}

		if err := w.rebuild(ctx); err != nil {
			log.WithError(err).Warn("Failed to rebuild manifest. Will retry on the next change.")
		}
	}
}

func (w watcher) rebuild(ctx context.Context) error {
	var locked []string
	builder := w.builder
	builder.Skip = func(path string) bool {
		if isLocked(path) {
			locked = append(locked, path)
			return true
		}
		return false
	}

	m, err := builder.Build(w.dir)
	if err != nil {
		return errors.WithContext(err, "build manifest")
	}

	if len(locked) > 0 {
		log.WithField("locked", locked).Info("Waiting for locked files")

		waitCtx, cancel := context.WithTimeout(ctx, w.lockTimeout)
		defer cancel()
		for _, path := range locked {
			err := lockprobe.WaitUnlocked(waitCtx, w.clock, w.pollInterval, path)
			if err != nil {
				return errors.WithContext(err, "wait for locked file")
			}
		}

		if m, err = w.builder.Build(w.dir); err != nil {
			return errors.WithContext(err, "build manifest")
		}
	}

	if err := manifest.Write(w.out, m); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"path":  w.out,
		"files": len(m.Files),
	}).Info("Wrote manifest")
	return nil
}
