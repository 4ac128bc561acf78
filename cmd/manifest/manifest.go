package manifest

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/cmd/util"
	"github.com/sidkik/addonsync/pkg/checksum"
	"github.com/sidkik/addonsync/pkg/errors"
	"github.com/sidkik/addonsync/pkg/lockprobe"
	"github.com/sidkik/addonsync/pkg/manifest"
)

// Mocked for unit testing.
var (
	stdout   io.Writer = os.Stdout
	isLocked           = lockprobe.IsLocked
)

type options struct {
	out        string
	asJSON     bool
	skipLocked bool
	algorithm  string
}

// New creates a new `manifest` command.
func New() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "manifest DIR",
		Short: "Describe every file in a directory tree",
		Long: "Print or save the manifest of DIR: the relative path, size, and\n" +
			"checksum of every regular file in it.\n\n" +
			"Paths matching the `exclude` patterns in the user config are left out.",
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			builder := util.NewBuilder(util.ParseUserConfig())
			if err := run(builder, args[0], opts); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "",
		"Write the manifest to this file rather than stdout. "+
			"Files ending in .json are written as JSON")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false,
		"Print JSON rather than YAML to stdout")
	cmd.Flags().BoolVar(&opts.skipLocked, "skip-locked", false,
		"Leave out files that are locked by another process, rather than "+
			"reading them anyway")
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", "",
		"Override the checksum algorithm from the user config (sha256 or xxhash)")
	return cmd
}

func run(builder manifest.Builder, dir string, opts options) error {
	if opts.algorithm != "" {
		alg, err := checksum.ParseAlgorithm(opts.algorithm)
		if err != nil {
			return err
		}
		builder.Algorithm = alg
	}

	if opts.skipLocked {
		builder.Skip = func(path string) bool {
			if isLocked(path) {
				log.WithField("path", path).Warn("Skipping locked file")
				return true
			}
			return false
		}
	}

	m, err := builder.Build(dir)
	if err != nil {
		return errors.WithContext(err, "build manifest")
	}

	if opts.out != "" {
		if err := manifest.Write(opts.out, m); err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"path":  opts.out,
			"files": len(m.Files),
		}).Info("Wrote manifest")
		return nil
	}

	out, err := manifest.Marshal(m, opts.asJSON)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}
	fmt.Fprint(stdout, string(out))
	return nil
}
