package identity

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/cmd/util"
	"github.com/sidkik/addonsync/pkg/errors"
	"github.com/sidkik/addonsync/pkg/manifest"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// New creates a new `identity` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "identity FILE BASE",
		Short: "Print the manifest entry for a single file",
		Long: "Print the name, size, checksum, and path relative to BASE of FILE,\n" +
			"as JSON.",
		Args: cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			builder := util.NewBuilder(util.ParseUserConfig())
			if err := run(builder, args[0], args[1]); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func run(builder manifest.Builder, filePath, basePath string) error {
	id, err := builder.Identity(filePath, basePath)
	if err != nil {
		return errors.WithContext(err, "build identity")
	}

	out, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return errors.WithContext(err, "marshal")
	}
	fmt.Fprintln(stdout, string(out))
	return nil
}
