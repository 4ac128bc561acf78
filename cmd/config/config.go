package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/addonsync/cmd/util"
	"github.com/sidkik/addonsync/pkg/checksum"
	"github.com/sidkik/addonsync/pkg/config"
	"github.com/sidkik/addonsync/pkg/errors"
)

// Mocked for unit testing.
var (
	stdout          io.Writer = os.Stdout
	stdin           io.Reader = os.Stdin
	parseUserConfig           = config.ParseUser
	writeUserConfig           = config.WriteUser
)

type options struct {
	algorithm    string
	pollInterval string
	exclude      []string
}

// New creates a new `config` command.
func New() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Setup the addonsync user configuration",
		Run: func(_ *cobra.Command, _ []string) {
			if err := setupConfig(opts); err != nil {
				err = errors.NewFriendlyError("Failed to setup configuration:\n%s", err)
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&opts.algorithm, "checksum-algorithm", "",
		"Set the checksum algorithm used for new manifests. "+
			"Optional: If not set, `addonsync config` will interactively prompt.")
	cmd.Flags().StringVar(&opts.pollInterval, "lock-poll-interval", "",
		"Set how often locked files are probed, such as \"500ms\". "+
			"Optional: If not set, `addonsync config` will interactively prompt.")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil,
		"Set the patterns of paths left out of manifests. "+
			"Optional: If not set, `addonsync config` will interactively prompt.")

	// Setup the commands for querying the contents of the user config.
	type getterSpec struct {
		use, short string
		fn         func(config.User) string
	}

	getters := []getterSpec{
		{
			use:   "get-checksum-algorithm",
			short: "Get the configured checksum algorithm",
			fn:    func(cfg config.User) string { return string(cfg.ChecksumAlgorithm) },
		},
		{
			use:   "get-exclude",
			short: "Get the configured exclude patterns, one per line",
			fn:    func(cfg config.User) string { return strings.Join(cfg.Exclude, "\n") },
		},
		{
			use:   "get-lock-poll-interval",
			short: "Get the configured lock poll interval",
			fn:    func(cfg config.User) string { return cfg.PollInterval().String() },
		},
		{
			use:   "path",
			short: "Get the path of the user config",
			fn: func(_ config.User) string {
				path, err := config.GetUserConfigPath()
				if err != nil {
					util.HandleFatalError(errors.WithContext(err, "get user config path"))
				}
				return path
			},
		},
	}
	for _, getter := range getters {
		getter := getter
		cmd.AddCommand(&cobra.Command{
			Use:   getter.use,
			Short: getter.short,
			Run: func(_ *cobra.Command, _ []string) {
				cfg, err := parseUserConfig()
				if err != nil {
					err = errors.WithContext(err, "read config")
					util.HandleFatalError(err)
				}

				fmt.Fprintln(stdout, getter.fn(cfg))
			},
		})
	}

	return cmd
}

func setupConfig(opts options) error {
	cfg, err := generateConfig(opts)
	if err != nil {
		return errors.WithContext(err, "generate config")
	}

	if err := writeUserConfig(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	path, err := config.GetUserConfigPath()
	if err != nil {
		return errors.WithContext(err, "get user config path")
	}

	fmt.Fprintf(stdout, "Wrote config to %s\n", path)
	return nil
}

func algorithmValidationFn(resp string) (string, bool) {
	if _, err := checksum.ParseAlgorithm(resp); err != nil {
		return errors.GetPrintableMessage(err), false
	}
	return "", true
}

func pollIntervalValidationFn(resp string) (string, bool) {
	interval, err := time.ParseDuration(resp)
	if err != nil || interval <= 0 {
		return fmt.Sprintf("%q isn't a positive duration. "+
			"Please enter a duration such as \"500ms\" or \"2s\".", resp), false
	}
	return "", true
}

func excludeValidationFn(resp string) (string, bool) {
	for _, pattern := range splitPatterns(resp) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Sprintf("%q isn't a valid pattern.", pattern), false
		}
	}
	return "", true
}

// splitPatterns parses a comma separated list of patterns.
func splitPatterns(resp string) (patterns []string) {
	for _, pattern := range strings.Split(resp, ",") {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}
	return patterns
}

type prompt struct {
	helpString, prompt, defaultAnswer, currAnswer string
	set                                           func(string)
	validationFn                                  func(string) (string, bool)
}

// generateConfig interacts with the user to decide what the user's desired
// configuration is. Values passed as flags aren't prompted for.
func generateConfig(opts options) (config.User, error) {
	defaults := config.DefaultUser()
	currConfig, err := parseUserConfig()
	if err != nil {
		currConfig = config.User{}
		log.WithError(err).Debug("Failed to read current config")
	}

	cfg := config.User{
		ChecksumAlgorithm: checksum.Algorithm(opts.algorithm),
		Exclude:           opts.exclude,
		LockPollInterval:  opts.pollInterval,
	}

	var prompts []prompt
	if opts.algorithm == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the checksum algorithm used to build manifests.\n" +
				fmt.Sprintf("%q is the most robust, and %q is much faster.",
					checksum.SHA256, checksum.XXHash),
			prompt:        "Checksum algorithm",
			defaultAnswer: string(defaults.ChecksumAlgorithm),
			currAnswer:    string(currConfig.ChecksumAlgorithm),
			set:           func(resp string) { cfg.ChecksumAlgorithm = checksum.Algorithm(resp) },
			validationFn:  algorithmValidationFn,
		})
	} else if msg, ok := algorithmValidationFn(opts.algorithm); !ok {
		return config.User{}, errors.NewFriendlyError("%s", msg)
	}

	if len(opts.exclude) == 0 {
		prompts = append(prompts, prompt{
			helpString: "Enter the paths to leave out of manifests, separated by commas.\n" +
				"Paths are relative to the addon directory, and may use `**` wildcards.",
			prompt:        "Exclude patterns",
			defaultAnswer: strings.Join(defaults.Exclude, ", "),
			currAnswer:    strings.Join(currConfig.Exclude, ", "),
			set:           func(resp string) { cfg.Exclude = splitPatterns(resp) },
			validationFn:  excludeValidationFn,
		})
	} else if msg, ok := excludeValidationFn(strings.Join(opts.exclude, ",")); !ok {
		return config.User{}, errors.NewFriendlyError("%s", msg)
	}

	if opts.pollInterval == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter how often locked files are checked while waiting " +
				"for them to be released.",
			prompt:        "Lock poll interval",
			defaultAnswer: defaults.LockPollInterval,
			currAnswer:    currConfig.LockPollInterval,
			set:           func(resp string) { cfg.LockPollInterval = resp },
			validationFn:  pollIntervalValidationFn,
		})
	} else if msg, ok := pollIntervalValidationFn(opts.pollInterval); !ok {
		return config.User{}, errors.NewFriendlyError("%s", msg)
	}

	stdinReader := bufio.NewReader(stdin)
	for _, prompt := range prompts {
		var resp string
		for {
			resp, err = promptUser(stdinReader, prompt.helpString, prompt.prompt,
				prompt.defaultAnswer, prompt.currAnswer)
			if err != nil {
				return config.User{}, errors.WithContext(err, "read response")
			}

			validationErr, ok := prompt.validationFn(resp)
			if ok {
				break
			}

			fmt.Fprintln(stdout, validationErr)
		}

		prompt.set(resp)
	}

	// Normalize so that the written config parses back to the same values.
	cfg.ChecksumAlgorithm, err = checksum.ParseAlgorithm(string(cfg.ChecksumAlgorithm))
	if err != nil {
		return config.User{}, err
	}
	return cfg, nil
}

func promptUser(stdinReader *bufio.Reader, helpString, prompt, defaultAnswer,
	currAnswer string) (string, error) {
	// Separate the fields with a blank line.
	defer fmt.Fprintln(stdout)

	var options []string
	if defaultAnswer != "" {
		options = append(options, defaultAnswer)
	}
	if currAnswer != "" && currAnswer != defaultAnswer {
		options = append(options, currAnswer)
	}
	options = append(options, "(Enter manually)")

	fmt.Fprintln(stdout, helpString+"\n"+prompt+":")

	if nOptions := len(options); nOptions > 1 {
		fmt.Fprintln(stdout)
		for i, option := range options {
			if i == 0 {
				option = fmt.Sprintf("%s (recommended)", option)
			}
			fmt.Fprintf(stdout, "\t%d. %s\n", i+1, option)
		}
		fmt.Fprintln(stdout)

		for {
			fmt.Fprintf(stdout, "Please choose one [1-%d]: ", nOptions)
			choice, err := readChoice(stdinReader, nOptions)
			if err != nil {
				return "", err
			}

			switch choice {
			case 0:
				// Invalid input, so ask again.
				continue
			case nOptions:
				fmt.Fprint(stdout, "Please enter manually: ")
				return readLine(stdinReader)
			default:
				return options[choice-1], nil
			}
		}
	}

	fmt.Fprint(stdout, "Please enter manually: ")
	return readLine(stdinReader)
}

// readChoice returns the 1-indexed option picked by the user, or 0 if the
// input isn't a valid choice. An empty line picks the first option.
func readChoice(r *bufio.Reader, nOptions int) (int, error) {
	choiceStr, err := readLine(r)
	if err != nil {
		return 0, err
	}

	if choiceStr == "" {
		return 1, nil
	}

	choice, err := strconv.Atoi(choiceStr)
	if err != nil || choice < 1 || choice > nOptions {
		return 0, nil
	}
	return choice, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
