package config

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/addonsync/pkg/checksum"
	"github.com/sidkik/addonsync/pkg/config"
	"github.com/sidkik/addonsync/pkg/errors"
)

func TestPromptUser(t *testing.T) {
	tests := []struct {
		name                                                 string
		helpString, prompt, defaultAnswer, currAnswer, stdin string
		expPrompt, expResult                                 string
	}{
		{
			name:       "No default or current answer",
			helpString: "explanation",
			prompt:     "prompt",
			stdin:      "user input\n",
			expPrompt: "explanation\n" +
				"prompt:\n" +
				"Please enter manually: \n",
			expResult: "user input",
		},
		{
			name:       "Current answer only, chose current answer",
			helpString: "explanation",
			prompt:     "prompt",
			currAnswer: "current answer",
			stdin:      "1\n",
			expPrompt: "explanation\n" +
				"prompt:\n" +
				"\n" +
				"\t1. current answer (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: \n",
			expResult: "current answer",
		},
		{
			name:          "Default answer only, enter manually",
			helpString:    "explanation",
			prompt:        "prompt",
			defaultAnswer: "default answer",
			stdin: "2\n" +
				"user input\n",
			expPrompt: "explanation\n" +
				"prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: " +
				"Please enter manually: \n",
			expResult: "user input",
		},
		{
			name:          "Same default and current answer are only shown once",
			helpString:    "explanation",
			prompt:        "prompt",
			defaultAnswer: "answer",
			currAnswer:    "answer",
			stdin:         "1\n",
			expPrompt: "explanation\n" +
				"prompt:\n" +
				"\n" +
				"\t1. answer (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: \n",
			expResult: "answer",
		},
		{
			name:          "Chose current answer",
			helpString:    "explanation",
			prompt:        "prompt",
			defaultAnswer: "default answer",
			currAnswer:    "current answer",
			stdin:         "2\n",
			expPrompt: "explanation\n" +
				"prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. current answer\n" +
				"\t3. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-3]: \n",
			expResult: "current answer",
		},
		{
			name:          "Empty choice picks the recommended answer",
			helpString:    "explanation",
			prompt:        "prompt",
			defaultAnswer: "default answer",
			currAnswer:    "current answer",
			stdin:         "\n",
			expPrompt: "explanation\n" +
				"prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. current answer\n" +
				"\t3. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-3]: \n",
			expResult: "default answer",
		},
		{
			name:          "Invalid choices are asked again",
			helpString:    "explanation",
			prompt:        "prompt",
			defaultAnswer: "default answer",
			stdin:         "0\nthree\n3\n1\n",
			expPrompt: "explanation\n" +
				"prompt:\n" +
				"\n" +
				"\t1. default answer (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: " +
				"Please choose one [1-2]: " +
				"Please choose one [1-2]: " +
				"Please choose one [1-2]: \n",
			expResult: "default answer",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			out := bytes.NewBuffer(nil)
			stdout = out
			stdinReader := bufio.NewReader(strings.NewReader(test.stdin))

			result, err := promptUser(stdinReader, test.helpString, test.prompt,
				test.defaultAnswer, test.currAnswer)
			assert.NoError(t, err)
			assert.Equal(t, test.expResult, result)
			assert.Equal(t, test.expPrompt, out.String())
		})
	}
}

func TestPromptUserEOF(t *testing.T) {
	stdout = bytes.NewBuffer(nil)

	_, err := promptUser(bufio.NewReader(strings.NewReader("")), "explanation", "prompt", "default answer", "")
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(string) (string, bool)
		input  string
		expOK  bool
		expMsg string
	}{
		{name: "Algorithm", fn: algorithmValidationFn, input: "xxhash", expOK: true},
		{name: "AlgorithmCase", fn: algorithmValidationFn, input: "SHA256", expOK: true},
		{name: "UnknownAlgorithm", fn: algorithmValidationFn, input: "md5", expMsg: "md5"},
		{name: "Interval", fn: pollIntervalValidationFn, input: "250ms", expOK: true},
		{name: "ZeroInterval", fn: pollIntervalValidationFn, input: "0s", expMsg: "positive"},
		{name: "BadInterval", fn: pollIntervalValidationFn, input: "soon", expMsg: "positive"},
		{name: "Exclude", fn: excludeValidationFn, input: ".git, **/*.bak", expOK: true},
		{name: "BadExclude", fn: excludeValidationFn, input: ".git, [", expMsg: `"["`},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			msg, ok := test.fn(test.input)
			assert.Equal(t, test.expOK, ok)
			assert.Contains(t, msg, test.expMsg)
		})
	}
}

func TestSplitPatterns(t *testing.T) {
	assert.Equal(t, []string{".git", "**/*.bak"}, splitPatterns(" .git ,, **/*.bak,"))
	assert.Empty(t, splitPatterns(""))
}

func TestGenerateConfig(t *testing.T) {
	existing := config.User{
		ChecksumAlgorithm: checksum.XXHash,
		Exclude:           []string{"**/*.bak"},
		LockPollInterval:  "250ms",
	}

	tests := []struct {
		name                string
		opts                options
		mockParseUserConfig func() (config.User, error)
		inputs              string
		expPrompt           string
		expConfig           config.User
		expError            string
	}{
		{
			name: "Initial setup uses the defaults",
			mockParseUserConfig: func() (config.User, error) {
				return config.DefaultUser(), nil
			},
			inputs: "1\n1\n1\n",
			expPrompt: "Enter the checksum algorithm used to build manifests.\n" +
				"\"sha256\" is the most robust, and \"xxhash\" is much faster.\n" +
				"Checksum algorithm:\n" +
				"\n" +
				"\t1. sha256 (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: \n" +
				"Enter the paths to leave out of manifests, separated by commas.\n" +
				"Paths are relative to the addon directory, and may use `**` wildcards.\n" +
				"Exclude patterns:\n" +
				"\n" +
				"\t1. .git, **/.DS_Store, **/Thumbs.db (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: \n" +
				"Enter how often locked files are checked while waiting for them to be released.\n" +
				"Lock poll interval:\n" +
				"\n" +
				"\t1. 1s (recommended)\n" +
				"\t2. (Enter manually)\n" +
				"\n" +
				"Please choose one [1-2]: \n",
			expConfig: config.User{
				ChecksumAlgorithm: checksum.SHA256,
				Exclude:           []string{".git", "**/.DS_Store", "**/Thumbs.db"},
				LockPollInterval:  "1s",
			},
		},
		{
			name: "Keep the existing config",
			mockParseUserConfig: func() (config.User, error) {
				return existing, nil
			},
			inputs:    "2\n2\n2\n",
			expConfig: existing,
		},
		{
			name: "Failing to read the existing config only hides its values",
			mockParseUserConfig: func() (config.User, error) {
				return config.User{}, errors.New("parse error")
			},
			inputs: "\n\n\n",
			expConfig: config.User{
				ChecksumAlgorithm: checksum.SHA256,
				Exclude:           []string{".git", "**/.DS_Store", "**/Thumbs.db"},
				LockPollInterval:  "1s",
			},
		},
		{
			name: "Invalid manual entries are asked again",
			mockParseUserConfig: func() (config.User, error) {
				return config.DefaultUser(), nil
			},
			inputs: "2\nmd5\n" +
				"2\nXXHash\n" +
				"2\n[, .git\n" +
				"2\n.git, **/*.bak\n" +
				"2\nsoon\n" +
				"2\n2s\n",
			expConfig: config.User{
				ChecksumAlgorithm: checksum.XXHash,
				Exclude:           []string{".git", "**/*.bak"},
				LockPollInterval:  "2s",
			},
		},
		{
			name: "Flags aren't prompted for",
			opts: options{
				algorithm:    "xxhash",
				pollInterval: "3s",
				exclude:      []string{"**/*.tmp"},
			},
			mockParseUserConfig: func() (config.User, error) {
				return existing, nil
			},
			expConfig: config.User{
				ChecksumAlgorithm: checksum.XXHash,
				Exclude:           []string{"**/*.tmp"},
				LockPollInterval:  "3s",
			},
		},
		{
			name: "Invalid flags are rejected",
			opts: options{
				algorithm:    "xxhash",
				pollInterval: "-3s",
				exclude:      []string{"**/*.tmp"},
			},
			mockParseUserConfig: func() (config.User, error) {
				return existing, nil
			},
			expError: "positive duration",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			out := bytes.NewBuffer(nil)
			stdout = out
			stdin = strings.NewReader(test.inputs)
			parseUserConfig = test.mockParseUserConfig

			cfg, err := generateConfig(test.opts)
			if test.expError != "" {
				require.Error(t, err)
				assert.Contains(t, errors.GetPrintableMessage(err), test.expError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expConfig, cfg)
			if test.expPrompt != "" {
				assert.Equal(t, test.expPrompt, out.String())
			}
		})
	}
}

func TestSetupConfig(t *testing.T) {
	stdout = bytes.NewBuffer(nil)
	stdin = strings.NewReader("")
	parseUserConfig = func() (config.User, error) {
		return config.DefaultUser(), nil
	}

	var written config.User
	writeUserConfig = func(cfg config.User) error {
		written = cfg
		return nil
	}
	defer func() { writeUserConfig = config.WriteUser }()

	err := setupConfig(options{
		algorithm:    "XXHASH",
		pollInterval: "500ms",
		exclude:      []string{".git"},
	})
	require.NoError(t, err)
	assert.Equal(t, config.User{
		ChecksumAlgorithm: checksum.XXHash,
		Exclude:           []string{".git"},
		LockPollInterval:  "500ms",
	}, written)

	writeUserConfig = func(config.User) error {
		return errors.New("disk full")
	}
	err = setupConfig(options{algorithm: "sha256", pollInterval: "1s", exclude: []string{".git"}})
	assert.Error(t, err)
}

func TestGetters(t *testing.T) {
	configCmd := New()
	algorithmCmd, _, err := configCmd.Find([]string{"get-checksum-algorithm"})
	require.NoError(t, err)
	excludeCmd, _, err := configCmd.Find([]string{"get-exclude"})
	require.NoError(t, err)
	intervalCmd, _, err := configCmd.Find([]string{"get-lock-poll-interval"})
	require.NoError(t, err)

	parseUserConfig = func() (config.User, error) {
		return config.User{
			ChecksumAlgorithm: checksum.XXHash,
			Exclude:           []string{".git", "**/*.bak"},
			LockPollInterval:  "1500ms",
		}, nil
	}

	out := bytes.NewBuffer(nil)
	stdout = out

	algorithmCmd.Run(nil, nil)
	excludeCmd.Run(nil, nil)
	intervalCmd.Run(nil, nil)
	assert.Equal(t, "xxhash\n.git\n**/*.bak\n1.5s\n", out.String())
}
