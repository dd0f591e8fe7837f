package cli

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/config"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
)

// TestNewRootCmd tests creation of isolated root command
func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "prsync", cmd.Use)
	assert.NotNil(t, cmd.PersistentPreRunE)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	// Check subcommands
	subcommands := []string{"list", "checkout", "conversation", "classify", "remotes", "version"}
	for _, name := range subcommands {
		t.Run(fmt.Sprintf("HasCommand%s", name), func(t *testing.T) {
			found := false
			for _, subcmd := range cmd.Commands() {
				if subcmd.Name() == name {
					found = true
					break
				}
			}
			assert.True(t, found, "Expected to find command: %s", name)
		})
	}
}

// TestNewRootCmdIsolation tests that each call returns an independent instance
func TestNewRootCmdIsolation(t *testing.T) {
	cmd1 := NewRootCmd()
	cmd2 := NewRootCmd()
	assert.NotSame(t, cmd1, cmd2)
}

// TestRootCmdFlagDefaults tests persistent flag registration and defaults
func TestRootCmdFlagDefaults(t *testing.T) {
	cmd := NewRootCmd()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "prsync.yaml", configFlag.DefValue)

	hostFlag := cmd.PersistentFlags().Lookup("host")
	require.NotNil(t, hostFlag)
	assert.Equal(t, "github.com", hostFlag.DefValue)

	logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logLevelFlag)
	assert.Equal(t, "info", logLevelFlag.DefValue)

	logFormatFlag := cmd.PersistentFlags().Lookup("log-format")
	require.NotNil(t, logFormatFlag)
	assert.Equal(t, "text", logFormatFlag.DefValue)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	for _, name := range []string{"debug-git", "debug-api", "debug-classify", "debug-pagination"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "Expected to find flag: %s", name)
	}
}

// TestCreateSetupLogging tests isolated logging setup
func TestCreateSetupLogging(t *testing.T) {
	testCases := []struct {
		name      string
		logLevel  string
		expectErr bool
	}{
		{name: "DebugLevel", logLevel: "debug"},
		{name: "InfoLevel", logLevel: "info"},
		{name: "WarnLevel", logLevel: "warn"},
		{name: "ErrorLevel", logLevel: "error"},
		{name: "MixedCase", logLevel: "DEBUG"},
		{name: "Invalid", logLevel: "noisy", expectErr: true},
		{name: "Empty", logLevel: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			flags := defaultFlags()
			flags.LogLevel = tc.logLevel

			cmd := &cobra.Command{}
			cmd.SetContext(context.Background())

			err := createSetupLogging(flags)(cmd, nil)
			if tc.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}

			require.NoError(t, err)

			logger := loggerFromContext(cmd)
			require.NotNil(t, logger)

			expected, parseErr := logrus.ParseLevel(tc.logLevel)
			require.NoError(t, parseErr)
			assert.Equal(t, expected, logger.GetLevel())
		})
	}
}

// TestLoggerFromContextFallback tests the default logger path
func TestLoggerFromContextFallback(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	logger := loggerFromContext(cmd)
	assert.Same(t, logrus.StandardLogger(), logger)
}

// TestParsePRArg tests pull request argument parsing
func TestParsePRArg(t *testing.T) {
	app := &app{
		cfg: &config.Config{
			Repositories: []config.RepositoryConfig{
				{Repo: "acme/widget"},
				{Repo: "acme/gadget"},
			},
		},
	}

	testCases := []struct {
		name      string
		arg       string
		expected  forge.PullRequestRef
		expectErr bool
	}{
		{
			name:     "Qualified",
			arg:      "acme/gadget#12",
			expected: forge.PullRequestRef{Owner: "acme", Repo: "gadget", Number: 12},
		},
		{
			name:     "BareNumberUsesFirstRepository",
			arg:      "7",
			expected: forge.PullRequestRef{Owner: "acme", Repo: "widget", Number: 7},
		},
		{name: "NotANumber", arg: "seven", expectErr: true},
		{name: "ZeroNumber", arg: "0", expectErr: true},
		{name: "NegativeNumber", arg: "acme/widget#-3", expectErr: true},
		{name: "MissingSlash", arg: "widget#7", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := app.parsePRArg(tc.arg)
			if tc.expectErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, ref)
		})
	}
}

// TestParsePRArgNoRepositories tests bare numbers without configured repos
func TestParsePRArgNoRepositories(t *testing.T) {
	app := &app{cfg: &config.Config{}}

	_, err := app.parsePRArg("7")
	require.ErrorIs(t, err, ErrNoRepositories)
}

// TestQueryLookup tests configured query resolution with fallback
func TestQueryLookup(t *testing.T) {
	app := &app{
		cfg: &config.Config{
			Queries: []config.QueryConfig{
				{ID: "mine", State: "open", Author: "alice"},
			},
		},
	}

	lookup := app.queryLookup()

	configured := lookup("mine")
	assert.Equal(t, forge.Query{ID: "mine", State: "open", Author: "alice"}, configured)

	fallback := lookup("unknown")
	assert.Equal(t, forge.Query{ID: "unknown", State: "open"}, fallback)
}
