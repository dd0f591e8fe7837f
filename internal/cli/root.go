// Package cli implements the command-line interface for prsync.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/output"
)

// loggerContextKey is a type for context keys to avoid collisions
type loggerContextKey struct{}

// NewRootCmd creates a new isolated root command instance. Every call
// returns its own flag set and logger, so parallel tests cannot race on
// shared state.
func NewRootCmd() *cobra.Command {
	flags := defaultFlags()

	cmd := &cobra.Command{
		Use:   "prsync",
		Short: "Work with GitHub pull requests from a local working copy",
		Long: `prsync lists pull requests across the configured repositories, checks
them out as local branches (including fork heads), and renders their review
conversations. Pagination state is persisted so listings resume where they
left off after a restart.`,
		PersistentPreRunE: createSetupLogging(flags),
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	cmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", flags.ConfigFile, "Path to configuration file")
	cmd.PersistentFlags().StringVar(&flags.Host, "host", flags.Host, "Pull request host authority")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format (text or json)")
	cmd.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	cmd.PersistentFlags().BoolVar(&flags.Debug.Git, "debug-git", false, "Debug git command execution")
	cmd.PersistentFlags().BoolVar(&flags.Debug.API, "debug-api", false, "Debug API requests and responses")
	cmd.PersistentFlags().BoolVar(&flags.Debug.Classify, "debug-classify", false, "Debug host classification")
	cmd.PersistentFlags().BoolVar(&flags.Debug.Pagination, "debug-pagination", false, "Debug pagination decisions")

	cmd.AddCommand(createListCmd(flags))
	cmd.AddCommand(createCheckoutCmd(flags))
	cmd.AddCommand(createConversationCmd(flags))
	cmd.AddCommand(createClassifyCmd(flags))
	cmd.AddCommand(createRemotesCmd(flags))
	cmd.AddCommand(createVersionCmd())

	return cmd
}

// Execute runs the CLI
func Execute() error {
	return ExecuteWithContext(context.Background())
}

// ExecuteWithContext runs the CLI under the given context, canceling on
// interrupt signals.
func ExecuteWithContext(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	out := output.NewColoredWriter(os.Stdout, os.Stderr)

	go func() {
		<-sigChan
		out.Warn("Interrupt received, canceling...")
		cancel()
	}()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		out.Error(err.Error())
		return err
	}

	return nil
}

// createSetupLogging creates an isolated logging setup function for the
// given flags. The configured logger is stored in the command context.
func createSetupLogging(flags *Flags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		service := NewLoggerService(flags.logConfig())

		logger := logrus.New()
		if err := service.Configure(logger); err != nil {
			return err
		}

		cmd.SetContext(context.WithValue(cmd.Context(), loggerContextKey{}, logger))

		return nil
	}
}

// loggerFromContext returns the logger stored by createSetupLogging, or a
// default logger when the command runs outside the usual setup path.
func loggerFromContext(cmd *cobra.Command) *logrus.Logger {
	if logger, ok := cmd.Context().Value(loggerContextKey{}).(*logrus.Logger); ok {
		return logger
	}

	return logrus.StandardLogger()
}
