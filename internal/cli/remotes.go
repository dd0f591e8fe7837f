package cli

import (
	"github.com/spf13/cobra"
)

// createRemotesCmd creates an isolated remotes command
func createRemotesCmd(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remotes",
		Short: "Manage fork remotes created by checkout",
		Long: `Inspect and clean up git remotes that were added when checking out
pull requests from forks. Remotes are tracked through a config sentinel
and removed only once no local branch depends on them.`,
	}

	cmd.AddCommand(createRemotesPruneCmd(flags))

	return cmd
}

func createRemotesPruneCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove fork remotes no local branch uses",
		Example: `  # Remove orphaned fork remotes
  prsync remotes prune`,
		Args: cobra.NoArgs,
		RunE: createRunRemotesPrune(flags),
	}
}

func createRunRemotesPrune(flags *Flags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp(cmd, flags)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		associator, err := app.associator()
		if err != nil {
			return err
		}

		removed, err := associator.CleanupOrphanedRemotes(cmd.Context())
		if err != nil {
			return err
		}

		if len(removed) == 0 {
			app.out.Info("No orphaned remotes")
			return nil
		}

		for _, name := range removed {
			app.out.Successf("Removed remote %s", name)
		}

		return nil
	}
}
