package cli

import (
	"github.com/spf13/cobra"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/pagination"
)

// createListCmd creates an isolated list command with the given flags
func createListCmd(flags *Flags) *cobra.Command {
	var next bool

	cmd := &cobra.Command{
		Use:   "list [query-id]",
		Short: "List pull requests across the configured repositories",
		Long: `List pull requests for a configured query, merging pages from every
repository in registration order.

The first run of a query fetches its first page. Later runs replay all
previously seen pages from the persisted cursors, so a listing resumes
exactly where it left off. Use --next to advance by one page instead.`,
		Example: `  # List the default query
  prsync list

  # List a configured query by id
  prsync list mine

  # Fetch the next page of results
  prsync list --next`,
		Aliases: []string{"ls"},
		Args:    cobra.MaximumNArgs(1),
		RunE:    createRunList(flags, &next),
	}

	cmd.Flags().BoolVar(&next, "next", false, "Advance one source by one page instead of replaying")

	return cmd
}

func createRunList(flags *Flags, next *bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd, flags)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		queryID := "all"
		if len(args) > 0 {
			queryID = args[0]
		}

		ctx := cmd.Context()

		client, err := app.forgeClient(ctx)
		if err != nil {
			return err
		}

		sources, err := app.sources(client)
		if err != nil {
			return err
		}

		coordinator, err := app.openState()
		if err != nil {
			return err
		}

		mode := pagination.ModeRestore
		if *next {
			mode = pagination.ModeNextPage
		}

		result, err := coordinator.Fetch(ctx, queryID, mode, sources)
		if err != nil {
			return err
		}

		if err := app.saveState(); err != nil {
			return err
		}

		if len(result.Items) == 0 {
			app.out.Info("No pull requests found")
			return nil
		}

		for _, pr := range result.Items {
			app.out.PullRequest(pr)
		}

		if result.HasMorePages || result.HasUnsearchedSources {
			app.out.Info("More results available; run with --next")
		}

		return nil
	}
}
