package cli

import (
	"github.com/spf13/cobra"
)

// createCheckoutCmd creates an isolated checkout command with the given flags
func createCheckoutCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <pull-request>",
		Short: "Check out a pull request as a local branch",
		Long: `Check out a pull request into the configured working copy.

Fork pull requests get a branch named pr/<author>/<number> tracking an
automatically managed fork remote; same-repository pull requests check out
the head branch directly. The branch is associated with the pull request in
the repository configuration so it can be found again later.`,
		Example: `  # Check out by number from the first configured repository
  prsync checkout 7

  # Check out from a specific repository
  prsync checkout acme/widget#7`,
		Aliases: []string{"co"},
		Args:    cobra.ExactArgs(1),
		RunE:    createRunCheckout(flags),
	}
}

func createRunCheckout(flags *Flags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd, flags)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		ref, err := app.parsePRArg(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		client, err := app.forgeClient(ctx)
		if err != nil {
			return err
		}

		pr, err := client.GetPullRequest(ctx, ref.Owner, ref.Repo, ref.Number)
		if err != nil {
			return err
		}

		associator, err := app.associator()
		if err != nil {
			return err
		}

		if pr.Ref.IsFork() {
			err = associator.CheckoutFromFork(ctx, pr.Ref)
		} else {
			err = associator.CheckoutSameRepo(ctx, pr.Ref)
		}
		if err != nil {
			return err
		}

		branch, err := associator.BranchForPullRequest(ctx, pr.Ref)
		if err != nil {
			return err
		}

		app.out.Successf("Checked out %s/%s#%d as %s", pr.Ref.Owner, pr.Ref.Repo, pr.Ref.Number, branch)

		return nil
	}
}
