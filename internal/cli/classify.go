package cli

import (
	"github.com/spf13/cobra"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/hostdetect"
)

// createClassifyCmd creates an isolated classify command
func createClassifyCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <url>...",
		Short: "Classify remote URLs by host kind",
		Long: `Classify one or more remote URLs as a primary host, an enterprise
installation, or an unknown host. Enterprise detection probes the host's
API endpoints; results are cached for the configured TTL.`,
		Example: `  # Classify a clone URL
  prsync classify https://github.com/acme/widget.git

  # Classify an enterprise host
  prsync classify git@ghe.example.com:acme/widget.git`,
		Args: cobra.MinimumNArgs(1),
		RunE: createRunClassify(flags),
	}
}

func createRunClassify(flags *Flags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd, flags)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		ctx := cmd.Context()

		for _, rawURL := range args {
			kind := app.classifier.Classify(ctx, rawURL)

			switch kind {
			case hostdetect.KindPrimary, hostdetect.KindEnterprise:
				app.out.Plainf("%s\t%s", rawURL, kind)
			default:
				app.out.Plainf("%s\t%s", rawURL, hostdetect.KindUnknown)
			}
		}

		return nil
	}
}
