package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/output"
)

// createConversationCmd creates an isolated conversation command
func createConversationCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "conversation <pull-request>",
		Short: "Show a pull request's review conversation",
		Long: `Render a pull request's timeline with review comments threaded onto
their reviews. Replies are shown under their thread root in arrival order;
the viewer's unsubmitted review comments appear under the pending review.`,
		Example: `  # Show the conversation of pull request 7
  prsync conversation 7

  # Qualified form
  prsync conversation acme/widget#7`,
		Aliases: []string{"conv"},
		Args:    cobra.ExactArgs(1),
		RunE:    createRunConversation(flags),
	}
}

func createRunConversation(flags *Flags) func(*cobra.Command, []string) error {
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

		reconciler, err := app.reconciler(ctx)
		if err != nil {
			return err
		}

		events, err := reconciler.Reconcile(ctx, ref)
		if err != nil {
			return err
		}

		printTimeline(app.out, events)

		return nil
	}
}

// printTimeline renders timeline events with their threaded comments.
func printTimeline(out output.Writer, events []forge.TimelineEvent) {
	if len(events) == 0 {
		out.Info("No timeline events")
		return
	}

	for _, event := range events {
		switch event.Kind {
		case forge.EventCommit:
			out.Plainf("* commit %s by %s", shortSHA(event.SHA), event.Actor)
		case forge.EventReview:
			state := event.State
			if state == "" {
				state = "commented"
			}
			out.Plainf("* review (%s) by %s", state, event.Actor)
			printThread(out, event.Comments)
		case forge.EventComment:
			out.Plainf("* comment by %s", event.Actor)
			if event.Body != "" {
				out.Plainf("    %s", firstLine(event.Body))
			}
		case forge.EventMerge:
			out.Plainf("* merged by %s", event.Actor)
		case forge.EventAssign:
			out.Plainf("* assigned by %s", event.Actor)
		case forge.EventHeadRefDeleted:
			out.Plain("* head branch deleted")
		default:
		}
	}
}

func printThread(out output.Writer, comments []forge.Comment) {
	for _, comment := range comments {
		indent := "    "
		if comment.InReplyTo != nil {
			indent = "      "
		}

		marker := ""
		if comment.IsPending {
			marker = " [pending]"
		}

		out.Plainf("%s%s:%s %s", indent, comment.Author, marker, firstLine(comment.Body))
	}
}

func firstLine(body string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(body), "\n")
	return line
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
