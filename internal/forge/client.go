package forge

import "context"

// Client defines the operations the application needs from a pull request
// host. The wire format behind these calls is owned entirely by the
// implementation.
type Client interface {
	// ListPullRequests returns one page of pull requests for a repository.
	// Page numbering starts at 1.
	ListPullRequests(ctx context.Context, owner, repo string, query Query, page int) (*Page, error)

	// GetPullRequest returns a single pull request by number.
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)

	// GetComments returns the flat review comment list for a pull request,
	// in arrival order, including the viewer's pending review comments.
	GetComments(ctx context.Context, pr PullRequestRef) ([]Comment, error)

	// GetTimeline returns the timeline events for a pull request in
	// chronological order. Review events carry no comments; the
	// conversation reconciler attaches them.
	GetTimeline(ctx context.Context, pr PullRequestRef) ([]TimelineEvent, error)

	// CurrentLogin returns the login of the authenticated user.
	CurrentLogin(ctx context.Context) (string, error)
}

// Prober issues lightweight probe requests against arbitrary hosts during
// host classification. It is separate from Client because probes run before
// a host is known to be a supported forge at all.
type Prober interface {
	// Probe performs a single request against the given URL and returns
	// the raw response. Authentication is attached when available.
	Probe(ctx context.Context, url string) (*ProbeResult, error)
}
