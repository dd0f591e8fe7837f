// Package github implements the forge interfaces against the GitHub REST API.
package github

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	gogh "github.com/google/go-github/v68/github"
	"github.com/sirupsen/logrus"

	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/logging"
)

// defaultPageSize is the page size requested from the list endpoints. The
// coordinator treats one API page as one logical page, so this value is the
// "k items per page" of every source backed by this client.
const defaultPageSize = 20

// Client implements forge.Client using the GitHub REST API.
type Client struct {
	gh     *gogh.Client
	logger *logrus.Logger
}

// New creates a client for github.com authenticated with the given token.
func New(token string, logger *logrus.Logger) *Client {
	return &Client{
		gh:     gogh.NewClient(nil).WithAuthToken(token),
		logger: logger,
	}
}

// NewEnterprise creates a client for a GitHub Enterprise instance. The base
// URL is the root of the instance (e.g. "https://git.example.com/"); API
// paths are derived from it.
func NewEnterprise(baseURL, token string, logger *logrus.Logger) (*Client, error) {
	gh, err := gogh.NewClient(nil).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "configure enterprise URLs")
	}

	return &Client{
		gh:     gh.WithAuthToken(token),
		logger: logger,
	}, nil
}

// ListPullRequests returns one page of pull requests for a repository.
func (c *Client) ListPullRequests(ctx context.Context, owner, repo string, query forge.Query, page int) (*forge.Page, error) {
	state := query.State
	if state == "" {
		state = "open"
	}

	opts := &gogh.PullRequestListOptions{
		State: state,
		ListOptions: gogh.ListOptions{
			Page:    page,
			PerPage: defaultPageSize,
		},
	}

	prs, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		return nil, classifyError(err, "list pull requests")
	}

	result := &forge.Page{
		Items:        make([]forge.PullRequest, 0, len(prs)),
		HasMorePages: resp.NextPage != 0,
	}

	for _, pr := range prs {
		// Author filtering happens client-side; the pulls endpoint has no
		// author parameter and the search endpoint paginates differently.
		if query.Author != "" && !strings.EqualFold(pr.GetUser().GetLogin(), query.Author) {
			continue
		}
		result.Items = append(result.Items, mapPullRequest(owner, repo, pr))
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			logging.StandardFields.Component: logging.ComponentNames.API,
			logging.StandardFields.Repo:      owner + "/" + repo,
			logging.StandardFields.QueryID:   query.ID,
			logging.StandardFields.Page:      page,
			logging.StandardFields.ItemCount: len(result.Items),
		}).Debug("Fetched pull request page")
	}

	return result, nil
}

// GetPullRequest returns a single pull request by number.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*forge.PullRequest, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, classifyError(err, "get pull request")
	}

	mapped := mapPullRequest(owner, repo, pr)

	return &mapped, nil
}

// GetComments returns the flat review comment list for a pull request,
// including the viewer's pending review comments flagged as such.
func (c *Client) GetComments(ctx context.Context, pr forge.PullRequestRef) ([]forge.Comment, error) {
	pendingReviews, err := c.pendingReviewIDs(ctx, pr)
	if err != nil {
		return nil, err
	}

	var comments []forge.Comment

	opts := &gogh.PullRequestListCommentsOptions{
		Sort:        "created",
		Direction:   "asc",
		ListOptions: gogh.ListOptions{PerPage: 100},
	}

	for {
		ghComments, resp, err := c.gh.PullRequests.ListComments(ctx, pr.Owner, pr.Repo, pr.Number, opts)
		if err != nil {
			return nil, classifyError(err, "list review comments")
		}

		for _, gc := range ghComments {
			comments = append(comments, mapComment(gc, pendingReviews))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// GetTimeline returns the pull request timeline in chronological order.
// Review and comment events are sourced from their dedicated endpoints
// because the timeline endpoint omits bodies and review states for them.
func (c *Client) GetTimeline(ctx context.Context, pr forge.PullRequestRef) ([]forge.TimelineEvent, error) {
	var events []forge.TimelineEvent

	reviews, err := c.listReviews(ctx, pr)
	if err != nil {
		return nil, err
	}
	events = append(events, reviews...)

	issueComments, err := c.listIssueComments(ctx, pr)
	if err != nil {
		return nil, err
	}
	events = append(events, issueComments...)

	timeline, err := c.listTimelineEvents(ctx, pr)
	if err != nil {
		return nil, err
	}
	events = append(events, timeline...)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})

	return events, nil
}

// CurrentLogin returns the login of the authenticated user.
func (c *Client) CurrentLogin(ctx context.Context) (string, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		if isUnauthorized(err) {
			return "", appErrors.ErrNotAuthenticated
		}
		return "", appErrors.WrapWithContext(err, "get current user")
	}

	return user.GetLogin(), nil
}

// pendingReviewIDs returns the ids of the viewer's unsubmitted reviews.
func (c *Client) pendingReviewIDs(ctx context.Context, pr forge.PullRequestRef) (map[int64]bool, error) {
	reviews, _, err := c.gh.PullRequests.ListReviews(ctx, pr.Owner, pr.Repo, pr.Number, &gogh.ListOptions{PerPage: 100})
	if err != nil {
		return nil, classifyError(err, "list reviews")
	}

	pending := make(map[int64]bool)
	for _, r := range reviews {
		if strings.EqualFold(r.GetState(), "PENDING") {
			pending[r.GetID()] = true
		}
	}

	return pending, nil
}

func (c *Client) listReviews(ctx context.Context, pr forge.PullRequestRef) ([]forge.TimelineEvent, error) {
	reviews, _, err := c.gh.PullRequests.ListReviews(ctx, pr.Owner, pr.Repo, pr.Number, &gogh.ListOptions{PerPage: 100})
	if err != nil {
		return nil, classifyError(err, "list reviews")
	}

	events := make([]forge.TimelineEvent, 0, len(reviews))
	for _, r := range reviews {
		events = append(events, forge.TimelineEvent{
			Kind:      forge.EventReview,
			ID:        r.GetID(),
			Actor:     r.GetUser().GetLogin(),
			Body:      r.GetBody(),
			State:     strings.ToLower(r.GetState()),
			CreatedAt: r.GetSubmittedAt().Time,
		})
	}

	return events, nil
}

func (c *Client) listIssueComments(ctx context.Context, pr forge.PullRequestRef) ([]forge.TimelineEvent, error) {
	var events []forge.TimelineEvent

	opts := &gogh.IssueListCommentsOptions{
		ListOptions: gogh.ListOptions{PerPage: 100},
	}

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, pr.Owner, pr.Repo, pr.Number, opts)
		if err != nil {
			return nil, classifyError(err, "list issue comments")
		}

		for _, ic := range comments {
			events = append(events, forge.TimelineEvent{
				Kind:      forge.EventComment,
				ID:        ic.GetID(),
				Actor:     ic.GetUser().GetLogin(),
				Body:      ic.GetBody(),
				CreatedAt: ic.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}

func (c *Client) listTimelineEvents(ctx context.Context, pr forge.PullRequestRef) ([]forge.TimelineEvent, error) {
	var events []forge.TimelineEvent

	opts := &gogh.ListOptions{PerPage: 100}

	for {
		timeline, resp, err := c.gh.Issues.ListIssueTimeline(ctx, pr.Owner, pr.Repo, pr.Number, opts)
		if err != nil {
			return nil, classifyError(err, "list timeline")
		}

		for _, ev := range timeline {
			mapped, ok := mapTimelineEvent(ev)
			if !ok {
				continue
			}
			events = append(events, mapped)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}

// mapPullRequest converts a GitHub pull request into the domain shape.
// Nullable API fields are resolved here, at the client seam, so downstream
// code never re-checks them.
func mapPullRequest(owner, repo string, pr *gogh.PullRequest) forge.PullRequest {
	return forge.PullRequest{
		Ref: forge.PullRequestRef{
			Owner:        owner,
			Repo:         repo,
			Number:       pr.GetNumber(),
			Author:       pr.GetUser().GetLogin(),
			HeadRef:      pr.GetHead().GetRef(),
			BaseRef:      pr.GetBase().GetRef(),
			HeadCloneURL: pr.GetHead().GetRepo().GetCloneURL(),
			BaseCloneURL: pr.GetBase().GetRepo().GetCloneURL(),
		},
		Title:     pr.GetTitle(),
		State:     strings.ToLower(pr.GetState()),
		Draft:     pr.GetDraft(),
		URL:       pr.GetHTMLURL(),
		UpdatedAt: pr.GetUpdatedAt().Time,
	}
}

// mapComment converts a GitHub review comment into the domain shape. The
// pending flag comes from the owning review's state, because GitHub does not
// mark the comments themselves.
func mapComment(gc *gogh.PullRequestComment, pendingReviews map[int64]bool) forge.Comment {
	comment := forge.Comment{
		ID:        gc.GetID(),
		Path:      gc.GetPath(),
		Body:      gc.GetBody(),
		Author:    gc.GetUser().GetLogin(),
		CreatedAt: gc.GetCreatedAt().Time,
	}

	if gc.InReplyTo != nil {
		replyTo := gc.GetInReplyTo()
		comment.InReplyTo = &replyTo
	}

	if gc.PullRequestReviewID != nil {
		reviewID := gc.GetPullRequestReviewID()
		comment.ReviewID = &reviewID
		comment.IsPending = pendingReviews[reviewID]
	}

	if gc.Position != nil {
		position := gc.GetPosition()
		comment.Position = &position
	}

	return comment
}

// mapTimelineEvent converts one timeline entry. Review and comment entries
// return ok=false because they are sourced from their dedicated endpoints.
func mapTimelineEvent(ev *gogh.Timeline) (forge.TimelineEvent, bool) {
	base := forge.TimelineEvent{
		ID:        ev.GetID(),
		Actor:     ev.GetActor().GetLogin(),
		CreatedAt: ev.GetCreatedAt().Time,
	}

	switch ev.GetEvent() {
	case "committed":
		base.Kind = forge.EventCommit
		base.SHA = ev.GetSHA()
	case "merged":
		base.Kind = forge.EventMerge
		base.SHA = ev.GetCommitID()
	case "assigned", "unassigned":
		base.Kind = forge.EventAssign
	case "head_ref_deleted":
		base.Kind = forge.EventHeadRefDeleted
	case "reviewed", "commented":
		// Covered by the review and issue comment endpoints
		return forge.TimelineEvent{}, false
	default:
		base.Kind = forge.EventOther
	}

	return base, true
}

// classifyError maps GitHub API failures onto the application error taxonomy.
func classifyError(err error, operation string) error {
	var ghErr *gogh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			return appErrors.ErrPRNotFound
		case http.StatusUnauthorized:
			return appErrors.ErrNotAuthenticated
		}
	}

	return appErrors.WrapWithContext(err, operation)
}

func isUnauthorized(err error) bool {
	var ghErr *gogh.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnauthorized
}
