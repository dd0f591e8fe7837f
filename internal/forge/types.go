// Package forge defines the collaborator interfaces and domain types for the
// remote pull request host. Concrete implementations live in subpackages.
package forge

import (
	"net/http"
	"time"
)

// PullRequestRef identifies a pull request independent of any local state.
type PullRequestRef struct {
	// Owner is the login of the base repository owner
	Owner string

	// Repo is the base repository name
	Repo string

	// Number is the pull request number
	Number int

	// Author is the login of the pull request author
	Author string

	// HeadRef is the name of the branch the pull request was opened from
	HeadRef string

	// BaseRef is the name of the branch the pull request targets
	BaseRef string

	// HeadCloneURL is the clone URL of the repository holding the head branch
	HeadCloneURL string

	// BaseCloneURL is the clone URL of the base repository
	BaseCloneURL string
}

// IsFork reports whether the head branch lives in a different repository
// than the base branch.
func (r PullRequestRef) IsFork() bool {
	return r.HeadCloneURL != "" && r.HeadCloneURL != r.BaseCloneURL
}

// PullRequest is a single pull request as returned by a listing query.
type PullRequest struct {
	// Ref identifies the pull request and its branches
	Ref PullRequestRef

	// Title is the pull request title
	Title string

	// State is the lowercase state ("open", "closed", "merged")
	State string

	// Draft indicates a draft pull request
	Draft bool

	// URL is the human-facing URL
	URL string

	// UpdatedAt is the last modification time reported by the host
	UpdatedAt time.Time
}

// Page is one page of pull requests from a single source.
type Page struct {
	// Items holds the pull requests on this page
	Items []PullRequest

	// HasMorePages indicates whether the source has pages beyond this one
	HasMorePages bool
}

// Comment is a single review comment. Comments are immutable once fetched
// except for the permission flags, which are computed against the current
// authenticated identity.
type Comment struct {
	// ID is the host-assigned comment id
	ID int64

	// InReplyTo is the id of the comment this one replies to, if any
	InReplyTo *int64

	// ReviewID is the id of the owning review, if any
	ReviewID *int64

	// Path is the file path the comment is anchored to, if any
	Path string

	// Position is the diff position; nil once the location is outdated
	Position *int

	// Body is the comment text
	Body string

	// Author is the comment author's login
	Author string

	// CreatedAt is the comment creation time
	CreatedAt time.Time

	// IsPending marks comments belonging to the viewer's unsubmitted review
	IsPending bool

	// CanEdit is computed relative to the current authenticated identity
	CanEdit bool

	// CanDelete is computed relative to the current authenticated identity
	CanDelete bool
}

// EventKind discriminates timeline event variants.
type EventKind string

const (
	// EventCommit is a commit pushed to the pull request branch
	EventCommit EventKind = "commit"

	// EventReview is a submitted or pending review
	EventReview EventKind = "review"

	// EventComment is a plain issue comment
	EventComment EventKind = "comment"

	// EventMerge is the merge of the pull request
	EventMerge EventKind = "merge"

	// EventAssign is an assignment change
	EventAssign EventKind = "assignment"

	// EventHeadRefDeleted is the deletion of the head branch
	EventHeadRefDeleted EventKind = "head-ref-deleted"

	// EventOther covers kinds this system does not model further
	EventOther EventKind = "other"
)

// ReviewStatePending is the state of a reviewer's in-progress, unsubmitted
// review. There is at most one per pull request per viewer.
const ReviewStatePending = "pending"

// TimelineEvent is a tagged union over timeline entry kinds. A review-kind
// event owns an ordered list of comments aggregated by the conversation
// reconciler; the host API never attaches comments to events directly.
type TimelineEvent struct {
	// Kind discriminates the variant
	Kind EventKind

	// ID is the host-assigned event id (review id for review events)
	ID int64

	// Actor is the login of the user who caused the event
	Actor string

	// Body is the text payload for review and comment events
	Body string

	// State is the review state for review events ("approved",
	// "changes_requested", "commented", "pending")
	State string

	// SHA is the commit hash for commit events
	SHA string

	// CreatedAt is when the event occurred
	CreatedAt time.Time

	// Comments is populated by the conversation reconciler for review events
	Comments []Comment
}

// ProbeResult is the raw outcome of a host probe request.
type ProbeResult struct {
	// StatusCode is the HTTP status of the response
	StatusCode int

	// Headers holds the response headers
	Headers http.Header

	// Body holds the response body, possibly truncated by the prober
	Body []byte
}

// Query describes one logical pull request listing. Pagination state is
// tracked per (source, query id) pair, so the same repository can be
// paginated independently for different queries.
type Query struct {
	// ID is the caller-defined key identifying this listing
	ID string

	// State filters by pull request state ("open", "closed", "all")
	State string

	// Author restricts the listing to a single author login, if set
	Author string
}
