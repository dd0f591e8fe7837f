// Package conversation threads flat review comments onto their timeline
// events, producing the reply trees a review view renders.
package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/logging"
)

// Reconciler fetches a pull request's timeline and comments and links them
// into threaded events. Calls for the same pull request are serialized so
// concurrent refreshes cannot interleave partially built trees; the most
// recently fetched data wins wholesale.
type Reconciler struct {
	client forge.Client
	logger *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReconciler creates a reconciler over the given API client.
func NewReconciler(client forge.Client, logger *logrus.Logger) *Reconciler {
	return &Reconciler{
		client: client,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing work on one pull request.
func (r *Reconciler) lockFor(ref forge.PullRequestRef) *sync.Mutex {
	key := fmt.Sprintf("%s/%s#%d", ref.Owner, ref.Repo, ref.Number)

	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}

	return lock
}

// Reconcile fetches the pull request's flat comments and timeline events and
// returns the events with their comment threads populated. Comment edit and
// delete flags are computed against the authenticated login; an
// unauthenticated session simply leaves them false.
func (r *Reconciler) Reconcile(ctx context.Context, ref forge.PullRequestRef) ([]forge.TimelineEvent, error) {
	if ref.Owner == "" || ref.Repo == "" || ref.Number == 0 {
		return nil, appErrors.ErrNoPullRequest
	}

	lock := r.lockFor(ref)
	lock.Lock()
	defer lock.Unlock()

	comments, err := r.client.GetComments(ctx, ref)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "failed to list review comments")
	}

	events, err := r.client.GetTimeline(ctx, ref)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "failed to list timeline events")
	}

	login, err := r.client.CurrentLogin(ctx)
	if err != nil {
		login = ""
	}
	comments = ApplyPermissions(comments, login)

	threaded := Thread(events, comments)

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			logging.StandardFields.Component: logging.ComponentNames.Conversation,
			logging.StandardFields.Repo:      ref.Owner + "/" + ref.Repo,
			logging.StandardFields.PRNumber:  ref.Number,
			logging.StandardFields.ItemCount: len(comments),
		}).Debug("Reconciled conversation")
	}

	return threaded, nil
}

// ApplyPermissions returns a copy of comments with edit and delete flags set
// for the given viewer login. An empty login grants nothing.
func ApplyPermissions(comments []forge.Comment, login string) []forge.Comment {
	out := make([]forge.Comment, len(comments))
	copy(out, comments)

	for i := range out {
		owned := login != "" && out[i].Author == login
		out[i].CanEdit = owned
		out[i].CanDelete = owned
	}

	return out
}

// Thread links flat comments onto their review events and returns new event
// values; neither input slice is mutated.
//
// Replies are resolved by walking the comment list in reverse arrival order:
// a reply is prepended, together with any children already linked to it, to
// the front of its parent's child list. Because comments arrive oldest
// first, every comment's children have already been collected by the time
// the comment itself is visited, so each thread comes out root to leaf.
//
// A comment id appearing more than once keeps only its most recently fetched
// value; the API reports an outdated nil position once a comment's diff
// location goes stale, and the newer report is authoritative.
//
// Comments belonging to the viewer's unsubmitted review are identified by
// their pending flag, not by review id linkage: the remote does not assign a
// stable review id until submission. They are placed exclusively on the
// single pending review event. Comments whose review id matches no event are
// dropped; a review deleted after its comments were loaded is not an error.
func Thread(events []forge.TimelineEvent, comments []forge.Comment) []forge.TimelineEvent {
	out := make([]forge.TimelineEvent, len(events))
	copy(out, events)

	eventIdx := make(map[int64]int)
	pendingIdx := -1

	for i := range out {
		if out[i].Kind != forge.EventReview {
			continue
		}

		out[i].Comments = nil
		eventIdx[out[i].ID] = i

		if out[i].State == forge.ReviewStatePending {
			pendingIdx = i
		}
	}

	// Last fetch wins for duplicate ids; arrival order is the order of a
	// comment's first appearance.
	latest := make(map[int64]forge.Comment, len(comments))
	order := make([]int64, 0, len(comments))

	for _, c := range comments {
		if _, seen := latest[c.ID]; !seen {
			order = append(order, c.ID)
		}
		latest[c.ID] = c
	}

	// Reverse walk collecting each comment's descendants.
	children := make(map[int64][]forge.Comment)

	for i := len(order) - 1; i >= 0; i-- {
		c := latest[order[i]]
		if c.InReplyTo == nil {
			continue
		}

		chain := make([]forge.Comment, 0, 1+len(children[c.ID]))
		chain = append(chain, c)
		chain = append(chain, children[c.ID]...)

		children[*c.InReplyTo] = append(chain, children[*c.InReplyTo]...)
	}

	// Attach each root's chain to its owning review event.
	for _, id := range order {
		c := latest[id]
		if c.InReplyTo != nil {
			continue
		}

		if c.ReviewID == nil {
			continue
		}

		idx, ok := eventIdx[*c.ReviewID]
		if !ok {
			continue
		}

		out[idx].Comments = append(out[idx].Comments, c)
		out[idx].Comments = append(out[idx].Comments, children[c.ID]...)
	}

	// Pending comments live exclusively on the pending review event.
	var pending []forge.Comment
	for _, id := range order {
		if c := latest[id]; c.IsPending {
			pending = append(pending, c)
		}
	}

	if pendingIdx >= 0 {
		out[pendingIdx].Comments = pending
	}

	if len(pending) > 0 {
		for i := range out {
			if i == pendingIdx || len(out[i].Comments) == 0 {
				continue
			}

			kept := out[i].Comments[:0:0]
			for _, c := range out[i].Comments {
				if !c.IsPending {
					kept = append(kept, c)
				}
			}
			out[i].Comments = kept
		}
	}

	return out
}
