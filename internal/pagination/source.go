package pagination

import (
	"context"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
)

// RepoSource adapts one repository of a forge client to the Source
// interface. Query ids are resolved to concrete queries through the
// supplied lookup, so the same source serves any number of logical queries.
type RepoSource struct {
	client forge.Client
	owner  string
	repo   string
	lookup func(queryID string) forge.Query
}

// NewRepoSource creates a source for owner/repo. A nil lookup resolves
// every query id to an open-state listing.
func NewRepoSource(client forge.Client, owner, repo string, lookup func(queryID string) forge.Query) *RepoSource {
	if lookup == nil {
		lookup = func(queryID string) forge.Query {
			return forge.Query{ID: queryID, State: "open"}
		}
	}

	return &RepoSource{
		client: client,
		owner:  owner,
		repo:   repo,
		lookup: lookup,
	}
}

// ID returns the owner/repo identifier of this source.
func (s *RepoSource) ID() string {
	return s.owner + "/" + s.repo
}

// FetchPage returns one page of pull requests for the resolved query.
func (s *RepoSource) FetchPage(ctx context.Context, queryID string, page int) (*forge.Page, error) {
	return s.client.ListPullRequests(ctx, s.owner, s.repo, s.lookup(queryID), page)
}
