package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gogh "github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
)

func TestMapPullRequest(t *testing.T) {
	pr := &gogh.PullRequest{
		Number: gogh.Ptr(7),
		Title:  gogh.Ptr("Fix things"),
		State:  gogh.Ptr("OPEN"),
		Draft:  gogh.Ptr(true),
		User:   &gogh.User{Login: gogh.Ptr("alice")},
		Head: &gogh.PullRequestBranch{
			Ref:  gogh.Ptr("feature"),
			Repo: &gogh.Repository{CloneURL: gogh.Ptr("https://github.com/alice/widget.git")},
		},
		Base: &gogh.PullRequestBranch{
			Ref:  gogh.Ptr("main"),
			Repo: &gogh.Repository{CloneURL: gogh.Ptr("https://github.com/acme/widget.git")},
		},
		HTMLURL: gogh.Ptr("https://github.com/acme/widget/pull/7"),
	}

	got := mapPullRequest("acme", "widget", pr)

	assert.Equal(t, 7, got.Ref.Number)
	assert.Equal(t, "acme", got.Ref.Owner)
	assert.Equal(t, "widget", got.Ref.Repo)
	assert.Equal(t, "alice", got.Ref.Author)
	assert.Equal(t, "feature", got.Ref.HeadRef)
	assert.Equal(t, "main", got.Ref.BaseRef)
	assert.Equal(t, "open", got.State, "state is normalized to lowercase")
	assert.True(t, got.Draft)
	assert.True(t, got.Ref.IsFork(), "differing clone URLs mean a fork")
}

func TestMapPullRequestSameRepo(t *testing.T) {
	cloneURL := "https://github.com/acme/widget.git"
	pr := &gogh.PullRequest{
		Number: gogh.Ptr(8),
		User:   &gogh.User{Login: gogh.Ptr("bob")},
		Head: &gogh.PullRequestBranch{
			Ref:  gogh.Ptr("topic"),
			Repo: &gogh.Repository{CloneURL: gogh.Ptr(cloneURL)},
		},
		Base: &gogh.PullRequestBranch{
			Ref:  gogh.Ptr("main"),
			Repo: &gogh.Repository{CloneURL: gogh.Ptr(cloneURL)},
		},
	}

	got := mapPullRequest("acme", "widget", pr)
	assert.False(t, got.Ref.IsFork())
}

func TestMapComment(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		comment        *gogh.PullRequestComment
		pendingReviews map[int64]bool
		expectPending  bool
		expectReplyTo  *int64
		expectPosition *int
	}{
		{
			name: "root comment on submitted review",
			comment: &gogh.PullRequestComment{
				ID:                  gogh.Ptr(int64(1)),
				Body:                gogh.Ptr("looks good"),
				User:                &gogh.User{Login: gogh.Ptr("alice")},
				PullRequestReviewID: gogh.Ptr(int64(100)),
				Position:            gogh.Ptr(4),
				Path:                gogh.Ptr("main.go"),
				CreatedAt:           &gogh.Timestamp{Time: created},
			},
			pendingReviews: map[int64]bool{},
			expectPosition: gogh.Ptr(4),
		},
		{
			name: "reply comment on pending review",
			comment: &gogh.PullRequestComment{
				ID:                  gogh.Ptr(int64(2)),
				InReplyTo:           gogh.Ptr(int64(1)),
				PullRequestReviewID: gogh.Ptr(int64(200)),
				User:                &gogh.User{Login: gogh.Ptr("bob")},
			},
			pendingReviews: map[int64]bool{200: true},
			expectPending:  true,
			expectReplyTo:  gogh.Ptr(int64(1)),
		},
		{
			name: "outdated comment has nil position",
			comment: &gogh.PullRequestComment{
				ID:                  gogh.Ptr(int64(3)),
				PullRequestReviewID: gogh.Ptr(int64(100)),
				User:                &gogh.User{Login: gogh.Ptr("alice")},
			},
			pendingReviews: map[int64]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapComment(tt.comment, tt.pendingReviews)

			assert.Equal(t, tt.comment.GetID(), got.ID)
			assert.Equal(t, tt.expectPending, got.IsPending)

			if tt.expectReplyTo == nil {
				assert.Nil(t, got.InReplyTo)
			} else {
				require.NotNil(t, got.InReplyTo)
				assert.Equal(t, *tt.expectReplyTo, *got.InReplyTo)
			}

			if tt.expectPosition == nil {
				assert.Nil(t, got.Position)
			} else {
				require.NotNil(t, got.Position)
				assert.Equal(t, *tt.expectPosition, *got.Position)
			}
		})
	}
}

func TestMapTimelineEvent(t *testing.T) {
	tests := []struct {
		name       string
		event      string
		expectKind forge.EventKind
		expectSkip bool
	}{
		{name: "committed", event: "committed", expectKind: forge.EventCommit},
		{name: "merged", event: "merged", expectKind: forge.EventMerge},
		{name: "assigned", event: "assigned", expectKind: forge.EventAssign},
		{name: "head ref deleted", event: "head_ref_deleted", expectKind: forge.EventHeadRefDeleted},
		{name: "reviewed is sourced elsewhere", event: "reviewed", expectSkip: true},
		{name: "commented is sourced elsewhere", event: "commented", expectSkip: true},
		{name: "unmodeled kind becomes other", event: "labeled", expectKind: forge.EventOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mapTimelineEvent(&gogh.Timeline{
				ID:    gogh.Ptr(int64(9)),
				Event: gogh.Ptr(tt.event),
			})

			if tt.expectSkip {
				assert.False(t, ok)
				return
			}

			require.True(t, ok)
			assert.Equal(t, tt.expectKind, got.Kind)
			assert.Equal(t, int64(9), got.ID)
		})
	}
}

func TestHTTPProber(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("X-GitHub-Request-Id", "ABCD")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("GitHub lives!"))
	}))
	defer server.Close()

	prober := NewProber("secret-token", time.Second)

	result, err := prober.Probe(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "ABCD", result.Headers.Get("X-GitHub-Request-Id"))
	assert.Equal(t, []byte("GitHub lives!"), result.Body)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestHTTPProberNetworkFailure(t *testing.T) {
	prober := NewProber("", 100*time.Millisecond)

	_, err := prober.Probe(context.Background(), "http://127.0.0.1:1/unreachable")
	require.Error(t, err)
}
