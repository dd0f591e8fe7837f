package forge

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/testutil"
)

// MockClient is a mock implementation of the Client interface
type MockClient struct {
	mock.Mock
}

// NewMockClient creates a new MockClient
func NewMockClient() *MockClient {
	return &MockClient{}
}

// ListPullRequests mock implementation
func (m *MockClient) ListPullRequests(ctx context.Context, owner, repo string, query Query, page int) (*Page, error) {
	args := m.Called(ctx, owner, repo, query, page)
	return testutil.HandleTwoValueReturn[*Page](args)
}

// GetPullRequest mock implementation
func (m *MockClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	args := m.Called(ctx, owner, repo, number)
	return testutil.HandleTwoValueReturn[*PullRequest](args)
}

// GetComments mock implementation
func (m *MockClient) GetComments(ctx context.Context, pr PullRequestRef) ([]Comment, error) {
	args := m.Called(ctx, pr)
	return testutil.HandleTwoValueReturn[[]Comment](args)
}

// GetTimeline mock implementation
func (m *MockClient) GetTimeline(ctx context.Context, pr PullRequestRef) ([]TimelineEvent, error) {
	args := m.Called(ctx, pr)
	return testutil.HandleTwoValueReturn[[]TimelineEvent](args)
}

// CurrentLogin mock implementation
func (m *MockClient) CurrentLogin(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockProber is a mock implementation of the Prober interface
type MockProber struct {
	mock.Mock
}

// NewMockProber creates a new MockProber
func NewMockProber() *MockProber {
	return &MockProber{}
}

// Probe mock implementation
func (m *MockProber) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	args := m.Called(ctx, url)
	return testutil.HandleTwoValueReturn[*ProbeResult](args)
}
