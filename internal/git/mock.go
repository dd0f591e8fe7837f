package git

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

// CurrentBranch mock implementation
func (m *MockClient) CurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// GetBranch mock implementation
func (m *MockClient) GetBranch(ctx context.Context, name string) (*Branch, error) {
	args := m.Called(ctx, name)
	return testutil.HandleTwoValueReturn[*Branch](args)
}

// BranchExists mock implementation
func (m *MockClient) BranchExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// Checkout mock implementation
func (m *MockClient) Checkout(ctx context.Context, branch string) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

// CreateBranch mock implementation
func (m *MockClient) CreateBranch(ctx context.Context, branch, fromCommit string) error {
	args := m.Called(ctx, branch, fromCommit)
	return args.Error(0)
}

// Fetch mock implementation
func (m *MockClient) Fetch(ctx context.Context, remote, refspec string, depth int) error {
	args := m.Called(ctx, remote, refspec, depth)
	return args.Error(0)
}

// Pull mock implementation
func (m *MockClient) Pull(ctx context.Context, unshallow bool) error {
	args := m.Called(ctx, unshallow)
	return args.Error(0)
}

// SetBranchUpstream mock implementation
func (m *MockClient) SetBranchUpstream(ctx context.Context, branch, remote, mergeRef string) error {
	args := m.Called(ctx, branch, remote, mergeRef)
	return args.Error(0)
}

// AheadBehind mock implementation
func (m *MockClient) AheadBehind(ctx context.Context, local, upstream string) (int, int, error) {
	args := m.Called(ctx, local, upstream)
	return args.Int(0), args.Int(1), args.Error(2)
}

// IsShallow mock implementation
func (m *MockClient) IsShallow(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// GetConfig mock implementation
func (m *MockClient) GetConfig(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// SetConfig mock implementation
func (m *MockClient) SetConfig(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// UnsetConfig mock implementation
func (m *MockClient) UnsetConfig(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetConfigs mock implementation
func (m *MockClient) GetConfigs(ctx context.Context) ([]ConfigEntry, error) {
	args := m.Called(ctx)
	return testutil.HandleTwoValueReturn[[]ConfigEntry](args)
}

// AddRemote mock implementation
func (m *MockClient) AddRemote(ctx context.Context, name, url string) error {
	args := m.Called(ctx, name, url)
	return args.Error(0)
}

// RemoveRemote mock implementation
func (m *MockClient) RemoveRemote(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// Remotes mock implementation
func (m *MockClient) Remotes(ctx context.Context) ([]Remote, error) {
	args := m.Called(ctx)
	return testutil.HandleTwoValueReturn[[]Remote](args)
}
