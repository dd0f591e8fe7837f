// Package git drives one local working copy through git commands
package git

import "context"

// Branch describes a local branch and its configured upstream.
type Branch struct {
	// Name is the local branch name
	Name string

	// Remote is the upstream remote name, empty when no upstream is set
	Remote string

	// Merge is the upstream ref, e.g. refs/heads/main
	Merge string
}

// Remote describes a configured remote.
type Remote struct {
	// Name is the remote name
	Name string

	// FetchURL is the remote's fetch URL
	FetchURL string
}

// ConfigEntry is one key/value pair from the repository configuration.
type ConfigEntry struct {
	Key   string
	Value string
}

// Client defines the interface for operations on a single working copy
type Client interface {
	// CurrentBranch returns the name of the checked-out branch
	CurrentBranch(ctx context.Context) (string, error)

	// GetBranch returns a local branch with its upstream configuration
	GetBranch(ctx context.Context, name string) (*Branch, error)

	// BranchExists reports whether a local branch exists
	BranchExists(ctx context.Context, name string) (bool, error)

	// Checkout switches the working copy to the specified branch
	Checkout(ctx context.Context, branch string) error

	// CreateBranch creates a branch pointing at the given commit without
	// switching to it. An empty fromCommit uses the current HEAD
	CreateBranch(ctx context.Context, branch, fromCommit string) error

	// Fetch downloads a single refspec from a remote. A depth of 0 fetches
	// the full available history
	Fetch(ctx context.Context, remote, refspec string, depth int) error

	// Pull integrates upstream changes into the current branch. With
	// unshallow set it also completes a shallow clone's history and
	// returns ErrRepositoryComplete when the history was already full
	Pull(ctx context.Context, unshallow bool) error

	// SetBranchUpstream points a branch's upstream at remote/mergeRef
	SetBranchUpstream(ctx context.Context, branch, remote, mergeRef string) error

	// AheadBehind counts commits local has over upstream and vice versa
	AheadBehind(ctx context.Context, local, upstream string) (ahead, behind int, err error)

	// IsShallow reports whether the working copy has truncated history
	IsShallow(ctx context.Context) (bool, error)

	// GetConfig reads one local configuration value
	GetConfig(ctx context.Context, key string) (string, error)

	// SetConfig writes one local configuration value
	SetConfig(ctx context.Context, key, value string) error

	// UnsetConfig removes one local configuration value
	UnsetConfig(ctx context.Context, key string) error

	// GetConfigs returns all local configuration entries
	GetConfigs(ctx context.Context) ([]ConfigEntry, error)

	// AddRemote registers a remote
	AddRemote(ctx context.Context, name, url string) error

	// RemoveRemote deletes a remote and its configuration
	RemoveRemote(ctx context.Context, name string) error

	// Remotes lists the configured remotes with their fetch URLs
	Remotes(ctx context.Context) ([]Remote, error)
}
