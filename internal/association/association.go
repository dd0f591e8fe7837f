// Package association manages the link between local branches and the pull
// requests they were checked out from. Associations and extension-created
// remotes are persisted in the repository's git configuration so they
// survive process restarts.
package association

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/git"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/logging"
)

const (
	// branchMetadataKey holds "<owner>#<repo>#<number>" under branch.<name>.
	branchMetadataKey = "github-pr-owner-number"

	// remoteSentinelKey marks remotes this tool created under remote.<name>.
	remoteSentinelKey = "github-pr-remote"

	// maxNameProbes bounds the numeric-suffix search for unique names.
	maxNameProbes = 1000
)

// ErrNameSpaceExhausted is returned when no unique name could be found.
var ErrNameSpaceExhausted = errors.New("could not find a unique name")

// Association identifies the pull request a local branch tracks.
type Association struct {
	// Owner is the base repository owner
	Owner string

	// Repo is the base repository name
	Repo string

	// Number is the pull request number
	Number int
}

// String renders the association in its persisted form.
func (a Association) String() string {
	return fmt.Sprintf("%s#%s#%d", a.Owner, a.Repo, a.Number)
}

// parseAssociation parses the persisted "<owner>#<repo>#<number>" form.
func parseAssociation(value string) (*Association, error) {
	parts := strings.Split(value, "#")
	if len(parts) != 3 {
		return nil, appErrors.FormatError("association", value, "<owner>#<repo>#<number>")
	}

	number, err := strconv.Atoi(parts[2])
	if err != nil || parts[0] == "" || parts[1] == "" {
		return nil, appErrors.FormatError("association", value, "<owner>#<repo>#<number>")
	}

	return &Association{Owner: parts[0], Repo: parts[1], Number: number}, nil
}

// Options configures an Associator.
type Options struct {
	// BaseRemote is the remote of the base repository, "origin" if empty
	BaseRemote string
}

// Associator performs pull request checkouts against one working copy.
// Checkout operations mutate shared git state (HEAD, index, config) and are
// serialized internally; read-only lookups are not.
type Associator struct {
	git        git.Client
	logger     *logrus.Logger
	baseRemote string

	mu sync.Mutex
}

// NewAssociator creates an associator over the given working copy.
func NewAssociator(gitClient git.Client, logger *logrus.Logger, opts Options) *Associator {
	baseRemote := opts.BaseRemote
	if baseRemote == "" {
		baseRemote = "origin"
	}

	return &Associator{
		git:        gitClient,
		logger:     logger,
		baseRemote: baseRemote,
	}
}

// FindUniqueBranchName probes the local branch store for preferred,
// preferred-1, preferred-2 and so on, returning the first free name. It
// never creates the branch; the caller must do so promptly.
func (a *Associator) FindUniqueBranchName(ctx context.Context, preferred string) (string, error) {
	return findUniqueName(preferred, func(name string) (bool, error) {
		return a.git.BranchExists(ctx, name)
	})
}

// FindUniqueRemoteName applies the same collision avoidance over the local
// remote store.
func (a *Associator) FindUniqueRemoteName(ctx context.Context, preferred string) (string, error) {
	remotes, err := a.git.Remotes(ctx)
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(remotes))
	for _, remote := range remotes {
		taken[remote.Name] = true
	}

	return findUniqueName(preferred, func(name string) (bool, error) {
		return taken[name], nil
	})
}

func findUniqueName(preferred string, exists func(string) (bool, error)) (string, error) {
	for i := 0; i <= maxNameProbes; i++ {
		candidate := preferred
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", preferred, i)
		}

		used, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNameSpaceExhausted, preferred)
}

// CreateForkRemote ensures a remote for the given fork clone URL exists and
// returns its name. An existing remote whose URL points at the same
// repository is reused; a newly created remote uses the same protocol as
// the base remote and is tagged as tool-created so it can later be cleaned
// up safely.
func (a *Associator) CreateForkRemote(ctx context.Context, forkCloneURL string) (string, error) {
	normalized, err := normalizeCloneURL(forkCloneURL)
	if err != nil {
		return "", err
	}

	remotes, err := a.git.Remotes(ctx)
	if err != nil {
		return "", err
	}

	var baseURL string
	for _, remote := range remotes {
		if existing, normErr := normalizeCloneURL(remote.FetchURL); normErr == nil && existing.equal(normalized) {
			return remote.Name, nil
		}
		if remote.Name == a.baseRemote {
			baseURL = remote.FetchURL
		}
	}

	name, err := a.FindUniqueRemoteName(ctx, normalized.owner)
	if err != nil {
		return "", err
	}

	url := normalized.httpsURL()
	if isSSHCloneURL(baseURL) {
		url = normalized.sshURL()
	}

	if err := a.git.AddRemote(ctx, name, url); err != nil {
		return "", err
	}

	if err := a.git.SetConfig(ctx, sentinelConfigKey(name), "true"); err != nil {
		return "", err
	}

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			logging.StandardFields.Component:  logging.ComponentNames.Association,
			logging.StandardFields.RemoteName: name,
		}).Debug("Created fork remote")
	}

	return name, nil
}

// CheckoutFromFork checks out a pull request whose head lives in a fork.
// The local branch is named pr/<author>/<number>, with a numeric suffix on
// collision. A failure partway leaves the working copy in the last
// completed state; nothing is rolled back.
func (a *Associator) CheckoutFromFork(ctx context.Context, ref forge.PullRequestRef) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	preferred := fmt.Sprintf("pr/%s/%d", ref.Author, ref.Number)

	branch, err := a.FindUniqueBranchName(ctx, preferred)
	if err != nil {
		return err
	}

	remote, err := a.CreateForkRemote(ctx, ref.HeadCloneURL)
	if err != nil {
		return err
	}

	refspec := ref.HeadRef + ":" + branch
	if err := a.git.Fetch(ctx, remote, refspec, 0); err != nil {
		return err
	}

	if err := a.git.Checkout(ctx, branch); err != nil {
		return err
	}

	if err := a.git.SetBranchUpstream(ctx, branch, remote, ref.HeadRef); err != nil {
		return err
	}

	if err := a.unshallowOrPull(ctx); err != nil {
		return err
	}

	return a.persistAssociation(ctx, branch, ref)
}

// CheckoutSameRepo checks out a pull request whose head branch lives in the
// base repository itself. An existing local branch of the same name is
// reused and fast-forwarded when it is behind but not ahead of upstream.
func (a *Associator) CheckoutSameRepo(ctx context.Context, ref forge.PullRequestRef) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	branch := ref.HeadRef

	exists, err := a.git.BranchExists(ctx, branch)
	if err != nil {
		return err
	}

	if exists {
		if err := a.git.Checkout(ctx, branch); err != nil {
			return err
		}

		ahead, behind, aheadErr := a.git.AheadBehind(ctx, branch, a.baseRemote+"/"+ref.HeadRef)
		if aheadErr == nil && behind > 0 && ahead == 0 {
			if err := a.git.Pull(ctx, false); err != nil {
				return err
			}
		}

		return a.persistAssociation(ctx, branch, ref)
	}

	refspec := ref.HeadRef + ":" + branch
	if err := a.git.Fetch(ctx, a.baseRemote, refspec, 0); err != nil {
		return err
	}

	if err := a.git.Checkout(ctx, branch); err != nil {
		return err
	}

	if err := a.git.SetBranchUpstream(ctx, branch, a.baseRemote, ref.HeadRef); err != nil {
		return err
	}

	if err := a.unshallowOrPull(ctx); err != nil {
		return err
	}

	return a.persistAssociation(ctx, branch, ref)
}

// unshallowOrPull completes a shallow clone's history. Unshallowing a
// repository that already has full history is an expected failure and falls
// back to a plain pull.
func (a *Associator) unshallowOrPull(ctx context.Context) error {
	err := a.git.Pull(ctx, true)
	if err == nil {
		return nil
	}

	if errors.Is(err, git.ErrRepositoryComplete) {
		return a.git.Pull(ctx, false)
	}

	return err
}

func (a *Associator) persistAssociation(ctx context.Context, branch string, ref forge.PullRequestRef) error {
	assoc := Association{Owner: ref.Owner, Repo: ref.Repo, Number: ref.Number}

	if err := a.git.SetConfig(ctx, metadataConfigKey(branch), assoc.String()); err != nil {
		return err
	}

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			logging.StandardFields.Component:  logging.ComponentNames.Association,
			logging.StandardFields.BranchName: branch,
			logging.StandardFields.Repo:       ref.Owner + "/" + ref.Repo,
			logging.StandardFields.PRNumber:   ref.Number,
		}).Info("Checked out pull request")
	}

	return nil
}

// AssociationForBranch returns the pull request a local branch tracks, or
// ErrNoAssociation when the branch was never associated.
func (a *Associator) AssociationForBranch(ctx context.Context, branch string) (*Association, error) {
	value, err := a.git.GetConfig(ctx, metadataConfigKey(branch))
	if err != nil {
		if errors.Is(err, git.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: %s", appErrors.ErrNoAssociation, branch)
		}
		return nil, err
	}

	return parseAssociation(value)
}

// BranchForPullRequest returns the local branch associated with a pull
// request, or ErrNoAssociation when none is.
func (a *Associator) BranchForPullRequest(ctx context.Context, ref forge.PullRequestRef) (string, error) {
	entries, err := a.git.GetConfigs(ctx)
	if err != nil {
		return "", err
	}

	want := Association{Owner: ref.Owner, Repo: ref.Repo, Number: ref.Number}.String()

	for _, entry := range entries {
		branch, ok := branchFromMetadataKey(entry.Key)
		if ok && entry.Value == want {
			return branch, nil
		}
	}

	return "", fmt.Errorf("%w: %s", appErrors.ErrNoAssociation, want)
}

// IsRemoteOrphaned reports whether a remote was created by this tool and no
// local branch currently has it as upstream.
func (a *Associator) IsRemoteOrphaned(ctx context.Context, remote string) (bool, error) {
	sentinel, err := a.git.GetConfig(ctx, sentinelConfigKey(remote))
	if err != nil {
		if errors.Is(err, git.ErrConfigNotFound) {
			return false, nil
		}
		return false, err
	}
	if sentinel != "true" {
		return false, nil
	}

	entries, err := a.git.GetConfigs(ctx)
	if err != nil {
		return false, err
	}

	for _, entry := range entries {
		if strings.HasPrefix(entry.Key, "branch.") &&
			strings.HasSuffix(entry.Key, ".remote") &&
			entry.Value == remote {
			return false, nil
		}
	}

	return true, nil
}

// CleanupOrphanedRemotes removes every tool-created remote no branch uses
// anymore and returns the removed names.
func (a *Associator) CleanupOrphanedRemotes(ctx context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	remotes, err := a.git.Remotes(ctx)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, remote := range remotes {
		orphaned, err := a.IsRemoteOrphaned(ctx, remote.Name)
		if err != nil {
			return removed, err
		}
		if !orphaned {
			continue
		}

		if err := a.git.RemoveRemote(ctx, remote.Name); err != nil {
			return removed, err
		}

		removed = append(removed, remote.Name)

		if a.logger != nil {
			a.logger.WithFields(logrus.Fields{
				logging.StandardFields.Component:  logging.ComponentNames.Association,
				logging.StandardFields.RemoteName: remote.Name,
			}).Info("Removed orphaned remote")
		}
	}

	return removed, nil
}

func metadataConfigKey(branch string) string {
	return "branch." + branch + "." + branchMetadataKey
}

func sentinelConfigKey(remote string) string {
	return "remote." + remote + "." + remoteSentinelKey
}

// branchFromMetadataKey extracts the branch name from a persisted metadata
// key. Branch names may themselves contain dots, so only the fixed prefix
// and suffix are stripped.
func branchFromMetadataKey(key string) (string, bool) {
	const prefix = "branch."

	suffix := "." + branchMetadataKey
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, suffix) {
		return "", false
	}

	branch := key[len(prefix) : len(key)-len(suffix)]
	if branch == "" {
		return "", false
	}

	return branch, true
}
