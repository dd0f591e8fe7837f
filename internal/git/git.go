package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
)

// Common errors
var (
	ErrGitNotFound        = errors.New("git command not found in PATH")
	ErrNotARepository     = errors.New("not a git repository")
	ErrConfigNotFound     = errors.New("configuration key not set")
	ErrRepositoryComplete = errors.New("repository already has full history")
)

// gitClient implements the Client interface using git commands against one
// working copy.
type gitClient struct {
	repoPath string
	logger   *logrus.Logger
}

// NewClient creates a Git client bound to the working copy at repoPath.
func NewClient(repoPath string, logger *logrus.Logger) (Client, error) {
	// Check if git is available
	if _, err := exec.LookPath("git"); err != nil {
		return nil, ErrGitNotFound
	}

	return &gitClient{
		repoPath: repoPath,
		logger:   logger,
	}, nil
}

// CurrentBranch returns the name of the checked-out branch.
func (g *gitClient) CurrentBranch(ctx context.Context) (string, error) {
	output, err := g.output(ctx, "branch", "--show-current")
	if err != nil {
		// Fallback for older git versions
		output, err = g.output(ctx, "symbolic-ref", "--short", "HEAD")
		if err != nil {
			return "", fmt.Errorf("failed to get current branch: %w", err)
		}
	}

	return strings.TrimSpace(output), nil
}

// GetBranch returns a local branch with its upstream configuration.
func (g *gitClient) GetBranch(ctx context.Context, name string) (*Branch, error) {
	exists, err := g.BranchExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", appErrors.ErrBranchNotFound, name)
	}

	branch := &Branch{Name: name}

	if remote, err := g.GetConfig(ctx, "branch."+name+".remote"); err == nil {
		branch.Remote = remote
	}
	if merge, err := g.GetConfig(ctx, "branch."+name+".merge"); err == nil {
		branch.Merge = merge
	}

	return branch, nil
}

// BranchExists reports whether a local branch exists.
func (g *gitClient) BranchExists(ctx context.Context, name string) (bool, error) {
	cmd := g.command(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check branch %s: %w", name, err)
	}

	return true, nil
}

// Checkout switches the working copy to the specified branch.
func (g *gitClient) Checkout(ctx context.Context, branch string) error {
	if err := g.run(ctx, "checkout", branch); err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branch, err)
	}

	return nil
}

// CreateBranch creates a branch pointing at the given commit.
func (g *gitClient) CreateBranch(ctx context.Context, branch, fromCommit string) error {
	args := []string{"branch", branch}
	if fromCommit != "" {
		args = append(args, fromCommit)
	}

	if err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}

	return nil
}

// Fetch downloads a single refspec from a remote.
func (g *gitClient) Fetch(ctx context.Context, remote, refspec string, depth int) error {
	args := []string{"fetch"}
	if depth > 0 {
		args = append(args, "--depth", strconv.Itoa(depth))
	}
	args = append(args, remote, refspec)

	if err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to fetch %s from %s: %w", refspec, remote, err)
	}

	return nil
}

// Pull integrates upstream changes into the current branch.
func (g *gitClient) Pull(ctx context.Context, unshallow bool) error {
	args := []string{"pull"}
	if unshallow {
		args = append(args, "--unshallow")
	}

	if err := g.run(ctx, args...); err != nil {
		// git rejects --unshallow once the history is complete
		if unshallow && strings.Contains(err.Error(), "does not make sense") {
			return ErrRepositoryComplete
		}
		return fmt.Errorf("failed to pull: %w", err)
	}

	return nil
}

// SetBranchUpstream points a branch's upstream at remote/mergeRef. The
// upstream is written as configuration rather than via --set-upstream-to so
// it works for refs fetched directly into a local branch with no
// remote-tracking ref.
func (g *gitClient) SetBranchUpstream(ctx context.Context, branch, remote, mergeRef string) error {
	if err := g.SetConfig(ctx, "branch."+branch+".remote", remote); err != nil {
		return err
	}

	if !strings.HasPrefix(mergeRef, "refs/") {
		mergeRef = "refs/heads/" + mergeRef
	}

	return g.SetConfig(ctx, "branch."+branch+".merge", mergeRef)
}

// AheadBehind counts commits local has over upstream and vice versa.
func (g *gitClient) AheadBehind(ctx context.Context, local, upstream string) (int, int, error) {
	output, err := g.output(ctx, "rev-list", "--left-right", "--count", local+"..."+upstream)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compare %s with %s: %w", local, upstream, err)
	}

	return parseAheadBehind(output)
}

// IsShallow reports whether the working copy has truncated history.
func (g *gitClient) IsShallow(ctx context.Context) (bool, error) {
	output, err := g.output(ctx, "rev-parse", "--is-shallow-repository")
	if err != nil {
		return false, fmt.Errorf("failed to check shallow state: %w", err)
	}

	return strings.TrimSpace(output) == "true", nil
}

// GetConfig reads one local configuration value.
func (g *gitClient) GetConfig(ctx context.Context, key string) (string, error) {
	cmd := g.command(ctx, "config", "--local", "--get", key)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		// Exit code 1 means the key is not set
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
		}
		return "", fmt.Errorf("failed to read config %s: %w", key, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// SetConfig writes one local configuration value.
func (g *gitClient) SetConfig(ctx context.Context, key, value string) error {
	if err := g.run(ctx, "config", "--local", key, value); err != nil {
		return fmt.Errorf("failed to write config %s: %w", key, err)
	}

	return nil
}

// UnsetConfig removes one local configuration value.
func (g *gitClient) UnsetConfig(ctx context.Context, key string) error {
	cmd := g.command(ctx, "config", "--local", "--unset", key)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		// Exit code 5 means the key was not set; removal is idempotent
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 5 {
			return nil
		}
		return fmt.Errorf("failed to unset config %s: %w", key, err)
	}

	return nil
}

// GetConfigs returns all local configuration entries.
func (g *gitClient) GetConfigs(ctx context.Context) ([]ConfigEntry, error) {
	output, err := g.output(ctx, "config", "--local", "--list")
	if err != nil {
		return nil, fmt.Errorf("failed to list config: %w", err)
	}

	return parseConfigList(output), nil
}

// AddRemote registers a remote.
func (g *gitClient) AddRemote(ctx context.Context, name, url string) error {
	if err := g.run(ctx, "remote", "add", name, url); err != nil {
		return fmt.Errorf("failed to add remote %s: %w", name, err)
	}

	return nil
}

// RemoveRemote deletes a remote and its configuration.
func (g *gitClient) RemoveRemote(ctx context.Context, name string) error {
	if err := g.run(ctx, "remote", "remove", name); err != nil {
		if strings.Contains(err.Error(), "No such remote") {
			return fmt.Errorf("%w: %s", appErrors.ErrRemoteNotFound, name)
		}
		return fmt.Errorf("failed to remove remote %s: %w", name, err)
	}

	return nil
}

// Remotes lists the configured remotes with their fetch URLs.
func (g *gitClient) Remotes(ctx context.Context) ([]Remote, error) {
	output, err := g.output(ctx, "remote", "-v")
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}

	return parseRemotes(output), nil
}

// parseAheadBehind parses "rev-list --left-right --count" output of the
// form "<ahead>\t<behind>".
func parseAheadBehind(output string) (int, int, error) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: unexpected rev-list output %q", appErrors.ErrGitCommand, output)
	}

	ahead, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: unexpected rev-list output %q", appErrors.ErrGitCommand, output)
	}

	behind, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: unexpected rev-list output %q", appErrors.ErrGitCommand, output)
	}

	return ahead, behind, nil
}

// parseConfigList parses "config --list" output, one key=value per line.
// Values may contain '='; only the first separator splits.
func parseConfigList(output string) []ConfigEntry {
	var entries []ConfigEntry

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		entries = append(entries, ConfigEntry{Key: key, Value: value})
	}

	return entries
}

// parseRemotes parses "remote -v" output, keeping each remote's fetch URL.
func parseRemotes(output string) []Remote {
	var remotes []Remote
	seen := make(map[string]bool)

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		name, url := fields[0], fields[1]
		if len(fields) >= 3 && fields[2] != "(fetch)" {
			continue
		}
		if seen[name] {
			continue
		}

		seen[name] = true
		remotes = append(remotes, Remote{Name: name, FetchURL: url})
	}

	return remotes
}

// command builds a git command rooted at the working copy.
func (g *gitClient) command(ctx context.Context, args ...string) *exec.Cmd {
	full := append([]string{"-C", g.repoPath}, args...)

	cmd := exec.CommandContext(ctx, "git", full...) //nolint:gosec // Arguments are safely constructed
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	return cmd
}

// run executes a git command and maps failures onto common errors.
func (g *gitClient) run(ctx context.Context, args ...string) error {
	cmd := g.command(ctx, args...)

	if g.logger != nil && g.logger.IsLevelEnabled(logrus.DebugLevel) {
		g.logger.WithField("command", strings.Join(cmd.Args, " ")).Debug("Executing git command")
	}

	var stderr bytes.Buffer
	var stdout bytes.Buffer

	cmd.Stderr = &stderr
	cmd.Stdout = &stdout

	err := cmd.Run()
	if err == nil {
		return nil
	}

	errMsg := stderr.String()
	outMsg := stdout.String()
	if g.logger != nil {
		g.logger.WithFields(logrus.Fields{
			"command": strings.Join(cmd.Args, " "),
			"error":   errMsg,
			"output":  outMsg,
		}).Error("Git command failed")
	}

	if strings.Contains(errMsg, "not a git repository") {
		return ErrNotARepository
	}

	// Return error with stderr content (or stdout if stderr is empty)
	if errMsg != "" {
		return fmt.Errorf("%w: %s", appErrors.ErrGitCommand, strings.TrimSpace(errMsg))
	}
	if outMsg != "" {
		return fmt.Errorf("%w: %s", appErrors.ErrGitCommand, strings.TrimSpace(outMsg))
	}
	return err
}

// output executes a git command and returns its stdout.
func (g *gitClient) output(ctx context.Context, args ...string) (string, error) {
	cmd := g.command(ctx, args...)

	var stderr bytes.Buffer
	var stdout bytes.Buffer

	cmd.Stderr = &stderr
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if strings.Contains(errMsg, "not a git repository") {
			return "", ErrNotARepository
		}
		if errMsg != "" {
			return "", fmt.Errorf("%w: %s", appErrors.ErrGitCommand, errMsg)
		}
		return "", err
	}

	return stdout.String(), nil
}
