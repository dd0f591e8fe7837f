package association

import (
	"net/url"
	"strings"

	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
)

// cloneURL is a clone URL reduced to its repository identity so that the
// https, ssh and scp-like spellings of the same repository compare equal.
type cloneURL struct {
	host  string
	owner string
	repo  string
}

func (c cloneURL) equal(other cloneURL) bool {
	return c.host == other.host && c.owner == other.owner && c.repo == other.repo
}

func (c cloneURL) httpsURL() string {
	return "https://" + c.host + "/" + c.owner + "/" + c.repo + ".git"
}

func (c cloneURL) sshURL() string {
	return "git@" + c.host + ":" + c.owner + "/" + c.repo + ".git"
}

// normalizeCloneURL reduces a clone URL to its repository identity. The
// host is case-insensitive; owner and repo are not.
func normalizeCloneURL(raw string) (cloneURL, error) {
	if raw == "" {
		return cloneURL{}, appErrors.EmptyFieldError("clone url")
	}

	host, path := splitCloneURL(raw)

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if host == "" || len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return cloneURL{}, appErrors.InvalidFieldError("clone url", raw)
	}

	return cloneURL{
		host:  strings.ToLower(host),
		owner: parts[0],
		repo:  parts[1],
	}, nil
}

func splitCloneURL(raw string) (host, path string) {
	// scp-like syntax: git@host:owner/repo.git
	if !strings.Contains(raw, "://") {
		rest := raw
		if at := strings.Index(rest, "@"); at >= 0 {
			rest = rest[at+1:]
		}

		host, path, _ = strings.Cut(rest, ":")
		return host, path
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ""
	}

	return u.Hostname(), u.Path
}

// isSSHCloneURL reports whether a clone URL uses ssh transport.
func isSSHCloneURL(raw string) bool {
	return strings.HasPrefix(raw, "ssh://") ||
		strings.HasPrefix(raw, "git@") ||
		(!strings.Contains(raw, "://") && strings.Contains(raw, "@"))
}
