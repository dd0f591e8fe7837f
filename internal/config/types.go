package config

import (
	"strings"
	"time"

	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Version      int                `yaml:"version"`
	Hosts        HostsConfig        `yaml:"hosts,omitempty"`
	Repositories []RepositoryConfig `yaml:"repositories"`
	Queries      []QueryConfig      `yaml:"queries,omitempty"`
	Checkout     CheckoutConfig     `yaml:"checkout,omitempty"`
	DB           DBConfig           `yaml:"db,omitempty"`
}

// HostsConfig controls host classification
type HostsConfig struct {
	Primary         []string      `yaml:"primary,omitempty"`           // Hosts known to be the primary service
	Excluded        []string      `yaml:"excluded,omitempty"`          // Hosts never probed or classified
	Enterprise      []string      `yaml:"enterprise,omitempty"`        // Hosts configured as enterprise installs
	ProbeTimeout    time.Duration `yaml:"probe_timeout,omitempty"`     // Default: 5s
	ProbesPerSecond float64       `yaml:"probes_per_second,omitempty"` // Default: 2
	CacheTTL        time.Duration `yaml:"cache_ttl,omitempty"`         // Default: 30m
}

// RepositoryConfig names one repository contributing pull requests
type RepositoryConfig struct {
	Repo string `yaml:"repo"` // Format: org/repo
}

// OwnerName splits the org/repo form.
func (r RepositoryConfig) OwnerName() (string, string, error) {
	owner, name, found := strings.Cut(r.Repo, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", appErrors.FormatError("repo", r.Repo, "org/repo")
	}

	return owner, name, nil
}

// QueryConfig defines one logical pull request listing
type QueryConfig struct {
	ID     string `yaml:"id"`
	State  string `yaml:"state,omitempty"`  // open, closed, merged or all; default open
	Author string `yaml:"author,omitempty"` // Filter by author login
}

// CheckoutConfig controls pull request checkouts
type CheckoutConfig struct {
	RepoPath   string `yaml:"repo_path,omitempty"`   // Working copy path; default: current directory
	BaseRemote string `yaml:"base_remote,omitempty"` // Default: origin
}

// DBConfig controls pagination state persistence
type DBConfig struct {
	Path string `yaml:"path,omitempty"` // SQLite file; default: .prsync.db
}
