package config

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedVersion indicates the configuration version is not supported
	ErrUnsupportedVersion = errors.New("unsupported config version")
	// ErrNoRepositories indicates no repositories were specified
	ErrNoRepositories = errors.New("at least one repository must be specified")
	// ErrDuplicateRepository indicates a repository is specified multiple times
	ErrDuplicateRepository = errors.New("duplicate repository")
	// ErrDuplicateQueryID indicates a query id is used more than once
	ErrDuplicateQueryID = errors.New("duplicate query id")
	// ErrEmptyQueryID indicates a query has no id
	ErrEmptyQueryID = errors.New("query id cannot be empty")
	// ErrInvalidQueryState indicates an unknown query state
	ErrInvalidQueryState = errors.New("query state must be open, closed, merged or all")
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.Version)
	}

	if len(c.Repositories) == 0 {
		return ErrNoRepositories
	}

	seen := make(map[string]bool, len(c.Repositories))
	for _, repo := range c.Repositories {
		if _, _, err := repo.OwnerName(); err != nil {
			return err
		}
		if seen[repo.Repo] {
			return fmt.Errorf("%w: %s", ErrDuplicateRepository, repo.Repo)
		}
		seen[repo.Repo] = true
	}

	ids := make(map[string]bool, len(c.Queries))
	for _, query := range c.Queries {
		if query.ID == "" {
			return ErrEmptyQueryID
		}
		if ids[query.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateQueryID, query.ID)
		}
		ids[query.ID] = true

		switch query.State {
		case "open", "closed", "merged", "all":
		default:
			return fmt.Errorf("%w: %q", ErrInvalidQueryState, query.State)
		}
	}

	return nil
}
