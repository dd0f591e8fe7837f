package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/association"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/config"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/conversation"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/db"
	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge/github"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/git"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/hostdetect"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/output"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/pagination"
)

// tokenEnvVar names the environment variable carrying the API token.
const tokenEnvVar = "GITHUB_TOKEN" //nolint:gosec // Variable name, not a credential

// Static errors for command implementations
var (
	ErrUnsupportedHost = errors.New("host could not be classified as a supported service")
	ErrNoRepositories  = errors.New("no repositories configured")
)

// app holds the wired components behind one command invocation.
type app struct {
	flags  *Flags
	cfg    *config.Config
	logger *logrus.Logger
	out    output.Writer
	token  string

	classifier *hostdetect.Classifier
	client     forge.Client

	database    db.Database
	stateStore  *db.StateStore
	coordinator *pagination.Coordinator
}

// buildApp loads configuration and constructs the components every command
// shares. Components with external dependencies (API client, database, git)
// are created on first use.
func buildApp(cmd *cobra.Command, flags *Flags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger := loggerFromContext(cmd)
	token := os.Getenv(tokenEnvVar)

	prober := github.NewProber(token, cfg.Hosts.ProbeTimeout)
	classifier := hostdetect.NewClassifier(prober, logger, hostdetect.Options{
		PrimaryHosts:    cfg.Hosts.Primary,
		ExcludedHosts:   cfg.Hosts.Excluded,
		EnterpriseHosts: cfg.Hosts.Enterprise,
		CacheTTL:        cfg.Hosts.CacheTTL,
		ProbesPerSecond: cfg.Hosts.ProbesPerSecond,
	})

	return &app{
		flags:      flags,
		cfg:        cfg,
		logger:     logger,
		out:        output.NewColoredWriter(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		token:      token,
		classifier: classifier,
	}, nil
}

// loadConfig reads the config file; a missing file falls back to defaults.
func loadConfig(flags *Flags) (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}

	return cfg, nil
}

// Close releases held resources.
func (a *app) Close() error {
	if a.database != nil {
		return a.database.Close()
	}

	return nil
}

// forgeClient classifies the configured host and builds an API client for
// it on first call.
func (a *app) forgeClient(ctx context.Context) (forge.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	hostURL := "https://" + a.flags.Host

	switch a.classifier.Classify(ctx, hostURL) {
	case hostdetect.KindPrimary:
		a.client = github.New(a.token, a.logger)
	case hostdetect.KindEnterprise:
		client, err := github.NewEnterprise(hostURL, a.token, a.logger)
		if err != nil {
			return nil, err
		}
		a.client = client
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedHost, a.flags.Host)
	}

	return a.client, nil
}

// openState opens the state database and builds a coordinator seeded with
// the persisted cursors.
func (a *app) openState() (*pagination.Coordinator, error) {
	if a.coordinator != nil {
		return a.coordinator, nil
	}

	database, err := db.Open(db.OpenOptions{Path: a.cfg.DB.Path, AutoMigrate: true})
	if err != nil {
		return nil, err
	}

	a.database = database
	a.stateStore = db.NewStateStore(database)

	store := pagination.NewCursorStore()
	if err := a.stateStore.Load(store); err != nil {
		return nil, err
	}

	a.coordinator = pagination.NewCoordinator(store, a.logger)

	return a.coordinator, nil
}

// saveState persists the coordinator's cursor state.
func (a *app) saveState() error {
	if a.coordinator == nil || a.stateStore == nil {
		return nil
	}

	return a.stateStore.Save(a.coordinator.Store())
}

// sources builds one pagination source per configured repository.
func (a *app) sources(client forge.Client) ([]pagination.Source, error) {
	if len(a.cfg.Repositories) == 0 {
		return nil, ErrNoRepositories
	}

	lookup := a.queryLookup()

	sources := make([]pagination.Source, 0, len(a.cfg.Repositories))
	for _, repo := range a.cfg.Repositories {
		owner, name, err := repo.OwnerName()
		if err != nil {
			return nil, err
		}
		sources = append(sources, pagination.NewRepoSource(client, owner, name, lookup))
	}

	return sources, nil
}

// queryLookup maps configured query ids onto forge queries.
func (a *app) queryLookup() func(queryID string) forge.Query {
	queries := make(map[string]forge.Query, len(a.cfg.Queries))
	for _, q := range a.cfg.Queries {
		queries[q.ID] = forge.Query{ID: q.ID, State: q.State, Author: q.Author}
	}

	return func(queryID string) forge.Query {
		if q, ok := queries[queryID]; ok {
			return q
		}
		return forge.Query{ID: queryID, State: "open"}
	}
}

// associator builds a git client over the configured working copy and an
// associator on top of it.
func (a *app) associator() (*association.Associator, error) {
	repoPath := a.cfg.Checkout.RepoPath
	if repoPath == "" {
		repoPath = "."
	}

	gitClient, err := git.NewClient(repoPath, a.logger)
	if err != nil {
		return nil, err
	}

	return association.NewAssociator(gitClient, a.logger, association.Options{
		BaseRemote: a.cfg.Checkout.BaseRemote,
	}), nil
}

// reconciler builds a conversation reconciler over the API client.
func (a *app) reconciler(ctx context.Context) (*conversation.Reconciler, error) {
	client, err := a.forgeClient(ctx)
	if err != nil {
		return nil, err
	}

	return conversation.NewReconciler(client, a.logger), nil
}

// parsePRArg parses "owner/repo#number" or a bare number, the latter
// resolved against the first configured repository.
func (a *app) parsePRArg(arg string) (forge.PullRequestRef, error) {
	var ref forge.PullRequestRef

	repoPart, numberPart, qualified := strings.Cut(arg, "#")
	if !qualified {
		numberPart = arg

		if len(a.cfg.Repositories) == 0 {
			return ref, ErrNoRepositories
		}

		owner, name, err := a.cfg.Repositories[0].OwnerName()
		if err != nil {
			return ref, err
		}
		ref.Owner, ref.Repo = owner, name
	} else {
		owner, name, err := config.RepositoryConfig{Repo: repoPart}.OwnerName()
		if err != nil {
			return ref, err
		}
		ref.Owner, ref.Repo = owner, name
	}

	number, err := strconv.Atoi(numberPart)
	if err != nil || number <= 0 {
		return ref, appErrors.FormatError("pull request", arg, "owner/repo#number or number")
	}
	ref.Number = number

	return ref, nil
}
