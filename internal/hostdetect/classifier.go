// Package hostdetect decides whether a remote URL points at a supported
// pull request host: the public service, a self-hosted enterprise instance,
// or something unrelated. Decisions are cached per authority.
package hostdetect

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/cache"
	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/logging"
)

// Kind is the classification of a host authority.
type Kind string

const (
	// KindUnknown marks hosts that are not a supported pull request source
	KindUnknown Kind = "unknown"

	// KindPrimary marks the public hosted service
	KindPrimary Kind = "primary"

	// KindEnterprise marks a self-hosted enterprise instance
	KindEnterprise Kind = "enterprise"
)

// Vendor headers inspected on the rate-limit probe response.
const (
	headerRequestID         = "X-GitHub-Request-Id"
	headerEnterpriseVersion = "X-GitHub-Enterprise-Version"
)

// statusBanner is the plain-text banner an enterprise instance serves on its
// unauthenticated status endpoint.
const statusBanner = "GitHub lives!"

// enterpriseDocsTree is the documentation URL prefix that identifies an
// enterprise API error payload.
const enterpriseDocsTree = "docs.github.com/enterprise"

// defaultCacheTTL keeps classifications for the process lifetime in
// practice; re-checks overwrite the entry.
const defaultCacheTTL = 24 * time.Hour

// DefaultPrimaryHosts is the static allow-list of authorities belonging to
// the public service. These never require a network probe.
//
//nolint:gochecknoglobals // static allow-list, merged with config at construction
var DefaultPrimaryHosts = []string{
	"github.com",
	"www.github.com",
	"ssh.github.com",
	"api.github.com",
}

// DefaultExcludedHosts is the static deny-list of authorities known to be
// unrelated hosting services. These never require a network probe either.
//
//nolint:gochecknoglobals // static deny-list, merged with config at construction
var DefaultExcludedHosts = []string{
	"gitlab.com",
	"bitbucket.org",
	"git.sr.ht",
	"codeberg.org",
	"dev.azure.com",
	"ssh.dev.azure.com",
}

// Options configures a Classifier.
type Options struct {
	// PrimaryHosts extends the static primary allow-list
	PrimaryHosts []string

	// ExcludedHosts extends the static deny-list
	ExcludedHosts []string

	// EnterpriseHosts lists statically configured enterprise authorities
	EnterpriseHosts []string

	// CacheTTL overrides the classification cache TTL (0 = default)
	CacheTTL time.Duration

	// ProbesPerSecond throttles outgoing probes (0 = 1/s)
	ProbesPerSecond float64
}

// Classifier classifies host authorities. One instance per session; there is
// no ambient global cache.
type Classifier struct {
	prober     forge.Prober
	cache      *cache.TTLCache[Kind]
	limiter    *rate.Limiter
	logger     *logrus.Logger
	primary    map[string]bool
	excluded   map[string]bool
	enterprise map[string]bool
}

// NewClassifier creates a classifier with an injected prober and logger.
func NewClassifier(prober forge.Prober, logger *logrus.Logger, opts Options) *Classifier {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	probesPerSecond := opts.ProbesPerSecond
	if probesPerSecond <= 0 {
		probesPerSecond = 1
	}

	return &Classifier{
		prober:     prober,
		cache:      cache.NewTTLCache[Kind](ttl, cache.DefaultMaxSize),
		limiter:    rate.NewLimiter(rate.Limit(probesPerSecond), 1),
		logger:     logger,
		primary:    hostSet(DefaultPrimaryHosts, opts.PrimaryHosts),
		excluded:   hostSet(DefaultExcludedHosts, opts.ExcludedHosts),
		enterprise: hostSet(nil, opts.EnterpriseHosts),
	}
}

// Classify decides whether the remote URL points at a supported host.
// Classification never fails: an unreachable or unrecognizable host is
// Unknown. Successful probes cache their result per authority; network
// failures do not, so a later call may reclassify.
func (c *Classifier) Classify(ctx context.Context, rawURL string) Kind {
	authority, path, err := ParseAuthority(rawURL)
	if err != nil {
		c.debugLog(rawURL, KindUnknown, "unparseable remote URL")
		return KindUnknown
	}

	// Wikis and paste-style subdomains are never checkout-able pull
	// request sources, even on a supported host.
	if isNeverCheckoutable(authority, path) {
		c.debugLog(authority, KindUnknown, "wiki or gist remote")
		return KindUnknown
	}

	if c.primary[authority] {
		return KindPrimary
	}

	if c.excluded[authority] {
		return KindUnknown
	}

	// A cached result wins over the static enterprise list so that a
	// re-probed host cannot flap back to a stale configuration.
	if kind, ok := c.cache.Get(authority); ok {
		return kind
	}

	if c.enterprise[authority] {
		c.cache.Set(authority, KindEnterprise)
		return KindEnterprise
	}

	kind, err := c.probe(ctx, authority)
	if err != nil {
		// Transient failures must stay recoverable: classify Unknown
		// but leave the cache empty so the next call re-probes.
		c.debugLog(authority, KindUnknown, "probe failed: "+err.Error())
		return KindUnknown
	}

	c.cache.Set(authority, kind)
	c.debugLog(authority, kind, "probe classified")
	return kind
}

// CachedKind returns the cached classification for an authority without
// probing.
func (c *Classifier) CachedKind(authority string) (Kind, bool) {
	return c.cache.Get(strings.ToLower(authority))
}

// probe issues the rate-limit probe and, when its headers are inconclusive,
// the unauthenticated status probe.
func (c *Classifier) probe(ctx context.Context, authority string) (Kind, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return KindUnknown, appErrors.WrapWithContext(err, "wait for probe slot")
	}

	result, err := c.prober.Probe(ctx, "https://"+authority+"/api/v3/rate_limit")
	if err != nil {
		return KindUnknown, err
	}

	requestID := result.Headers.Get(headerRequestID)
	enterpriseVersion := result.Headers.Get(headerEnterpriseVersion)

	if enterpriseVersion != "" {
		if _, verErr := semver.NewVersion(enterpriseVersion); verErr == nil {
			return KindEnterprise, nil
		}
		// A garbage version header downgrades the signal; fall through
		// to the status endpoint instead of trusting it.
		return c.probeStatus(ctx, authority)
	}

	if requestID != "" {
		return KindPrimary, nil
	}

	return c.probeStatus(ctx, authority)
}

// probeStatus checks the fixed unauthenticated status endpoint.
func (c *Classifier) probeStatus(ctx context.Context, authority string) (Kind, error) {
	result, err := c.prober.Probe(ctx, "https://"+authority+"/status")
	if err != nil {
		return KindUnknown, err
	}

	if bytes.HasPrefix(result.Body, []byte(statusBanner)) {
		return KindEnterprise, nil
	}

	var payload struct {
		DocumentationURL string `json:"documentation_url"`
	}
	if jsonErr := json.Unmarshal(result.Body, &payload); jsonErr == nil {
		if strings.Contains(payload.DocumentationURL, enterpriseDocsTree) {
			return KindEnterprise, nil
		}
	}

	return KindUnknown, nil
}

func (c *Classifier) debugLog(authority string, kind Kind, reason string) {
	if c.logger == nil {
		return
	}

	c.logger.WithFields(logrus.Fields{
		logging.StandardFields.Component:      logging.ComponentNames.HostDetect,
		logging.StandardFields.Authority:      authority,
		logging.StandardFields.Classification: string(kind),
	}).Debug(reason)
}

// ParseAuthority extracts the lowercase authority (host[:port]) and path
// from a remote URL. It accepts https, ssh, and scp-like git URLs.
func ParseAuthority(raw string) (authority, path string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", appErrors.EmptyFieldError("remote URL")
	}

	// scp-like syntax: git@host:owner/repo.git
	if !strings.Contains(raw, "://") {
		if at := strings.Index(raw, "@"); at >= 0 {
			rest := raw[at+1:]
			if colon := strings.Index(rest, ":"); colon >= 0 {
				return strings.ToLower(rest[:colon]), "/" + rest[colon+1:], nil
			}
		}
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", appErrors.WrapWithContext(err, "parse remote URL")
	}
	if u.Host == "" {
		return "", "", appErrors.InvalidFieldError("remote URL", raw)
	}

	return strings.ToLower(u.Host), u.Path, nil
}

// isNeverCheckoutable rejects remotes that cannot be pull request sources:
// gist-style subdomains and wiki repositories.
func isNeverCheckoutable(authority, path string) bool {
	if strings.HasPrefix(authority, "gist.") {
		return true
	}

	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		trimmed := strings.TrimSuffix(segment, ".git")
		if trimmed == "wiki" || strings.HasSuffix(trimmed, ".wiki") {
			return true
		}
	}

	return false
}

// hostSet folds host lists into a lowercase lookup set.
func hostSet(defaults, extra []string) map[string]bool {
	set := make(map[string]bool, len(defaults)+len(extra))
	for _, host := range defaults {
		set[strings.ToLower(host)] = true
	}
	for _, host := range extra {
		set[strings.ToLower(host)] = true
	}
	return set
}
