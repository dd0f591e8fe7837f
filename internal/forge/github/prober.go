package github

import (
	"context"
	"io"
	"net/http"
	"time"

	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
)

// maxProbeBody caps how much of a probe response body is read. The banner
// and JSON checks only need the first part of the body.
const maxProbeBody = 64 * 1024

// defaultProbeTimeout bounds a single probe request when the caller's
// context carries no deadline.
const defaultProbeTimeout = 10 * time.Second

// HTTPProber implements forge.Prober over plain HTTP requests. It is used
// during host classification, before a host is known to be a GitHub
// instance, so it deliberately bypasses the API client.
type HTTPProber struct {
	client *http.Client
	token  string
}

// NewProber creates a prober. The token is attached to probe requests when
// non-empty; unauthenticated endpoints simply ignore it.
func NewProber(token string, timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	return &HTTPProber{
		client: &http.Client{Timeout: timeout},
		token:  token,
	}
}

// Probe performs a single GET against the given URL and returns the raw
// response. Network failures surface as errors; non-2xx responses do not,
// because the classifier inspects headers regardless of status.
func (p *HTTPProber) Probe(ctx context.Context, url string) (*forge.ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "build probe request")
	}

	req.Header.Set("User-Agent", "prsync")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "probe host")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return nil, appErrors.WrapWithContext(err, "read probe response")
	}

	return &forge.ProbeResult{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}
