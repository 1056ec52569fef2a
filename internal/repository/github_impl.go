package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"
)

// githubReleaseRepository reads the release name from a GitHub-style JSON endpoint.
type githubReleaseRepository struct {
	client *github.Client
	url    string
}

// GithubReleaseOptions configures NewGithubReleaseRepository.
type GithubReleaseOptions struct {
	ReleaseURL string
	UserAgent  string
	Token      string
	Timeout    time.Duration
	// HTTPClient replaces the default transport, mostly for tests.
	HTTPClient *http.Client
}

// NewGithubReleaseRepository creates a ReleaseRepository for the given release endpoint.
func NewGithubReleaseRepository(opts GithubReleaseOptions) (ReleaseRepository, error) {
	if strings.TrimSpace(opts.ReleaseURL) == "" {
		return nil, fmt.Errorf("release url cannot be empty")
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		return nil, fmt.Errorf("user agent cannot be empty")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	// Authenticated requests get a far higher rate limit; the token is optional.
	if token := strings.TrimSpace(opts.Token); token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		authClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		authClient.Timeout = httpClient.Timeout
		httpClient = authClient
	}
	client := github.NewClient(httpClient)
	client.UserAgent = opts.UserAgent
	return &githubReleaseRepository{
		client: client,
		url:    opts.ReleaseURL,
	}, nil
}

// LatestReleaseName performs one GET and extracts the trimmed "name" field.
func (r *githubReleaseRepository) LatestReleaseName(ctx context.Context) (string, error) {
	req, err := r.client.NewRequest(http.MethodGet, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to build request: %w", domain.ErrFetch, err)
	}
	var body json.RawMessage
	if _, err := r.client.Do(ctx, req, &body); err != nil {
		if status, ok := upstreamStatus(err); ok {
			return "", fmt.Errorf("%w: upstream answered %s: %w", domain.ErrReleaseNameMissing, status, err)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w: empty response body from %s", domain.ErrFetch, r.url)
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}
	name, ok := releaseName(payload)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrReleaseNameMissing, r.url)
	}
	return name, nil
}

// upstreamStatus reports whether err is a response the server sent on purpose
// (JSON error document, rate limit, accepted-but-pending) rather than a
// transport or decoding failure. A non-2xx body that is not a JSON error
// document, such as a proxy's HTML error page, is not.
func upstreamStatus(err error) (string, bool) {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return "rate limit exceeded", true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return "secondary rate limit", true
	}
	var acceptedErr *github.AcceptedError
	if errors.As(err, &acceptedErr) {
		return "202 accepted", true
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil && isErrorDocument(respErr) {
		return respErr.Response.Status, true
	}
	return "", false
}

// isErrorDocument reports whether the error body decoded as a JSON error
// document. CheckResponse ignores unmarshal failures, so an unparseable body
// leaves every field empty.
func isErrorDocument(respErr *github.ErrorResponse) bool {
	return respErr.Message != "" || len(respErr.Errors) > 0 || respErr.DocumentationURL != ""
}

// releaseName extracts the "name" string field of a JSON object.
func releaseName(payload any) (string, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	name, ok := obj["name"].(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(name), true
}
