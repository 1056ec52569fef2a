package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/compozy/releasewatch/internal/domain"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
)

// gitTagReleaseRepository finds the newest release by listing remote tags,
// the equivalent of `git ls-remote --tags`. No clone is made.
type gitTagReleaseRepository struct {
	remoteURL string
	token     string
}

// NewGitTagReleaseRepository creates a ReleaseRepository backed by remote tags.
func NewGitTagReleaseRepository(remoteURL, token string) (ReleaseRepository, error) {
	if strings.TrimSpace(remoteURL) == "" {
		return nil, fmt.Errorf("remote url cannot be empty")
	}
	return &gitTagReleaseRepository{remoteURL: remoteURL, token: strings.TrimSpace(token)}, nil
}

// LatestReleaseName returns the highest MAJOR.MINOR.PATCH tag on the remote.
func (r *gitTagReleaseRepository) LatestReleaseName(ctx context.Context) (string, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{r.remoteURL},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: r.getAuth()})
	if err != nil {
		return "", fmt.Errorf("%w: failed to list remote tags: %w", domain.ErrFetch, err)
	}
	tag, ok := LatestReleaseTag(refs)
	if !ok {
		return "", fmt.Errorf("%w: no release tags on %s", domain.ErrReleaseNameMissing, r.remoteURL)
	}
	return tag, nil
}

// getAuth returns token auth for GitHub remotes, or nil for anonymous access.
func (r *gitTagReleaseRepository) getAuth() transport.AuthMethod {
	if r.token == "" {
		return nil
	}
	// Use x-access-token as username for GitHub token authentication
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: r.token,
	}
}

// LatestReleaseTag picks the highest release tag among refs. Branches,
// pre-release tags and anything not shaped like MAJOR.MINOR.PATCH are ignored.
func LatestReleaseTag(refs []*plumbing.Reference) (string, bool) {
	var (
		latest    string
		latestVer *semver.Version
	)
	for _, ref := range refs {
		if ref == nil || !ref.Name().IsTag() {
			continue
		}
		// Annotated tags are listed twice; the peeled entry ends in ^{}.
		name := strings.TrimSuffix(ref.Name().Short(), "^{}")
		if !domain.IsReleaseVersion(name) {
			continue
		}
		v, err := semver.NewVersion(name)
		if err != nil {
			continue
		}
		if latestVer == nil || v.GreaterThan(latestVer) {
			latest, latestVer = name, v
		}
	}
	return latest, latestVer != nil
}
