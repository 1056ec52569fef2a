package repository

import "context"

// ReleaseRepository looks up the name of the most recent upstream release.
//
// Implementations make exactly one attempt. A failure wrapping
// domain.ErrReleaseNameMissing means the upstream answered without a usable
// name and may be retried; anything else wraps domain.ErrFetch.
type ReleaseRepository interface {
	LatestReleaseName(ctx context.Context) (string, error)
}
