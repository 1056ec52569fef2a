package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/compozy/releasewatch/internal/repository"
)

// Reasons a fetched version does not lead to a notification.
const (
	ReasonNotRelease = "not a release version"
	ReasonUnchanged  = "version unchanged"
)

// Detection is the outcome of comparing a fetched version with the stored one.
type Detection struct {
	Fetched   string
	Previous  string
	IsRelease bool
	Changed   bool
}

// ShouldNotify reports whether the fetched version is a new release.
func (d *Detection) ShouldNotify() bool {
	return d.IsRelease && d.Changed
}

// Reason explains why ShouldNotify is false.
func (d *Detection) Reason() string {
	switch {
	case !d.IsRelease:
		return ReasonNotRelease
	case !d.Changed:
		return ReasonUnchanged
	default:
		return ""
	}
}

// DetectReleaseUseCase validates a fetched version and compares it with the stored one.
type DetectReleaseUseCase struct {
	VersionRepo repository.VersionRepository
}

// Execute runs the use case. The stored version is only read for release
// versions; anything else is ignored without touching the store.
func (uc *DetectReleaseUseCase) Execute(ctx context.Context, fetched string) (*Detection, error) {
	detection := &Detection{
		Fetched:   fetched,
		IsRelease: domain.IsReleaseVersion(fetched),
	}
	if !detection.IsRelease {
		return detection, nil
	}
	previous, err := uc.VersionRepo.ReadPrevious(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read previous version: %w", err)
	}
	detection.Previous = previous
	detection.Changed = fetched != previous
	return detection, nil
}
