package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/compozy/releasewatch/internal/repository"
)

// StatusReport describes the stored version and the last recorded run.
type StatusReport struct {
	Path      string      `json:"path"`
	Version   string      `json:"version"`
	IsRelease bool        `json:"is_release"`
	LastRun   *domain.Run `json:"last_run,omitempty"`
	// LastRunError is set when a run record exists but cannot be read.
	LastRunError string `json:"last_run_error,omitempty"`
}

// Status reads the stored version without creating the file. runRepo may be nil.
func Status(
	ctx context.Context,
	versionRepo repository.VersionRepository,
	runRepo repository.RunRepository,
) (*StatusReport, error) {
	if err := ValidateStatePath(versionRepo.Path()); err != nil {
		return nil, err
	}
	stored, err := versionRepo.ReadPrevious(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored version: %w", err)
	}
	report := &StatusReport{
		Path:      versionRepo.Path(),
		Version:   stored,
		IsRelease: domain.IsReleaseVersion(stored),
	}
	if runRepo == nil {
		return report, nil
	}
	run, err := runRepo.LoadLast(ctx)
	switch {
	case errors.Is(err, repository.ErrNoRunRecord):
	case err != nil:
		report.LastRunError = err.Error()
	default:
		report.LastRun = run
	}
	return report, nil
}
