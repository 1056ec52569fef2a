package orchestrator

import (
	"context"
	"fmt"

	"github.com/compozy/releasewatch/internal/repository"
	"go.uber.org/zap"
)

// CompensatingActions provides idempotent undo operations for run steps
type CompensatingActions struct {
	versionRepo repository.VersionRepository
	log         *zap.Logger
}

// NewCompensatingActions creates a new compensating actions handler
func NewCompensatingActions(versionRepo repository.VersionRepository, log *zap.Logger) *CompensatingActions {
	if log == nil {
		log = zap.NewNop()
	}
	return &CompensatingActions{versionRepo: versionRepo, log: log}
}

// RestoreVersion writes previous back to the version store so the next run
// sees the fetched version as new again. An empty previous restores the empty
// first-run state.
func (ca *CompensatingActions) RestoreVersion(ctx context.Context, previous string) error {
	current, err := ca.versionRepo.ReadPrevious(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stored version: %w", err)
	}
	if current == previous {
		ca.log.Debug("Stored version already matches previous", zap.String("previous", previous))
		return nil
	}
	if err := ca.versionRepo.WriteCurrent(ctx, previous); err != nil {
		return fmt.Errorf("failed to restore version %q: %w", previous, err)
	}
	ca.log.Warn("Restored previous version",
		zap.String("path", ca.versionRepo.Path()),
		zap.String("previous", previous),
		zap.String("discarded", current))
	return nil
}
