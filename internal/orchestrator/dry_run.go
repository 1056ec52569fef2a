package orchestrator

import (
	"context"
	"fmt"

	"github.com/compozy/releasewatch/internal/config"
	"github.com/compozy/releasewatch/internal/domain"
	"github.com/compozy/releasewatch/internal/service"
	"go.uber.org/zap"
)

// executeDryRun logs the message that would be sent and leaves the version file untouched.
func (o *WatchOrchestrator) executeDryRun(
	ctx context.Context,
	run *domain.Run,
	log *zap.Logger,
	cfg *config.Config,
	message string,
) error {
	log.Info("Dry-run: skipping version persistence",
		zap.String("path", o.versionRepo.Path()),
		zap.String("version", run.Fetched))
	o.transition(run, log, domain.RunStatusNotifying)
	notifier := service.NewLogNotifier(cfg.NormalizedChannel(), log)
	if err := notifier.Send(ctx, message); err != nil {
		return fmt.Errorf("dry-run notification failed: %w", err)
	}
	return nil
}
