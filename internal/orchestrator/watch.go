package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/releasewatch/internal/config"
	"github.com/compozy/releasewatch/internal/domain"
	"github.com/compozy/releasewatch/internal/repository"
	"github.com/compozy/releasewatch/internal/service"
	"github.com/compozy/releasewatch/internal/usecase"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// RunOptions contains per-invocation switches for a watch run.
type RunOptions struct {
	DryRun                 bool
	RestoreOnNotifyFailure bool
	// Backoff replaces the fetch retry schedule. Nil uses the configured delay.
	Backoff retry.Backoff
}

// WatchOrchestrator runs one check of the upstream release against the stored version.
type WatchOrchestrator struct {
	releaseRepo repository.ReleaseRepository
	versionRepo repository.VersionRepository
	runRepo     repository.RunRepository
	notifier    service.Notifier
	locker      repository.Locker
	log         *zap.Logger
}

// NewWatchOrchestrator creates a new watch orchestrator. A nil locker runs
// without the run lock and a nil runRepo skips the run record.
func NewWatchOrchestrator(
	releaseRepo repository.ReleaseRepository,
	versionRepo repository.VersionRepository,
	runRepo repository.RunRepository,
	notifier service.Notifier,
	locker repository.Locker,
	log *zap.Logger,
) *WatchOrchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &WatchOrchestrator{
		releaseRepo: releaseRepo,
		versionRepo: versionRepo,
		runRepo:     runRepo,
		notifier:    notifier,
		locker:      locker,
		log:         log,
	}
}

// Execute runs the watch workflow. The returned Run is never nil and records
// how far the run got, also on error.
func (o *WatchOrchestrator) Execute(ctx context.Context, cfg *config.Config, opts RunOptions) (*domain.Run, error) {
	run := domain.NewRun(uuid.NewString())
	run.DryRun = opts.DryRun
	log := o.log.With(zap.String("run_id", run.ID))
	if cfg == nil {
		return o.fail(run, log, errors.New("config cannot be nil"))
	}
	if err := cfg.Validate(); err != nil {
		return o.fail(run, log, fmt.Errorf("invalid configuration: %w", err))
	}
	if err := ValidateStatePath(o.versionRepo.Path()); err != nil {
		return o.fail(run, log, err)
	}
	timeout := cfg.RunTimeout
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	unlock, err := o.acquireLock(ctx)
	if err != nil {
		return o.fail(run, log, err)
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warn("Failed to release run lock", zap.Error(err))
		}
	}()
	defer o.recordRun(ctx, run, log)
	if !opts.DryRun {
		created, err := o.versionRepo.EnsureExists(ctx)
		if err != nil {
			return o.fail(run, log, fmt.Errorf("failed to prepare version file: %w", err))
		}
		if created {
			log.Info("Created empty version file", zap.String("path", o.versionRepo.Path()))
		}
	}
	fetched, err := o.fetch(ctx, run, log, cfg, opts)
	if err != nil {
		return o.fail(run, log, err)
	}
	detection, err := o.detect(ctx, run, log, fetched)
	if err != nil {
		return o.fail(run, log, err)
	}
	if !detection.ShouldNotify() {
		run.Skip(detection.Reason())
		log.Info("No new release",
			zap.String("status", string(run.Status)),
			zap.String("reason", run.NoOpReason),
			zap.String("fetched", fetched),
			zap.String("previous", detection.Previous))
		o.transition(run, log, domain.RunStatusDone)
		return run, nil
	}
	o.warnIfOlder(log, fetched, detection.Previous)
	release := &domain.Release{Version: fetched, Previous: detection.Previous}
	prepare := &usecase.PrepareMessageUseCase{
		URLTemplate:     cfg.ReleaseURLTemplate,
		MessageTemplate: cfg.MessageTemplate,
	}
	message, err := prepare.Execute(ctx, release)
	if err != nil {
		return o.fail(run, log, fmt.Errorf("failed to prepare message: %w", err))
	}
	log.Info("New release detected",
		zap.String("version", release.Version),
		zap.String("previous", release.Previous),
		zap.String("url", release.URL))
	if opts.DryRun {
		if err := o.executeDryRun(ctx, run, log, cfg, message); err != nil {
			return o.fail(run, log, err)
		}
		o.transition(run, log, domain.RunStatusDone)
		return run, nil
	}
	if err := o.persistAndNotify(ctx, run, log, release, message, cfg, opts); err != nil {
		return o.fail(run, log, err)
	}
	run.Notified = true
	o.transition(run, log, domain.RunStatusDone)
	return run, nil
}

func (o *WatchOrchestrator) fetch(
	ctx context.Context,
	run *domain.Run,
	log *zap.Logger,
	cfg *config.Config,
	opts RunOptions,
) (string, error) {
	o.transition(run, log, domain.RunStatusFetching)
	fetchUC := &usecase.FetchVersionUseCase{
		ReleaseRepo: o.releaseRepo,
		MaxAttempts: cfg.FetchMaxAttempts,
		RetryDelay:  cfg.FetchRetryDelay,
		Backoff:     opts.Backoff,
		Log:         log,
	}
	fetched, err := fetchUC.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest version: %w", err)
	}
	run.Fetched = fetched
	return fetched, nil
}

func (o *WatchOrchestrator) detect(
	ctx context.Context,
	run *domain.Run,
	log *zap.Logger,
	fetched string,
) (*usecase.Detection, error) {
	o.transition(run, log, domain.RunStatusValidating)
	detectUC := &usecase.DetectReleaseUseCase{VersionRepo: o.versionRepo}
	detection, err := detectUC.Execute(ctx, fetched)
	if err != nil {
		return nil, fmt.Errorf("failed to compare versions: %w", err)
	}
	run.Previous = detection.Previous
	return detection, nil
}

// persistAndNotify stores the new version and then sends the message once.
func (o *WatchOrchestrator) persistAndNotify(
	ctx context.Context,
	run *domain.Run,
	log *zap.Logger,
	release *domain.Release,
	message string,
	cfg *config.Config,
	opts RunOptions,
) error {
	if err := ValidateVersion(release.Version); err != nil {
		return err
	}
	restore := opts.RestoreOnNotifyFailure || cfg.RestoreOnNotifyFailure
	if restore {
		log.Warn("Restore on notify failure enabled: a failed notification is retried on the next run")
	}
	acts := NewCompensatingActions(o.versionRepo, log)
	saga := NewSagaExecutor(run, restore, log)
	saga.AddStep(SagaStep{
		Name:   "persist version",
		Type:   domain.StepTypePersistVersion,
		Status: domain.RunStatusPersisting,
		Execute: func(ctx context.Context) error {
			return o.versionRepo.WriteCurrent(ctx, release.Version)
		},
		Compensate: func(ctx context.Context) error {
			return acts.RestoreVersion(ctx, release.Previous)
		},
	})
	saga.AddStep(SagaStep{
		Name:   "notify",
		Type:   domain.StepTypeNotify,
		Status: domain.RunStatusNotifying,
		Execute: func(ctx context.Context) error {
			return o.notifier.Send(ctx, message)
		},
	})
	if err := saga.Execute(ctx); err != nil {
		return err
	}
	log.Info("Notification sent",
		zap.String("channel", o.notifier.Name()),
		zap.String("version", release.Version))
	return nil
}

// recordRun saves the run record; failures are logged and do not fail the run.
func (o *WatchOrchestrator) recordRun(ctx context.Context, run *domain.Run, log *zap.Logger) {
	if o.runRepo == nil {
		return
	}
	if err := o.runRepo.SaveLast(context.WithoutCancel(ctx), run); err != nil {
		log.Warn("Failed to save run record", zap.Error(err))
	}
}

func (o *WatchOrchestrator) acquireLock(ctx context.Context) (func() error, error) {
	if o.locker == nil {
		return func() error { return nil }, nil
	}
	unlock, err := o.locker.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return unlock, nil
}

// warnIfOlder logs when upstream moved backwards; the run still proceeds.
func (o *WatchOrchestrator) warnIfOlder(log *zap.Logger, fetched, previous string) {
	if previous == "" {
		return
	}
	if cmp, ok := domain.CompareVersionStrings(fetched, previous); ok && cmp < 0 {
		log.Warn("Fetched version is older than the stored one",
			zap.String("fetched", fetched),
			zap.String("previous", previous))
	}
}

func (o *WatchOrchestrator) transition(run *domain.Run, log *zap.Logger, status domain.RunStatus) {
	run.Transition(status)
	log.Debug("Run transition", zap.String("status", string(status)))
}

func (o *WatchOrchestrator) fail(run *domain.Run, log *zap.Logger, err error) (*domain.Run, error) {
	run.Fail(err)
	log.Error("Run failed",
		zap.String("fetched", run.Fetched),
		zap.String("previous", run.Previous),
		zap.Error(err))
	return run, err
}
