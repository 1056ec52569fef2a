package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/compozy/releasewatch/internal/repository"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	// DefaultFetchAttempts caps how many times the release endpoint is asked
	DefaultFetchAttempts = 10
	// DefaultFetchRetryDelay is the fixed pause after a soft failure
	DefaultFetchRetryDelay = 5 * time.Second
)

// FetchVersionUseCase asks the release repository for the latest version name,
// retrying soft failures with a fixed delay up to MaxAttempts.
type FetchVersionUseCase struct {
	ReleaseRepo repository.ReleaseRepository
	MaxAttempts int
	RetryDelay  time.Duration
	// Backoff overrides the constant RetryDelay schedule; tests use it to skip waiting.
	Backoff retry.Backoff
	Log     *zap.Logger
}

// Execute runs the use case.
func (uc *FetchVersionUseCase) Execute(ctx context.Context) (string, error) {
	log := uc.Log
	if log == nil {
		log = zap.NewNop()
	}
	maxAttempts := uc.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = DefaultFetchAttempts
	}
	attempt := 0
	var version string
	err := retry.Do(ctx, uc.backoff(maxAttempts), func(ctx context.Context) error {
		attempt++
		name, err := uc.ReleaseRepo.LatestReleaseName(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrReleaseNameMissing) {
				log.Warn("Release metadata without version name",
					zap.Int("attempt", attempt),
					zap.Int("max_attempts", maxAttempts),
					zap.Error(err))
				return retry.RetryableError(err)
			}
			return err
		}
		version = name
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrReleaseNameMissing) {
			return "", fmt.Errorf("%w after %d attempts: %v", domain.ErrNoVersionFound, attempt, err)
		}
		if !errors.Is(err, domain.ErrFetch) {
			return "", fmt.Errorf("%w: %w", domain.ErrFetch, err)
		}
		return "", err
	}
	log.Debug("Fetched release name", zap.String("version", version), zap.Int("attempts", attempt))
	return version, nil
}

// backoff allows maxAttempts-1 waits between attempts.
func (uc *FetchVersionUseCase) backoff(maxAttempts int) retry.Backoff {
	b := uc.Backoff
	if b == nil {
		delay := uc.RetryDelay
		if delay <= 0 {
			delay = DefaultFetchRetryDelay
		}
		b = retry.NewConstant(delay)
	}
	return retry.WithMaxRetries(uint64(maxAttempts-1), b)
}
