package orchestrator

import (
	"context"
	"time"

	"github.com/compozy/releasewatch/internal/config"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/mock"
)

// Mock for ReleaseRepository
type mockReleaseRepository struct{ mock.Mock }

func (m *mockReleaseRepository) LatestReleaseName(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Mock for Notifier
type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Name() string {
	return "mock"
}

func (m *mockNotifier) Send(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// Mock for Locker
type mockLocker struct{ mock.Mock }

func (m *mockLocker) Lock(ctx context.Context) (func() error, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func() error), args.Error(1)
}

// testConfig returns a valid telegram config.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.BotAPIToken = "123:abc"
	cfg.ChatID = "-1001"
	return cfg
}

// noWait is a fetch backoff that never sleeps.
func noWait() retry.Backoff {
	return retry.BackoffFunc(func() (time.Duration, bool) {
		return 0, false
	})
}
