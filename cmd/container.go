package cmd

import (
	"fmt"

	"github.com/compozy/releasewatch/internal/config"
	"github.com/compozy/releasewatch/internal/logger"
	"github.com/compozy/releasewatch/internal/orchestrator"
	"github.com/compozy/releasewatch/internal/repository"
	"github.com/compozy/releasewatch/internal/service"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.
type container struct {
	cfg *config.Config
	log *zap.Logger

	fsRepo      repository.FileSystemRepository
	versionRepo repository.VersionRepository
	runRepo     repository.RunRepository
}

// newContainer creates a new container with the dependencies every command shares.
// Channel credentials are checked by the run command, so status works without them.
func newContainer() (*container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	fsRepo := repository.NewOsFileSystem()
	return &container{
		cfg:         cfg,
		log:         log,
		fsRepo:      fsRepo,
		versionRepo: repository.NewFileVersionRepository(fsRepo, cfg.StateFile),
		runRepo:     repository.NewJSONRunRepository(fsRepo, repository.RunRecordPath(cfg.StateFile)),
	}, nil
}

// newReleaseRepository builds the release source selected by config.
func (c *container) newReleaseRepository() (repository.ReleaseRepository, error) {
	switch c.cfg.Source {
	case config.SourceTags:
		return repository.NewGitTagReleaseRepository(c.cfg.SourceRepoURL, c.cfg.GithubToken)
	case config.SourceGithub:
		return repository.NewGithubReleaseRepository(repository.GithubReleaseOptions{
			ReleaseURL: c.cfg.ReleaseAPIURL,
			UserAgent:  c.cfg.UserAgent,
			Token:      c.cfg.GithubToken,
			Timeout:    c.cfg.HTTPTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown source %q", c.cfg.Source)
	}
}

// newNotifier builds the notifier for the configured channel.
func (c *container) newNotifier() (service.Notifier, error) {
	if err := c.cfg.ValidateChannel(); err != nil {
		return nil, err
	}
	switch c.cfg.NormalizedChannel() {
	case config.ChannelEmail:
		return service.NewEmailNotifier(service.EmailOptions{
			SMTPServer: c.cfg.SMTPServer,
			Port:       c.cfg.SMTPPort,
			Timeout:    c.cfg.SMTPTimeout,
			Recipient:  c.cfg.EmailRecipient,
			Hostname:   c.cfg.EmailHostname,
			Password:   c.cfg.EmailPassword,
			Subject:    c.cfg.EmailSubject,
		}, c.log)
	default:
		return service.NewTelegramNotifier(service.TelegramOptions{
			Token:   c.cfg.BotAPIToken,
			ChatID:  c.cfg.ChatID,
			BaseURL: c.cfg.BotAPIURL,
			Timeout: c.cfg.HTTPTimeout,
		}, c.log)
	}
}

// newWatchOrchestrator wires the run workflow.
func (c *container) newWatchOrchestrator() (*orchestrator.WatchOrchestrator, error) {
	notifier, err := c.newNotifier()
	if err != nil {
		return nil, err
	}
	releaseRepo, err := c.newReleaseRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize release source: %w", err)
	}
	locker := repository.NewFileLock(c.cfg.StateFile+".lock", c.cfg.LockTimeout)
	return orchestrator.NewWatchOrchestrator(releaseRepo, c.versionRepo, c.runRepo, notifier, locker, c.log), nil
}

var app *container

// InitCommands initializes all commands with their dependencies
func InitCommands() error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	app = c
	rootCmd.AddCommand(NewRunCmd(c))
	rootCmd.AddCommand(NewStatusCmd(c))
	rootCmd.AddCommand(newVersionCmd())
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	if app != nil {
		_ = app.log.Sync()
	}
}
