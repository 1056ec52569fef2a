package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/spf13/viper"
)

// Notification channels.
const (
	ChannelTelegram = "telegram"
	ChannelBot      = "bot"
	ChannelEmail    = "email"
)

// Release sources.
const (
	SourceGithub = "github"
	SourceTags   = "tags"
)

// Config holds every setting of a releasewatch run
type Config struct {
	Channel string `mapstructure:"channel"`

	BotAPIToken string `mapstructure:"bot_api_token"`
	ChatID      string `mapstructure:"chat_id"`
	BotAPIURL   string `mapstructure:"bot_api_url"`

	SMTPServer     string        `mapstructure:"smtp_server"`
	SMTPPort       int           `mapstructure:"smtp_port"`
	SMTPTimeout    time.Duration `mapstructure:"smtp_timeout"`
	EmailRecipient string        `mapstructure:"email_recipient"`
	EmailHostname  string        `mapstructure:"email_hostname"`
	EmailPassword  string        `mapstructure:"email_password"`

	Source             string `mapstructure:"source"`
	ReleaseAPIURL      string `mapstructure:"release_api_url"`
	SourceRepoURL      string `mapstructure:"source_repo_url"`
	ReleaseURLTemplate string `mapstructure:"release_url_template"`
	MessageTemplate    string `mapstructure:"message_template"`
	EmailSubject       string `mapstructure:"email_subject"`
	UserAgent          string `mapstructure:"user_agent"`
	GithubToken        string `mapstructure:"github_token"`

	StateFile        string        `mapstructure:"state_file"`
	FetchMaxAttempts int           `mapstructure:"fetch_max_attempts"`
	FetchRetryDelay  time.Duration `mapstructure:"fetch_retry_delay"`
	HTTPTimeout      time.Duration `mapstructure:"http_timeout"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout"`
	RunTimeout       time.Duration `mapstructure:"run_timeout"`

	RestoreOnNotifyFailure bool `mapstructure:"restore_on_notify_failure"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// MissingConfigError lists required environment variables that are not set.
type MissingConfigError struct {
	Channel string
	Vars    []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("%s channel requires %s", e.Channel, strings.Join(e.Vars, ", "))
}

func (e *MissingConfigError) Unwrap() error {
	return domain.ErrMissingConfig
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Channel:            ChannelTelegram,
		BotAPIURL:          "https://api.telegram.org",
		SMTPPort:           465,
		SMTPTimeout:        30 * time.Second,
		Source:             SourceGithub,
		ReleaseAPIURL:      "https://api.github.com/repos/near/nearcore/releases/latest",
		SourceRepoURL:      "https://github.com/near/nearcore.git",
		ReleaseURLTemplate: "https://github.com/near/nearcore/releases/tag/{{.Version}}",
		MessageTemplate:    "New version of Nearcore just came out!\n\n{{.URL}}",
		EmailSubject:       "New version of Nearcore just came out",
		UserAgent:          "releasewatch",
		StateFile:          "version.txt",
		FetchMaxAttempts:   10,
		FetchRetryDelay:    5 * time.Second,
		HTTPTimeout:        30 * time.Second,
		LockTimeout:        30 * time.Second,
		RunTimeout:         5 * time.Minute,
		LogLevel:           "info",
		LogFormat:          "console",
	}
}

// NormalizedChannel folds channel aliases into their canonical name.
func (c *Config) NormalizedChannel() string {
	channel := strings.ToLower(strings.TrimSpace(c.Channel))
	if channel == ChannelBot {
		return ChannelTelegram
	}
	return channel
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.ValidateChannel(); err != nil {
		return err
	}
	if err := c.ValidateWatch(); err != nil {
		return err
	}
	return nil
}

// ValidateChannel checks that the credentials of the selected channel are present.
func (c *Config) ValidateChannel() error {
	var missing []string
	switch c.NormalizedChannel() {
	case ChannelTelegram:
		if strings.TrimSpace(c.BotAPIToken) == "" {
			missing = append(missing, "BOT_API_TOKEN")
		}
		if strings.TrimSpace(c.ChatID) == "" {
			missing = append(missing, "CHAT_ID")
		}
	case ChannelEmail:
		if strings.TrimSpace(c.SMTPServer) == "" {
			missing = append(missing, "SMTP_SERVER")
		}
		if strings.TrimSpace(c.EmailRecipient) == "" {
			missing = append(missing, "EMAIL_RECIPIENT")
		}
		if strings.TrimSpace(c.EmailHostname) == "" {
			missing = append(missing, "EMAIL_HOSTNAME")
		}
		if c.EmailPassword == "" {
			missing = append(missing, "EMAIL_PASSWORD")
		}
	default:
		return fmt.Errorf("unknown channel %q (expected %s, %s or %s)",
			c.Channel, ChannelTelegram, ChannelBot, ChannelEmail)
	}
	if len(missing) > 0 {
		return &MissingConfigError{Channel: c.NormalizedChannel(), Vars: missing}
	}
	return nil
}

// ValidateWatch validates the settings of the fetch and persist steps.
func (c *Config) ValidateWatch() error {
	switch c.Source {
	case SourceGithub:
		if err := validateHTTPURL(c.ReleaseAPIURL); err != nil {
			return fmt.Errorf("invalid release_api_url: %w", err)
		}
	case SourceTags:
		if strings.TrimSpace(c.SourceRepoURL) == "" {
			return fmt.Errorf("source_repo_url cannot be empty")
		}
	default:
		return fmt.Errorf("unknown source %q (expected %s or %s)", c.Source, SourceGithub, SourceTags)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}
	if c.StateFile == "" {
		return fmt.Errorf("state_file cannot be empty")
	}
	if c.FetchMaxAttempts < 1 {
		return fmt.Errorf("fetch_max_attempts must be at least 1")
	}
	if c.FetchRetryDelay <= 0 {
		return fmt.Errorf("fetch_retry_delay must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	if _, err := template.New("release-url").Parse(c.ReleaseURLTemplate); err != nil {
		return fmt.Errorf("invalid release_url_template: %w", err)
	}
	if _, err := template.New("message").Parse(c.MessageTemplate); err != nil {
		return fmt.Errorf("invalid message_template: %w", err)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// envBindings maps config keys to the environment variables checked in order.
var envBindings = map[string][]string{
	"channel":                   {"NOTIFY_CHANNEL", "RELEASEWATCH_CHANNEL"},
	"bot_api_token":             {"BOT_API_TOKEN", "TELEGRAM_BOT_API", "RELEASEWATCH_BOT_API_TOKEN"},
	"chat_id":                   {"CHAT_ID", "TELEGRAM_CHAT_ID", "RELEASEWATCH_CHAT_ID"},
	"smtp_server":               {"SMTP_SERVER", "RELEASEWATCH_SMTP_SERVER"},
	"email_recipient":           {"EMAIL_RECIPIENT", "RELEASEWATCH_EMAIL_RECIPIENT"},
	"email_hostname":            {"EMAIL_HOSTNAME", "RELEASEWATCH_EMAIL_HOSTNAME"},
	"email_password":            {"EMAIL_PASSWORD", "RELEASEWATCH_EMAIL_PASSWORD"},
	"github_token":              {"GITHUB_TOKEN", "RELEASEWATCH_GITHUB_TOKEN"},
	"restore_on_notify_failure": {"RESTORE_ON_NOTIFY_FAILURE", "RELEASEWATCH_RESTORE_ON_NOTIFY_FAILURE"},
}

// LoadConfig loads the configuration and validates both the watch settings and
// the credentials of the selected channel.
func LoadConfig() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}
	if err := config.ValidateChannel(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// Load reads .releasewatch.yaml (optional) and the environment. Channel
// credentials are not checked, so read-only commands work without them.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".releasewatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	// Configure environment variables
	v.SetEnvPrefix("RELEASEWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s env: %w", key, err)
		}
	}
	setDefaults(v, DefaultConfig())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.ValidateWatch(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// setDefaults registers every key so AutomaticEnv and Unmarshal see it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("channel", d.Channel)
	v.SetDefault("bot_api_token", "")
	v.SetDefault("chat_id", "")
	v.SetDefault("bot_api_url", d.BotAPIURL)
	v.SetDefault("smtp_server", "")
	v.SetDefault("smtp_port", d.SMTPPort)
	v.SetDefault("smtp_timeout", d.SMTPTimeout)
	v.SetDefault("email_recipient", "")
	v.SetDefault("email_hostname", "")
	v.SetDefault("email_password", "")
	v.SetDefault("source", d.Source)
	v.SetDefault("release_api_url", d.ReleaseAPIURL)
	v.SetDefault("source_repo_url", d.SourceRepoURL)
	v.SetDefault("release_url_template", d.ReleaseURLTemplate)
	v.SetDefault("message_template", d.MessageTemplate)
	v.SetDefault("email_subject", d.EmailSubject)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("github_token", "")
	v.SetDefault("state_file", d.StateFile)
	v.SetDefault("fetch_max_attempts", d.FetchMaxAttempts)
	v.SetDefault("fetch_retry_delay", d.FetchRetryDelay)
	v.SetDefault("http_timeout", d.HTTPTimeout)
	v.SetDefault("lock_timeout", d.LockTimeout)
	v.SetDefault("run_timeout", d.RunTimeout)
	v.SetDefault("restore_on_notify_failure", false)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
}
