package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadConfig reads and runs the test in an
// empty directory so a stray .releasewatch.yaml cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, envs := range envBindings {
		for _, env := range envs {
			t.Setenv(env, "")
		}
	}
	t.Setenv("RELEASEWATCH_SOURCE", "")
	t.Setenv("RELEASEWATCH_STATE_FILE", "")
	t.Setenv("RELEASEWATCH_FETCH_RETRY_DELAY", "")
	chdir(t, t.TempDir())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
}

func TestLoadConfig(t *testing.T) {
	t.Run("Should load telegram credentials from the environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOT_API_TOKEN", "123:abc")
		t.Setenv("CHAT_ID", "-1001")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, ChannelTelegram, cfg.NormalizedChannel())
		assert.Equal(t, "123:abc", cfg.BotAPIToken)
		assert.Equal(t, "-1001", cfg.ChatID)
		assert.Equal(t, "version.txt", cfg.StateFile)
		assert.Equal(t, 10, cfg.FetchMaxAttempts)
		assert.Equal(t, 5*time.Second, cfg.FetchRetryDelay)
		assert.Equal(t, "https://api.github.com/repos/near/nearcore/releases/latest", cfg.ReleaseAPIURL)
	})
	t.Run("Should accept the legacy telegram variable names", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TELEGRAM_BOT_API", "legacy-token")
		t.Setenv("TELEGRAM_CHAT_ID", "42")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "legacy-token", cfg.BotAPIToken)
		assert.Equal(t, "42", cfg.ChatID)
	})
	t.Run("Should report every missing telegram variable", func(t *testing.T) {
		clearEnv(t)
		cfg, err := LoadConfig()
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.True(t, errors.Is(err, domain.ErrMissingConfig))
		var missing *MissingConfigError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"BOT_API_TOKEN", "CHAT_ID"}, missing.Vars)
	})
	t.Run("Should require all email variables when the email channel is selected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NOTIFY_CHANNEL", "email")
		t.Setenv("SMTP_SERVER", "smtp.example.com")
		t.Setenv("EMAIL_HOSTNAME", "bot@example.com")
		_, err := LoadConfig()
		require.Error(t, err)
		var missing *MissingConfigError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, ChannelEmail, missing.Channel)
		assert.Equal(t, []string{"EMAIL_RECIPIENT", "EMAIL_PASSWORD"}, missing.Vars)
	})
	t.Run("Should read overrides from the config file", func(t *testing.T) {
		clearEnv(t)
		dir, err := os.Getwd()
		require.NoError(t, err)
		content := "channel: bot\nbot_api_token: file-token\nchat_id: \"7\"\nstate_file: state/latest.txt\nfetch_retry_delay: 2s\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".releasewatch.yaml"), []byte(content), 0o600))
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, ChannelTelegram, cfg.NormalizedChannel())
		assert.Equal(t, "file-token", cfg.BotAPIToken)
		assert.Equal(t, "state/latest.txt", cfg.StateFile)
		assert.Equal(t, 2*time.Second, cfg.FetchRetryDelay)
	})
}

func TestLoad(t *testing.T) {
	t.Run("Should not require channel credentials", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "version.txt", cfg.StateFile)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.BotAPIToken = "token"
		cfg.ChatID = "1"
		return cfg
	}
	t.Run("Should accept defaults with credentials", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})
	t.Run("Should reject an unknown channel", func(t *testing.T) {
		cfg := valid()
		cfg.Channel = "pager"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown channel")
	})
	t.Run("Should reject a non-http release url", func(t *testing.T) {
		cfg := valid()
		cfg.ReleaseAPIURL = "ftp://example.com/latest"
		assert.ErrorContains(t, cfg.Validate(), "invalid release_api_url")
	})
	t.Run("Should reject an empty user agent", func(t *testing.T) {
		cfg := valid()
		cfg.UserAgent = "  "
		assert.ErrorContains(t, cfg.Validate(), "user_agent")
	})
	t.Run("Should reject a zero attempt budget", func(t *testing.T) {
		cfg := valid()
		cfg.FetchMaxAttempts = 0
		assert.ErrorContains(t, cfg.Validate(), "fetch_max_attempts")
	})
	t.Run("Should reject a broken message template", func(t *testing.T) {
		cfg := valid()
		cfg.MessageTemplate = "{{.URL"
		assert.ErrorContains(t, cfg.Validate(), "message_template")
	})
	t.Run("Should accept the tags source with a repository url", func(t *testing.T) {
		cfg := valid()
		cfg.Source = SourceTags
		cfg.ReleaseAPIURL = ""
		assert.NoError(t, cfg.Validate())
	})
}
