package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plainbot/internal/config"
)

const minimalYAML = `
telegram:
  token: "123:abc"
  admin_user_id: 42
gemini:
  api_key: "key"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.AdminUserID)
	assert.Equal(t, config.DefaultMaxMessageLength, cfg.Telegram.MaxMessageLength)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logger.Level)
	assert.Equal(t, config.DefaultGeminiModel, cfg.Gemini.ModelName)
	assert.Equal(t, config.DefaultGeminiBreakerFailures, cfg.Gemini.BreakerFailures)
	assert.Equal(t, config.DefaultDBPath, cfg.Database.Path)
	assert.Equal(t, config.DefaultNormalizerMode, cfg.Normalizer.Mode)
	assert.False(t, cfg.HTTP.Enabled)
	assert.NotEmpty(t, cfg.Messages.Welcome)

	require.Contains(t, cfg.Scheduler.Tasks, "sql_maintenance")
	assert.True(t, cfg.Scheduler.Tasks["sql_maintenance"].Enabled)
	assert.Equal(t, "0 0 3 * * *", cfg.Scheduler.Tasks["sql_maintenance"].Schedule)
	assert.Contains(t, cfg.Scheduler.Tasks, "history_retention")
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, minimalYAML+`
logger:
  level: debug
  json: true
normalizer:
  mode: list
  renumber_lists: true
http:
  enabled: true
  addr: "127.0.0.1:9090"
messages:
  welcome: "hi there"
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Logger.JSON)
	assert.Equal(t, "list", cfg.Normalizer.Mode)
	assert.True(t, cfg.Normalizer.RenumberLists)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Addr)
	assert.Equal(t, "hi there", cfg.Messages.Welcome)
	assert.NotEmpty(t, cfg.Messages.Help)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PLAINBOT_TELEGRAM_TOKEN", "from-env")
	t.Setenv("PLAINBOT_DATABASE_RETENTION_DAYS", "7")

	cfg, err := config.LoadConfig(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, 7, cfg.Database.RetentionDays)
}

func TestLoadConfig_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("PLAINBOT_TELEGRAM_TOKEN", "t")
	t.Setenv("PLAINBOT_TELEGRAM_ADMIN_USER_ID", "1")
	t.Setenv("PLAINBOT_GEMINI_API_KEY", "k")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), cfg.Telegram.AdminUserID)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing token", yaml: "telegram:\n  admin_user_id: 1\ngemini:\n  api_key: k\n"},
		{name: "missing admin", yaml: "telegram:\n  token: t\ngemini:\n  api_key: k\n"},
		{name: "bad log level", yaml: minimalYAML + "logger:\n  level: loud\n"},
		{name: "bad normalizer mode", yaml: minimalYAML + "normalizer:\n  mode: html\n"},
		{name: "message length over telegram limit", yaml: "telegram:\n  token: t\n  admin_user_id: 1\n  max_message_length: 5000\ngemini:\n  api_key: k\n"},
		{name: "enabled task without schedule", yaml: minimalYAML + "scheduler:\n  tasks:\n    custom:\n      enabled: true\n"},
		{name: "http enabled without addr", yaml: minimalYAML + "http:\n  enabled: true\n  addr: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrValidation)
		})
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	_, err := config.LoadConfig(writeConfig(t, "telegram: [unclosed"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrValidation)
}
