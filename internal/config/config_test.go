package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "data/reminders.json", cfg.Storage.Path)
	assert.Equal(t, float64(20), cfg.Notifications.Rate)
	assert.Equal(t, []int{1, 5, 30}, cfg.Notifications.RetryDelaysSeconds)
	assert.Equal(t, "0 3 * * *", cfg.Maintenance.Schedule)
	assert.Equal(t, 8090, cfg.Monitoring.HealthCheckPort)
	assert.Equal(t, 90, cfg.History.RetentionDays)
}

func TestLoad_FileAndEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	t.Setenv("DOSEWATCH_TOKEN", "secret-token")

	content := `
storage:
  path: ` + filepath.Join(dir, "reminders.json") + `
scheduler:
  timezone: UTC
notifications:
  rate: 5
  retry_delays_seconds: [2, 4]
  telegram:
    bot_token: ${DOSEWATCH_TOKEN}
    chat_id: 42
bot:
  enabled: true
  allowed_chats: [42]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Notifications.Telegram.BotToken)
	assert.Equal(t, int64(42), cfg.Notifications.Telegram.ChatID)
	assert.Equal(t, float64(5), cfg.Notifications.Rate)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, cfg.RetryDelays())
	assert.Equal(t, time.UTC, cfg.Location())
	assert.True(t, cfg.Bot.Enabled)
}

func TestConfig_LocationFallback(t *testing.T) {
	var cfg Config
	cfg.Scheduler.Timezone = "Not/AZone"
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Scheduler.Timezone = ""
	assert.Equal(t, time.Local, cfg.Location())
}
