package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "braincandy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.45, cfg.Scoring.Threshold)
	assert.Equal(t, 50, cfg.Curation.MaxQueueSize)
	assert.Equal(t, 2, cfg.Curation.MaxPerSource)
	assert.Equal(t, 5, cfg.Curation.ReviewBatchSize)
	assert.Equal(t, "America/Chicago", cfg.Scheduler.Location().String())
	assert.NotEmpty(t, cfg.Sites)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
scheduler:
  timezone: Europe/Berlin
curation:
  maxQueueSize: 10
  sendDelay: 250ms
scoring:
  threshold: 0.6
sites:
  - name: Gwern
    url: https://gwern.net/feed
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.Scheduler.Location().String())
	assert.Equal(t, 10, cfg.Curation.MaxQueueSize)
	assert.Equal(t, 2, cfg.Curation.MaxPerSource)
	assert.Equal(t, 250*time.Millisecond, cfg.Curation.SendDelay)
	assert.Equal(t, 0.6, cfg.Scoring.Threshold)
	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "rss", cfg.Sites[0].Scanner)
	assert.NotEmpty(t, cfg.Scoring.BadTitlePatterns)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(telegramTokenEnv, "123:abc")
	t.Setenv(telegramChannelEnv, "@candy")
	t.Setenv(telegramReviewerEnv, "42")
	t.Setenv(storageDriverEnv, DriverSQLite)
	t.Setenv(timezoneEnv, "UTC")
	t.Setenv(scoreThresholdEnv, "0.5")
	t.Setenv(hackerNewsEnabledEnv, "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "@candy", cfg.Telegram.ChannelID)
	assert.Equal(t, "42", cfg.Telegram.ReviewerChatID)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
	assert.Equal(t, 0.5, cfg.Scoring.Threshold)
	assert.False(t, cfg.HackerNews.Enabled)
}

func TestLoadUnknownTimezoneFallsBack(t *testing.T) {
	path := writeConfig(t, "scheduler:\n  timezone: Mars/Olympus\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", cfg.Scheduler.Location().String())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	path := writeConfig(t, "scoring:\n  threshold: 1.5\nstorage:\n  driver: postgres\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scoring.threshold")
	assert.Contains(t, err.Error(), "postgres")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestInPostingWindow(t *testing.T) {
	cfg := Default()
	cfg.bindTimezone()

	chicago := cfg.Scheduler.Location()
	assert.True(t, cfg.Scheduler.InPostingWindow(time.Date(2025, 3, 3, 9, 0, 0, 0, chicago)))
	assert.True(t, cfg.Scheduler.InPostingWindow(time.Date(2025, 3, 3, 18, 30, 0, 0, chicago)))
	assert.False(t, cfg.Scheduler.InPostingWindow(time.Date(2025, 3, 3, 19, 0, 0, 0, chicago)))
	assert.False(t, cfg.Scheduler.InPostingWindow(time.Date(2025, 3, 3, 13, 0, 0, 0, time.UTC)))
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "braincandy.yaml"))
	require.NoError(t, err)

	assert.Len(t, cfg.Sites, 105)
	assert.Len(t, cfg.Canonical, 46)
	assert.Equal(t, "rss", cfg.Sites[0].Scanner)
	assert.Equal(t, 300*time.Millisecond, cfg.Curation.SourceDelay)
	assert.Contains(t, cfg.Filters.NeverResurface, "https://nadia.xyz/basic")
	assert.Equal(t, "vitalik.eth.limo/", cfg.Redirects["vitalik.ca/"])
}
