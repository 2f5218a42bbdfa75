package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scorarr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
radarr:
  url: http://localhost:7878
  api_key: abc123
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:7878", cfg.RadarrURL)
	assert.Equal(t, "abc123", cfg.RadarrAPIKey)

	assert.Equal(t, 100, cfg.MaxOverScore)
	assert.Equal(t, 0, cfg.MaxUnderScore)

	assert.True(t, cfg.TaggingEnabled)
	assert.Equal(t, "scorarr-ok", cfg.SuccessTagLabel)
	assert.Equal(t, "scorarr-mismatch", cfg.MismatchTagLabel)

	assert.Equal(t, 3, cfg.MaxConcurrentDownloads)
	assert.Equal(t, 30*time.Second, cfg.SearchInterval)
	assert.Equal(t, time.Minute, cfg.DownloadCheckInterval)
	assert.Equal(t, time.Hour, cfg.DownloadTimeout)
	assert.Equal(t, 2*time.Minute, cfg.CommandTimeout)
	assert.Equal(t, 2*time.Second, cfg.CommandPollInterval)
	assert.Equal(t, 2*time.Minute, cfg.GrabWaitTimeout)
	assert.Equal(t, 5*time.Second, cfg.HistoryPollInterval)
	assert.Equal(t, 0, cfg.Limit)

	assert.Equal(t, "8787", cfg.ServerPort)
	assert.Equal(t, "0 */6 * * *", cfg.ScheduleCron)

	assert.False(t, cfg.DryRun)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.WebhookURL)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
radarr:
  url: http://radarr:7878/
  api_key: abc123
scores:
  max_over_score: 50
  max_under_score: 10
tags:
  enabled: false
queue:
  max_concurrent_downloads: 5
  search_interval_seconds: 10
  limit: 25
notify:
  webhook_url: http://hooks.example/scorarr
dry_run: true
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://radarr:7878", cfg.RadarrURL, "trailing slash is trimmed")
	assert.Equal(t, 50, cfg.MaxOverScore)
	assert.Equal(t, 10, cfg.MaxUnderScore)
	assert.False(t, cfg.TaggingEnabled)
	assert.Equal(t, 5, cfg.MaxConcurrentDownloads)
	assert.Equal(t, 10*time.Second, cfg.SearchInterval)
	assert.Equal(t, 25, cfg.Limit)
	assert.Equal(t, "http://hooks.example/scorarr", cfg.WebhookURL)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRequiresRadarrURL(t *testing.T) {
	path := writeConfig(t, `
radarr:
  api_key: abc123
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radarr.url")
}

func TestLoadRequiresAPIKey(t *testing.T) {
	path := writeConfig(t, `
radarr:
  url: http://localhost:7878
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radarr.api_key")
}

func TestLoadRejectsNegativeTolerance(t *testing.T) {
	path := writeConfig(t, `
radarr:
  url: http://localhost:7878
  api_key: abc123
scores:
  max_under_score: -5
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_under_score")
}

func TestLoadRejectsZeroConcurrency(t *testing.T) {
	path := writeConfig(t, `
radarr:
  url: http://localhost:7878
  api_key: abc123
queue:
  max_concurrent_downloads: 0
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_downloads")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SCORARR_RADARR_URL", "http://env:7878")
	t.Setenv("SCORARR_RADARR_API_KEY", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env:7878", cfg.RadarrURL)
	assert.Equal(t, "env-key", cfg.RadarrAPIKey)
}
