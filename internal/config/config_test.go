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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
sites: [pracuj, eldorado]
keywords: [go, data]
pages: 3
output:
  dir: out
  basename: jobs
http:
  user_agent: test-agent
  timeout_ms: 1500
  delay_ms: 250
observability:
  log_level: debug
  log_path: ""
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []Site{SitePracuj, SiteEldorado}, cfg.Sites)
	assert.Equal(t, []string{"go", "data"}, cfg.Keywords)
	assert.Equal(t, 3, cfg.Pages)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "jobs", cfg.Output.Basename)
	assert.Equal(t, 1500*time.Millisecond, cfg.GetTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.GetDelay())
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Empty(t, cfg.Observability.LogPath)
	// untouched sections keep their defaults
	assert.Equal(t, 12*time.Hour, cfg.GetRobotsCacheTTL())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, []Site{SiteEldorado}, cfg.Sites)
	assert.Equal(t, 10, cfg.Pages)
	assert.Equal(t, 10*time.Second, cfg.GetDelay())
	assert.Equal(t, "links", cfg.Output.Dir)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv(EnvOutputDir, "/tmp/elsewhere")
	t.Setenv(EnvUserAgent, "env-agent")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := LoadConfig(writeConfig(t, "pages: 1\n"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/elsewhere", cfg.Output.Dir)
	assert.Equal(t, "env-agent", cfg.HTTP.UserAgent)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown site", "sites: [monster]\n"},
		{"unknown field", "pagez: 3\n"},
		{"no keywords", "keywords: [\" \"]\n"},
		{"zero pages", "pages: 0\n"},
		{"duplicate site", "sites: [eldorado, eldorado]\n"},
		{"basename with path", "output: {dir: out, basename: a/b}\n"},
		{"negative delay", "http: {user_agent: x, timeout_ms: 10, delay_ms: -1}\n"},
		{"bad log level", "observability: {log_level: loud}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
