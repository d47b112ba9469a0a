package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, 3*time.Second, cfg.Shell.CommandWait)
	assert.Equal(t, 30*time.Second, cfg.Shell.ConfirmWait)
	assert.Equal(t, 5*time.Second, cfg.Shell.CloseGrace)
	assert.Equal(t, 5, cfg.Shell.MaxSessions)
	assert.Equal(t, 4096, cfg.Shell.BufferMax)
	assert.Equal(t, 5*time.Minute, cfg.Shell.IdleExpiry)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9100"
shell:
  command_wait: 10s
  max_sessions: 2
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// YAML values override defaults.
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Shell.CommandWait)
	assert.Equal(t, 2, cfg.Shell.MaxSessions)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Fields the file omits keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.Shell.ConfirmWait)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9100\"\n"), 0o644))

	t.Setenv("PORT", "9200")
	t.Setenv("MAX_SESSIONS", "7")
	t.Setenv("CONFIRM_WAIT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9200", cfg.Server.Port)
	assert.Equal(t, 7, cfg.Shell.MaxSessions)
	assert.Equal(t, 45*time.Second, cfg.Shell.ConfirmWait)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)

	cfg := LoadOrDefault("/nonexistent/config.yaml")
	assert.Equal(t, "8000", cfg.Server.Port)
}

func TestLoadEmptyPathIsEnvOnly(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}
