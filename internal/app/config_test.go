package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "matchup", cfg.Auth.JWT.Issuer)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)
	assert.Equal(t, 7, cfg.Challenges.ResponseDeadlineDays)
	assert.Equal(t, 2, cfg.Challenges.ExpiringSoonDays)
	assert.Equal(t, 20, cfg.Challenges.PageSize)
	assert.True(t, cfg.Maintenance.Enabled)
	assert.Equal(t, 90, cfg.Maintenance.AuditRetentionDays)
	assert.Equal(t, "@daily", cfg.Maintenance.AuditSchedule)
	assert.True(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
server:
  port: 9100
  log_level: debug
challenges:
  response_deadline_days: 3
  page_size: 50
auth:
  jwt:
    secret: file-secret
    access_token_ttl: 2h
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 3, cfg.Challenges.ResponseDeadlineDays)
	assert.Equal(t, 50, cfg.Challenges.PageSize)
	assert.Equal(t, "file-secret", cfg.Auth.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWT.TTL)
	// Untouched keys keep their defaults.
	assert.Equal(t, 2, cfg.Challenges.ExpiringSoonDays)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("MATCHUP_SERVER_PORT", "9200")
	t.Setenv("MATCHUP_CHALLENGES_EXPIRING_SOON_DAYS", "4")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Challenges.ExpiringSoonDays)
}
