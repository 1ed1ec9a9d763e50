package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
database:
  driver: postgres
  dsn: postgres://localhost/eventdesk
client:
  dashboard_source: fixtures
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "fixtures", cfg.Client.DashboardSource)
	// untouched sections keep their defaults
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EVENTDESK_ADDR", ":7000")
	t.Setenv("EVENTDESK_TOKEN_TTL_HOURS", "48")
	t.Setenv("EVENTDESK_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("EVENTDESK_SUBMIT_LIMIT", "not-a-number")

	cfg, err := LoadFromEnv("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 48, cfg.Auth.TokenTTLHours)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10, cfg.RateLimit.SubmitLimit)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "mysql"
	cfg.Media.Backend = "s3"
	cfg.Client.DashboardSource = "mock"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "media.s3_bucket")
	assert.Contains(t, err.Error(), "client.dashboard_source")
}
