package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 120, cfg.Server.RateLimit)
	assert.Equal(t, time.Minute, cfg.Server.RateWindow)
	assert.Equal(t, SourceFiles, cfg.Data.Source)
	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.AdminEnabled())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("ELECTION_SERVER_PORT", "9000")
	t.Setenv("ELECTION_DATA_SOURCE", "SQLite")
	t.Setenv("ELECTION_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("ELECTION_SERVER_RATE_WINDOW", "30s")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, SourceSQLite, cfg.Data.Source)
	assert.Equal(t, 30*time.Second, cfg.Server.RateWindow)
	assert.True(t, cfg.AdminEnabled())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: \":7000\"\n  rate_limit: 10\ndata:\n  dir: /srv/election\nlog:\n  format: console\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.RateLimit)
	assert.Equal(t, "/srv/election", cfg.Data.Dir)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "./data/election.db", cfg.Data.DBPath)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	require.NoError(t, cfg.Validate())

	cfg.Data.Source = "postgres"
	cfg.Log.Format = "xml"
	cfg.Server.Mode = "prod"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.source")
	assert.Contains(t, err.Error(), "log.format")
	assert.Contains(t, err.Error(), "server.mode")
}
