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
	t.Setenv("OUTREACH_DATABASE__URL", "postgres://localhost/outreach")
	t.Setenv("OUTREACH_JWT__SECRET_KEY", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Database.MaxConns)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenDuration)
	assert.Equal(t, int64(5<<20), cfg.Uploads.MaxSizeBytes)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("OUTREACH_JWT__SECRET_KEY", "test-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: "9999"
database:
  url: postgres://localhost/fromfile
  max_conns: 25
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/fromfile", cfg.Database.URL)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	// untouched keys keep defaults
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("OUTREACH_JWT__SECRET_KEY", "test-secret")
	t.Setenv("OUTREACH_DATABASE__URL", "postgres://localhost/fromenv")
	t.Setenv("OUTREACH_DATABASE__MAX_CONNS", "3")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("database:\n  url: postgres://localhost/fromfile\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/fromenv", cfg.Database.URL)
	assert.Equal(t, 3, cfg.Database.MaxConns)
}

func TestLoad_MissingRequired(t *testing.T) {
	cfg, err := Load("")
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "database.url")
}
