package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{"PORT", "NEWS_DB_PATH", "NEWS_LOG_LEVEL", "NEWS_CACHE_SIZE"}

// isolate runs the test in an empty directory with the config variables unset.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "news.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.Cache.InvalidateOnWrite)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
server:
  addr: ":9090"
database:
  path: /tmp/other.db
session:
  max_age: 2h
cache:
  size: 10
  invalidate_on_write: false
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, 10, cfg.Cache.Size)
	assert.False(t, cfg.Cache.InvalidateOnWrite)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "server:\n  addr: \":9090\"\n")
	t.Setenv("PORT", "7000")
	t.Setenv("NEWS_DB_PATH", "/var/news.db")
	t.Setenv("NEWS_CACHE_SIZE", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/var/news.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Cache.Size)
}

func TestDotEnvIsRead(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NEWS_LOG_LEVEL=warn\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "cache:\n  size: 0\n"))
	assert.ErrorContains(t, err, "cache.size")

	t.Setenv("NEWS_CACHE_SIZE", "lots")
	_, err = Load("")
	assert.ErrorContains(t, err, "NEWS_CACHE_SIZE")
}
