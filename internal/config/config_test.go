package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8001/api", cfg.APIBase())
	assert.Equal(t, "/login", cfg.LoginRoute)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir) // keep a stray .env out of the test
	t.Setenv("TRACKSIDE_CACHE_DIR", dir)
	t.Setenv("TRACKSIDE_BACKEND_URL", "https://club.example.org")
	t.Setenv("TRACKSIDE_REQUEST_TIMEOUT", "3s")
	t.Setenv("TRACKSIDE_MOCK_API", "true")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "https://club.example.org/api", cfg.APIBase())
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.MockAPI)
	assert.Equal(t, filepath.Join(dir, "trackside.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, "debug.log"), cfg.LogPath)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TRACKSIDE_CACHE_DIR", dir)
	yaml := "log_level: debug\nfetch_page_size: 25\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 25, cfg.FetchPageSize)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TRACKSIDE_CACHE_DIR", dir)
	t.Setenv("TRACKSIDE_LOG_LEVEL", "loud")

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_FlagsWin(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TRACKSIDE_CACHE_DIR", dir)
	t.Setenv("TRACKSIDE_LOG_LEVEL", "warn")

	fs := pflag.NewFlagSet("trackside", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--log-level=debug", "--mock", "--mock-addr=127.0.0.1:9100"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.MockAPI)
	assert.Equal(t, "http://127.0.0.1:9100/api", cfg.APIBase())
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}
