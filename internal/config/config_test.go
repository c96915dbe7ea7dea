package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_STATE_DIR", t.TempDir())
	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.APIURL)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.ToastTimeout)
	assert.Equal(t, time.Second, cfg.CartPoll)
	assert.Zero(t, cfg.GuardInterval)
	assert.Equal(t, 9, cfg.PageSize)
	assert.Equal(t, 8, cfg.AdminPageSize)
	assert.Empty(t, cfg.Source)
}

func TestProjectConfigWinsOverGlobal(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "project.yaml")
	global := filepath.Join(dir, "global.yaml")
	require.NoError(t, os.WriteFile(project, []byte("api_url: https://shop.example.com/api\ncart_poll: 5s\n"), 0o644))
	require.NoError(t, os.WriteFile(global, []byte("api_url: https://global.example.com/api\n"), 0o644))
	t.Setenv("STOREFRONT_STATE_DIR", dir)

	cfg, err := load(project, global)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/api", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.CartPoll)
	assert.Equal(t, project, cfg.Source)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STOREFRONT_API_URL", "http://127.0.0.1:9000/api")
	t.Setenv("STOREFRONT_LOG_LEVEL", "debug")
	t.Setenv("STOREFRONT_STATE_DIR", dir)
	t.Setenv("STOREFRONT_GUARD_INTERVAL", "2m")
	t.Setenv("STOREFRONT_OTLP_ENDPOINT", "localhost:4318")

	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/api", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, dir, cfg.StateDir)
	assert.Equal(t, filepath.Join(dir, "logs"), cfg.LogDir())
	assert.Equal(t, 2*time.Minute, cfg.GuardInterval)
	assert.Equal(t, "localhost:4318", cfg.Telemetry.OTLPEndpoint)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad scheme", "api_url: ftp://example.com\n"},
		{"bad level", "log_level: loud\n"},
		{"negative guard", "guard_interval: -1s\n"},
		{"zero page size", "page_size: 0\n"},
		{"bad yaml", "api_url: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			t.Setenv("STOREFRONT_STATE_DIR", t.TempDir())
			_, err := load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.APIURL = "https://shop.example.com/api"
	cfg.GuardInterval = 10 * time.Minute
	require.NoError(t, SaveTo(cfg, path))

	t.Setenv("STOREFRONT_STATE_DIR", t.TempDir())
	loaded, err := load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.APIURL, loaded.APIURL)
	assert.Equal(t, 10*time.Minute, loaded.GuardInterval)
}
