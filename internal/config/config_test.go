package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "./data", cfg.BasePath)
	assert.NotEmpty(t, cfg.Namespaces)
	assert.True(t, cfg.Compression.Enabled)
	assert.False(t, cfg.AutoSync.Enabled)
	assert.Equal(t, "@every 10m", cfg.Maintenance.CleanupSchedule)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	yaml := `
base_path: ` + filepath.Join(dir, "cache") + `
namespaces:
  - name: session
    key_prefix: sess
    ttl: 1h
  - name: patterns
    max_entries: 10
auto_sync:
  enabled: true
  interval: 30s
compression:
  enabled: true
  threshold: 2048
log:
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	require.Len(t, cfg.Namespaces, 2)
	assert.Equal(t, time.Hour, cfg.Namespaces[0].TTL)
	assert.Equal(t, 10, cfg.Namespaces[1].MaxEntries)
	assert.True(t, cfg.AutoSync.Enabled)
	assert.Equal(t, 30*time.Second, cfg.AutoSync.Interval)
	assert.Equal(t, 2048, cfg.Compression.Threshold)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Namespaces, cfg.Namespaces)
}

func TestToCoordinator_MapsFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BasePath = "/tmp/memcoord-test"
	cfg.AutoSync = AutoSyncConfig{Enabled: true, Interval: time.Minute}

	runtime := cfg.ToCoordinator()
	assert.Equal(t, "/tmp/memcoord-test", runtime.BasePath)
	assert.Len(t, runtime.Namespaces, len(cfg.Namespaces))
	assert.True(t, runtime.AutoSync.Enabled)
	assert.Equal(t, time.Minute, runtime.AutoSync.Interval)
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "base_path")
	assert.Contains(t, string(data), "namespaces")

	// Durations must come out as editable strings, never raw nanoseconds.
	assert.Contains(t, string(data), "ttl: 24h0m0s")
	assert.NotContains(t, string(data), "86400000000000")
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, WriteDefault(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Namespaces, cfg.Namespaces)
	assert.Equal(t, DefaultConfig().AutoSync, cfg.AutoSync)
}
