package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, "data/airports/airports.csv", cfg.Data.AirportsFile)
	assert.Equal(t, 64, cfg.Cache.MaxEntries)
	assert.Equal(t, 3600, cfg.Cache.TTLSecs)
	assert.Equal(t, 5000, cfg.Query.MaxBuildings)
	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Server.RateLimitEnabled)
	assert.InDelta(t, 100.0/60.0, cfg.Server.RateLimitRPS, 1e-9)
	assert.Equal(t, 20, cfg.Server.RateLimitBurst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
data:
  dir: /srv/solar/data
cache:
  max_entries: 128
query:
  max_buildings: 1000
server:
  port: 9090
  rate_limit_enabled: false
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/solar/data", cfg.Data.Dir)
	assert.Equal(t, 128, cfg.Cache.MaxEntries)
	assert.Equal(t, 1000, cfg.Query.MaxBuildings)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Server.RateLimitEnabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3600, cfg.Cache.TTLSecs)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("SOLARSCOUT_DATA_DIR", "/mnt/footprints")
	t.Setenv("SOLARSCOUT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/mnt/footprints", cfg.Data.Dir)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
