package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "./data/mobility.db", cfg.DBPath)
	assert.False(t, cfg.AuthEnabled())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, 128, cfg.CacheSize)

	assert.Equal(t, 50.0, cfg.Defaults.DistanceThreshold)
	assert.Equal(t, 20.0, cfg.Defaults.TimeThreshold)
	assert.Equal(t, 10.0, cfg.Defaults.RadiusThreshold)
	assert.Equal(t, 20.0, cfg.Defaults.ContactTimeThreshold)
	assert.Equal(t, 10, cfg.Defaults.QuadrantParts)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("WORKERS", "3")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PARAMS_TIME_THRESHOLD", "45")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 45.0, cfg.Defaults.TimeThreshold)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mobmetrics.yaml")
	content := "db_path: /tmp/other.db\ncache_size: 16\nparams:\n  quadrant_parts: 4\n  is_geographical_coordinates: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, 4, cfg.Defaults.QuadrantParts)
	assert.True(t, cfg.Defaults.IsGeographicalCoordinates)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
