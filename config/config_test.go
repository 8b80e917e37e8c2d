package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:5001", cfg.API.BaseURL)
	require.Zero(t, cfg.API.Timeout)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, int64(10*1024*1024), cfg.App.MaxUploadSize)
	require.Equal(t, 4, cfg.App.NormalizeConcurrency)
	require.Equal(t, "dir", cfg.Export.Sink)
	require.Empty(t, cfg.Redis.Addr)
	require.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	require.False(t, cfg.App.Release())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_BASE_URL", "http://backend:5001")
	t.Setenv("API_TIMEOUT", "45s")
	t.Setenv("APP_MODE", "release")
	t.Setenv("QUALITY_GATE", "true")
	t.Setenv("EXPORT_SINK", "s3")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://backend:5001", cfg.API.BaseURL)
	require.Equal(t, 45*time.Second, cfg.API.Timeout)
	require.True(t, cfg.App.Release())
	require.True(t, cfg.App.QualityGate)
	require.Equal(t, "s3", cfg.Export.Sink)
	require.Equal(t, 3, cfg.Redis.DB)
}
