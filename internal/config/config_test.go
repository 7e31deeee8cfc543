package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "Asia/Seoul", cfg.Timezone)
	assert.Equal(t, int64(10<<20), cfg.MaxFileSize)
	assert.Equal(t, time.Hour, cfg.ExpiryScanInterval)
	assert.Equal(t, 5*time.Minute, cfg.DashboardCacheTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "license-files", cfg.MinIO.Bucket)
	assert.False(t, cfg.AuthEnabled())
	assert.Error(t, cfg.RequireDatabase())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/licenses")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("EXPIRY_SCAN_INTERVAL", "15m")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.True(t, cfg.AuthEnabled())
	assert.NoError(t, cfg.RequireDatabase())
	assert.Equal(t, 15*time.Minute, cfg.ExpiryScanInterval)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := load(viper.New())
	assert.ErrorContains(t, err, "invalid timezone")
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: 0, MaxFileSize: 1, Timezone: "UTC"}
	assert.ErrorContains(t, cfg.Validate(), "invalid port")

	cfg = &Config{Port: 80, MaxFileSize: 0, Timezone: "UTC"}
	assert.ErrorContains(t, cfg.Validate(), "max_file_size")
}
