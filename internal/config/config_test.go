package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "KV_BACKEND", "AI_TIMEOUT_SECONDS", "EXPORT_SCALE", "EXPORT_RASTER_ATTEMPTS", "MINIO_ENDPOINT", "MINIO_BUCKET", "SESSION_IDLE_TTL_SECONDS", "SESSION_MAX"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.KVBackend)
	assert.Equal(t, 20*time.Second, cfg.AITimeout)
	assert.Equal(t, 2.0, cfg.Export.Scale)
	assert.Equal(t, 3, cfg.Export.RasterAttempts)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, 1000, cfg.MaxSessions)
	assert.False(t, cfg.MinIO.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("KV_BACKEND", BackendSQLite)
	t.Setenv("AI_TIMEOUT_SECONDS", "5")
	t.Setenv("EXPORT_SCALE", "-1")
	t.Setenv("EXPORT_RASTER_ATTEMPTS", "x")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_BUCKET", "resumes")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("SESSION_IDLE_TTL_SECONDS", "60")
	t.Setenv("SESSION_MAX", "50")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.KVBackend)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, 2.0, cfg.Export.Scale)
	assert.Equal(t, 3, cfg.Export.RasterAttempts)
	assert.True(t, cfg.MinIO.Enabled())
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, 50, cfg.MaxSessions)
}
