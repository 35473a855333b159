package config

import (
	"os"
	"strconv"
	"time"
)

// Storage backends for documents.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether exports should be uploaded to a bucket.
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != "" && m.Bucket != ""
}

type ExportConfig struct {
	Dir            string
	ChromePath     string
	Scale          float64
	RasterAttempts int
	RasterBackoff  time.Duration
}

type AppConfig struct {
	Port      string
	LogLevel  string
	LogFormat string

	KVBackend   string
	RedisURL    string
	DatabaseURL string
	SQLitePath  string

	AIServiceURL string
	AITimeout    time.Duration

	SessionIdleTTL time.Duration
	MaxSessions    int

	Export ExportConfig
	MinIO  MinIOConfig
}

// Load reads configuration from the environment. Import
// github.com/joho/godotenv/autoload in main to pick up a .env file first.
func Load() *AppConfig {
	return &AppConfig{
		Port:      getEnv("PORT", "3000"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		KVBackend:   getEnv("KV_BACKEND", BackendMemory),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "resumes.db"),

		AIServiceURL: getEnv("AI_SERVICE_URL", "http://ai-service:8000"),
		AITimeout:    time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 20)) * time.Second,

		SessionIdleTTL: time.Duration(getEnvInt("SESSION_IDLE_TTL_SECONDS", 1800)) * time.Second,
		MaxSessions:    getEnvInt("SESSION_MAX", 1000),

		Export: ExportConfig{
			Dir:            getEnv("EXPORT_DIR", "exports"),
			ChromePath:     getEnv("CHROME_PATH", ""),
			Scale:          getEnvFloat("EXPORT_SCALE", 2),
			RasterAttempts: getEnvInt("EXPORT_RASTER_ATTEMPTS", 3),
			RasterBackoff:  time.Duration(getEnvInt("EXPORT_RASTER_BACKOFF_MS", 1000)) * time.Millisecond,
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}
