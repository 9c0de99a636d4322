package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "tilp-connect/common/config"
	"tilp-connect/internal/media"
)

// Config tilp-connect server settings, read from the environment.
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled    bool
	Database     commoncfg.DatabaseConfig
	RedisEnabled bool
	Redis        commoncfg.RedisConfig
	Session      struct {
		TTL time.Duration
	}
	Media struct {
		Dir      string
		MaxBytes int64
	}
	Seed struct {
		Admin bool
		Demo  bool
	}
	Log struct {
		Level  string
		Format string
	}
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// With DB_ENABLED=true an unreachable database still falls back to the
	// in-memory store so the server can start for local dev.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "tilp")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Session.TTL = parseDuration(getEnv("SESSION_TTL", "12h"), 12*time.Hour)

	cfg.Media.Dir = getEnv("MEDIA_DIR", "media")
	cfg.Media.MaxBytes = parseInt64(getEnv("MEDIA_MAX_BYTES", ""), media.DefaultMaxBytes)

	cfg.Seed.Admin = getEnv("SEED_ADMIN", "true") == "true"
	cfg.Seed.Demo = getEnv("SEED_DEMO", "false") == "true"

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseInt64(s string, def int64) int64 {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
