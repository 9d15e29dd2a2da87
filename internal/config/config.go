package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Address  string
	APIKey   string
	Timeout  time.Duration
	LogLevel string

	// Object log follower
	DatabaseURL         string
	FollowName          string
	FollowPollInterval  time.Duration
	FollowQueryTimeout  time.Duration
	BreakerMaxFailures  int
	BreakerResetTimeout time.Duration
	MetricsPort         string

	// Fake server
	FakePort   string
	FakeAPIKey string
}

func Load() Config {
	return Config{
		Address:             getEnv("SAMPLEDB_ADDRESS", ""),
		APIKey:              getEnv("SAMPLEDB_API_KEY", ""),
		Timeout:             getEnvDuration("SAMPLEDB_TIMEOUT", 30*time.Second),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		FollowName:          getEnv("FOLLOW_NAME", "default"),
		FollowPollInterval:  getEnvDuration("FOLLOW_POLL_INTERVAL", 5*time.Second),
		FollowQueryTimeout:  getEnvDuration("FOLLOW_QUERY_TIMEOUT", 5*time.Second),
		BreakerMaxFailures:  getEnvInt("BREAKER_MAX_FAILURES", 5),
		BreakerResetTimeout: getEnvDuration("BREAKER_RESET_TIMEOUT", 30*time.Second),
		MetricsPort:         getEnv("METRICS_PORT", "9090"),
		FakePort:            getEnv("FAKE_PORT", "8080"),
		FakeAPIKey:          getEnv("FAKE_API_KEY", "fake-api-key"),
	}
}

// SlogLevel maps LOG_LEVEL values to slog levels. Unknown values are info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "error", err)
			return fallback
		}
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "error", err)
			return fallback
		}
		return d
	}
	return fallback
}
