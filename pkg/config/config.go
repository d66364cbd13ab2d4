// Package config loads all service configuration from the environment.
// Each concern has its own typed struct and loader; Load composes them.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full configuration of the service.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	LLM     LLMConfig
	Budget  BudgetConfig
	Access  AccessConfig
	Notifx  NotifxConfig
	Jobx    JobxConfig

	// RedisURL enables the Redis-backed turn lock and job queue when set.
	RedisURL string
}

// Load reads the whole configuration from the environment.
func Load() *Config {
	return &Config{
		Server:   loadServerConfig(),
		Storage:  loadStorageConfig(),
		LLM:      loadLLMConfig(),
		Budget:   loadBudgetConfig(),
		Access:   loadAccessConfig(),
		Notifx:   loadNotifxConfig(),
		Jobx:     loadJobxConfig(),
		RedisURL: getEnv("REDIS_URL", ""),
	}
}

// ============================================================================
// Env Helpers
// ============================================================================

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
