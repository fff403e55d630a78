package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables understood by the console. They override the JSON
// file but lose to explicit command-line flags.
const (
	EnvBaseURL   = "BIBLIOCLI_API_URL"
	EnvTimeout   = "BIBLIOCLI_TIMEOUT"
	EnvTokenFile = "BIBLIOCLI_TOKEN_FILE"
	EnvLogLevel  = "BIBLIOCLI_LOG_LEVEL"
)

func applyEnv(cfg *Config) {
	if v := getEnv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := getEnv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := getEnv(EnvTokenFile); v != "" {
		cfg.TokenFile = v
	}
	if v := getEnv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("BIBLIOCLI_PAGE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageLimit = n
		}
	}
}

func getEnv(key string) string {
	v, _ := os.LookupEnv(key)
	return v
}
