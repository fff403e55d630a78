package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pz-dev/bibliocli/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept either strings like "15s" or integer nanoseconds via
// timex.Duration. Pointer fields distinguish "absent" from zero so the file
// only overrides what it mentions.
type jsonConfig struct {
	BaseURL        *string         `json:"base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	RetryAttempts  *uint64         `json:"retry_attempts"`
	RetryBackoff   *timex.Duration `json:"retry_backoff"`
	PageLimit      *int            `json:"page_limit"`
	TokenFile      *string         `json:"token_file"`
	LogLevel       *string         `json:"log_level"`
}

// applyJSON overlays cfg with values from the JSON file at path. An empty
// path means no file was requested; a missing requested file is an error.
func applyJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.BaseURL != nil {
		cfg.BaseURL = *jc.BaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RetryAttempts != nil {
		cfg.RetryAttempts = *jc.RetryAttempts
	}
	if jc.RetryBackoff != nil {
		cfg.RetryBackoff = jc.RetryBackoff.Duration
	}
	if jc.PageLimit != nil && *jc.PageLimit > 0 {
		cfg.PageLimit = *jc.PageLimit
	}
	if jc.TokenFile != nil {
		cfg.TokenFile = *jc.TokenFile
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
