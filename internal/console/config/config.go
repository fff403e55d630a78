// Package config holds runtime settings for the console. Values are
// layered: built-in defaults, then a JSON config file, then environment
// variables; command-line flags overlay last in the cli package. Later
// sources win.
package config

import "time"

// Config is the resolved runtime configuration.
//
// Fields:
//   - BaseURL: root of the remote API, e.g. "http://localhost:4000/api".
//   - RequestTimeout: hard bound on every HTTP request.
//   - RetryAttempts / RetryBackoff: bounded retry for idempotent reads;
//     mutations are never retried.
//   - PageLimit: default catalog page size.
//   - TokenFile: where the bearer credential persists; "" selects the
//     default under the user config dir.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	RetryAttempts  uint64
	RetryBackoff   time.Duration
	PageLimit      int
	TokenFile      string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:4000/api"
	c.RequestTimeout = 15 * time.Second
	c.RetryAttempts = 2
	c.RetryBackoff = 250 * time.Millisecond
	c.PageLimit = 12
	c.LogLevel = "warn"
}

// Load builds a Config from defaults, the JSON file at path (skipped when
// path is empty), and environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := applyJSON(cfg, path); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}
