package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{EnvBaseURL, EnvTimeout, EnvTokenFile, EnvLogLevel, "BIBLIOCLI_PAGE_LIMIT"} {
		os.Unsetenv(k)
	}

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000/api", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 12, cfg.PageLimit)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_JSONOverridesOnlyMentionedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"base_url": "https://books.example.org/api",
		"request_timeout": "30s",
		"page_limit": 24
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://books.example.org/api", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 24, cfg.PageLimit)
	assert.Equal(t, uint64(2), cfg.RetryAttempts, "unmentioned fields keep their defaults")
}

func TestLoad_MissingRequestedFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoad_MalformedJSONFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EnvOverridesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"base_url": "https://from-file"}`), 0o600))

	t.Setenv(EnvBaseURL, "https://from-env")
	t.Setenv(EnvTimeout, "45s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env", cfg.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
}

func TestLoad_IgnoresInvalidEnvValues(t *testing.T) {
	t.Setenv(EnvTimeout, "soonish")
	t.Setenv("BIBLIOCLI_PAGE_LIMIT", "-4")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 12, cfg.PageLimit)
}
