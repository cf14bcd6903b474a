package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPollutionURL = "https://data.example.com/v1/measurements"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POLLUTION_URL", testPollutionURL)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, testPollutionURL, cfg.PollutionURL)
	assert.Equal(t, 30*time.Second, cfg.PollutionTimeout)
	assert.Empty(t, cfg.WikiBaseURL)
	assert.Equal(t, 10*time.Second, cfg.WikiTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.DescribeSpacing)
	assert.Equal(t, 24*time.Hour, cfg.DescribeTTL)
	assert.Equal(t, time.Hour, cfg.DescribeNegativeTTL)
	assert.Equal(t, 10*time.Minute, cfg.PageTTL)
	assert.Equal(t, time.Minute, cfg.CacheSweepInterval)
	assert.Equal(t, 20, cfg.DefaultPageLimit)
	assert.Equal(t, 100, cfg.MaxPageLimit)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("POLLUTION_URL", testPollutionURL)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("DESCRIBE_SPACING", "250ms")
	t.Setenv("DEFAULT_PAGE_LIMIT", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 250*time.Millisecond, cfg.DescribeSpacing)
	assert.Equal(t, 10, cfg.DefaultPageLimit)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":7070"
pollution_url: https://file.example.com/data
describe_ttl: 12h
`), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "https://file.example.com/data", cfg.PollutionURL)
	assert.Equal(t, 12*time.Hour, cfg.DescribeTTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":7070"
pollution_url: https://file.example.com/data
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "https://file.example.com/data", cfg.PollutionURL)
}

func TestLoad_MissingPollutionURL(t *testing.T) {
	_, err := Load()
	assert.ErrorContains(t, err, "POLLUTION_URL is required")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("POLLUTION_URL", testPollutionURL)
	t.Setenv("DESCRIBE_SPACING", "fast")

	_, err := Load()
	assert.ErrorContains(t, err, "DESCRIBE_SPACING")
}

func TestLoad_DefaultLimitAboveMax(t *testing.T) {
	t.Setenv("POLLUTION_URL", testPollutionURL)
	t.Setenv("DEFAULT_PAGE_LIMIT", "200")

	_, err := Load()
	assert.ErrorContains(t, err, "DEFAULT_PAGE_LIMIT")
}

func TestLoad_BadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.ErrorContains(t, err, "parse config file")
}
