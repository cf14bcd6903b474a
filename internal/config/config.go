package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service settings. Values come from an optional YAML file
// named by CONFIG_FILE, with environment variables taking precedence over
// the file and built-in defaults filling the rest.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream pollution data source.
	PollutionURL     string
	PollutionTimeout time.Duration

	// Description summary endpoint.
	WikiBaseURL string
	WikiTimeout time.Duration

	// Enrichment pacing and caching.
	DescribeSpacing     time.Duration
	DescribeTTL         time.Duration
	DescribeNegativeTTL time.Duration

	PageTTL            time.Duration
	CacheSweepInterval time.Duration

	DefaultPageLimit int
	MaxPageLimit     int
}

// fileConfig mirrors Config with YAML tags; every field is a string so the
// same duration/int parsing applies to file and environment values.
type fileConfig struct {
	HTTPAddr        string `yaml:"http_addr"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`

	PollutionURL     string `yaml:"pollution_url"`
	PollutionTimeout string `yaml:"pollution_timeout"`

	WikiBaseURL string `yaml:"wiki_base_url"`
	WikiTimeout string `yaml:"wiki_timeout"`

	DescribeSpacing     string `yaml:"describe_spacing"`
	DescribeTTL         string `yaml:"describe_ttl"`
	DescribeNegativeTTL string `yaml:"describe_negative_ttl"`

	PageTTL            string `yaml:"page_ttl"`
	CacheSweepInterval string `yaml:"cache_sweep_interval"`

	DefaultPageLimit string `yaml:"default_page_limit"`
	MaxPageLimit     string `yaml:"max_page_limit"`
}

// Load reads configuration, applying defaults where unset.
func Load() (*Config, error) {
	var file fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := &Config{
		HTTPAddr:     pick("HTTP_ADDR", file.HTTPAddr, ":8080"),
		LogLevel:     pick("LOG_LEVEL", file.LogLevel, "info"),
		LogFormat:    pick("LOG_FORMAT", file.LogFormat, "json"),
		PollutionURL: pick("POLLUTION_URL", file.PollutionURL, ""),
		WikiBaseURL:  pick("WIKI_BASE_URL", file.WikiBaseURL, ""),
	}

	var err error
	if cfg.ShutdownTimeout, err = pickDuration("SHUTDOWN_TIMEOUT", file.ShutdownTimeout, 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.PollutionTimeout, err = pickDuration("POLLUTION_TIMEOUT", file.PollutionTimeout, 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.WikiTimeout, err = pickDuration("WIKI_TIMEOUT", file.WikiTimeout, 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DescribeSpacing, err = pickDuration("DESCRIBE_SPACING", file.DescribeSpacing, 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.DescribeTTL, err = pickDuration("DESCRIBE_TTL", file.DescribeTTL, 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DescribeNegativeTTL, err = pickDuration("DESCRIBE_NEGATIVE_TTL", file.DescribeNegativeTTL, time.Hour); err != nil {
		return nil, err
	}
	if cfg.PageTTL, err = pickDuration("PAGE_TTL", file.PageTTL, 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheSweepInterval, err = pickDuration("CACHE_SWEEP_INTERVAL", file.CacheSweepInterval, time.Minute); err != nil {
		return nil, err
	}
	if cfg.DefaultPageLimit, err = pickInt("DEFAULT_PAGE_LIMIT", file.DefaultPageLimit, 20); err != nil {
		return nil, err
	}
	if cfg.MaxPageLimit, err = pickInt("MAX_PAGE_LIMIT", file.MaxPageLimit, 100); err != nil {
		return nil, err
	}

	if cfg.PollutionURL == "" {
		return nil, errors.New("POLLUTION_URL is required")
	}
	if cfg.DefaultPageLimit > cfg.MaxPageLimit {
		return nil, errors.New("DEFAULT_PAGE_LIMIT must not exceed MAX_PAGE_LIMIT")
	}

	return cfg, nil
}

// pick returns the environment value, then the file value, then the default.
func pick(env, fileVal, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	if fileVal != "" {
		return fileVal
	}
	return def
}

func pickDuration(env, fileVal string, def time.Duration) (time.Duration, error) {
	s := pick(env, fileVal, "")
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", env, s)
	}
	return d, nil
}

func pickInt(env, fileVal string, def int) (int, error) {
	s := pick(env, fileVal, "")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", env, s)
	}
	return n, nil
}
