package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything postpilot reads at startup.
type Config struct {
	APIURL         string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	RateLimit      float64
	CacheBackend   string
	CachePath      string
	LogFile        string
	LogLevel       string
}

const (
	// FallbackAPIURL is used when neither the file nor the environment names a backend.
	FallbackAPIURL = "https://auto-posting-backend-production.up.railway.app"

	defaultConfigPath     = "~/.config/postpilot/config.toml"
	defaultLogFile        = "~/.local/share/postpilot/postpilot.log"
	defaultRequestTimeout = 15 * time.Second
	defaultPollInterval   = 2 * time.Second
	defaultCacheBackend   = "file"
	defaultLogLevel       = "info"

	minPollInterval = 500 * time.Millisecond
)

// Environment variables consulted after the optional .env file is loaded.
const (
	EnvAPIURL       = "POSTPILOT_API_URL"
	EnvLegacyAPIURL = "NEXT_PUBLIC_API_URL"
	EnvLogLevel     = "POSTPILOT_LOG_LEVEL"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         FallbackAPIURL,
		RequestTimeout: defaultRequestTimeout,
		PollInterval:   defaultPollInterval,
		CacheBackend:   defaultCacheBackend,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
	}
}

// Load reads the TOML config at path (empty uses the default location) and
// applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	// .env is optional; its values never replace variables already set.
	_ = godotenv.Load()

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		if err := cfg.merge(file); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(r io.Reader) error {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL                string  `toml:"api_url"`
		RequestTimeoutSeconds float64 `toml:"request_timeout_seconds"`
		PollSeconds           float64 `toml:"poll_seconds"`
		RateLimit             float64 `toml:"rate_limit"`
		CacheBackend          string  `toml:"cache_backend"`
		CachePath             string  `toml:"cache_path"`
		LogFile               string  `toml:"log_file"`
		LogLevel              string  `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		c.APIURL = v
	}
	if raw.RequestTimeoutSeconds > 0 {
		c.RequestTimeout = seconds(raw.RequestTimeoutSeconds)
	}
	if raw.PollSeconds > 0 {
		c.PollInterval = seconds(raw.PollSeconds)
	}
	c.RateLimit = raw.RateLimit
	if v := strings.ToLower(strings.TrimSpace(raw.CacheBackend)); v != "" {
		c.CacheBackend = v
	}
	if v := strings.TrimSpace(raw.CachePath); v != "" {
		c.CachePath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		c.LogLevel = v
	}
	return nil
}

func (c *Config) applyEnv() {
	c.APIURL = getEnv(EnvAPIURL, getEnv(EnvLegacyAPIURL, c.APIURL))
	c.LogLevel = strings.ToLower(getEnv(EnvLogLevel, c.LogLevel))
}

// Validate rejects values the rest of the program cannot work with.
func (c Config) Validate() error {
	switch c.CacheBackend {
	case "file", "sqlite", "none":
	default:
		return fmt.Errorf("cache_backend %q: want file, sqlite or none", c.CacheBackend)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if c.PollInterval < minPollInterval {
		return fmt.Errorf("poll_seconds must be at least %s", minPollInterval)
	}
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
