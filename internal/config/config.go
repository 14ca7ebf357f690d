package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the client's settings after defaults and path expansion.
type Config struct {
	Origin         string
	BaseURL        string
	MaxItems       int
	PollInterval   time.Duration
	PingInterval   time.Duration
	RequestTimeout time.Duration
	LogDir         string
	LogLevel       string
	MetricsAddr    string
}

const (
	defaultConfigPath     = "~/.config/headlines/config.toml"
	defaultOrigin         = "http://localhost:8000"
	defaultMaxItems       = 200
	defaultPollMillis     = 10000
	defaultPingMillis     = 20000
	defaultTimeoutMillis  = 5000
	defaultLogDir         = "~/.local/share/headlines/logs"
	defaultLogLevel       = "info"
	logFileName           = "headlines.log"
	defaultPollInterval   = defaultPollMillis * time.Millisecond
	defaultPingInterval   = defaultPingMillis * time.Millisecond
	defaultRequestTimeout = defaultTimeoutMillis * time.Millisecond
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Origin:         defaultOrigin,
		MaxItems:       defaultMaxItems,
		PollInterval:   defaultPollInterval,
		PingInterval:   defaultPingInterval,
		RequestTimeout: defaultRequestTimeout,
		LogDir:         mustExpand(defaultLogDir),
		LogLevel:       defaultLogLevel,
	}
}

// Load reads the config file at path (or the default location when empty).
// A missing file yields Default; blank or non-positive values fall back to
// their defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Origin           string `toml:"origin"`
		BaseURL          string `toml:"base_url"`
		MaxItems         int    `toml:"max_items"`
		PollIntervalMS   int    `toml:"poll_interval_ms"`
		PingIntervalMS   int    `toml:"ping_interval_ms"`
		RequestTimeoutMS int    `toml:"request_timeout_ms"`
		LogDir           string `toml:"log_dir"`
		LogLevel         string `toml:"log_level"`
		MetricsAddr      string `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	cfg.Origin = orDefault(raw.Origin, defaultOrigin)
	cfg.BaseURL = strings.TrimSpace(raw.BaseURL)
	cfg.MaxItems = positiveOr(raw.MaxItems, defaultMaxItems)
	cfg.PollInterval = millisOr(raw.PollIntervalMS, defaultPollInterval)
	cfg.PingInterval = millisOr(raw.PingIntervalMS, defaultPingInterval)
	cfg.RequestTimeout = millisOr(raw.RequestTimeoutMS, defaultRequestTimeout)
	cfg.LogDir = mustExpand(orDefault(raw.LogDir, defaultLogDir))
	cfg.LogLevel = strings.ToLower(orDefault(raw.LogLevel, defaultLogLevel))
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	return cfg, nil
}

// LogPath returns the client log file inside LogDir.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/" + logFileName)
	}
	return filepath.Join(c.LogDir, logFileName)
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func millisOr(value int, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Millisecond
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

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
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
