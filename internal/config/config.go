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

// Config holds everything prefsync reads from config.toml and the environment.
type Config struct {
	APIURL         string
	OrdersURL      string
	PollInterval   time.Duration
	ErrorTime      time.Duration
	SuccessTime    time.Duration
	LogLevel       string
	LogDir         string
	Origin         string
	EmbedderOrigin string
	RateLimit      float64
	RateBurst      int
	MetricsAddr    string
	Verifier       string
	VerifierID     string

	// AuthToken only comes from the environment.
	AuthToken string
}

const (
	defaultConfigPath   = "~/.config/prefsync/config.toml"
	defaultLogDir       = "~/.local/share/prefsync"
	defaultAPIURL       = "https://api.tor.us"
	defaultPollInterval = 3 * time.Minute
	defaultErrorTime    = 7 * time.Second
	defaultSuccessTime  = 5 * time.Second
	defaultLogLevel     = "info"

	// EnvAuthToken supplies the bearer token.
	EnvAuthToken = "PREFSYNC_AUTH_TOKEN"
	// EnvAPIURL overrides api_url.
	EnvAPIURL = "PREFSYNC_API_URL"
)

type rawConfig struct {
	APIURL         string  `toml:"api_url"`
	OrdersURL      string  `toml:"orders_url"`
	PollInterval   string  `toml:"poll_interval"`
	ErrorTime      string  `toml:"error_time"`
	SuccessTime    string  `toml:"success_time"`
	LogLevel       string  `toml:"log_level"`
	LogDir         string  `toml:"log_dir"`
	Origin         string  `toml:"origin"`
	EmbedderOrigin string  `toml:"embedder_origin"`
	RateLimit      float64 `toml:"rate_limit"`
	RateBurst      int     `toml:"rate_burst"`
	MetricsAddr    string  `toml:"metrics_addr"`
	Verifier       string  `toml:"verifier"`
	VerifierID     string  `toml:"verifier_id"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:       defaultAPIURL,
		PollInterval: defaultPollInterval,
		ErrorTime:    defaultErrorTime,
		SuccessTime:  defaultSuccessTime,
		LogLevel:     defaultLogLevel,
		LogDir:       mustExpand(defaultLogDir),
	}
}

// Load locates and parses config.toml, falling back to defaults when missing,
// then applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.merge(raw); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) merge(raw rawConfig) error {
	setString(&c.APIURL, raw.APIURL)
	setString(&c.OrdersURL, raw.OrdersURL)
	setString(&c.LogLevel, raw.LogLevel)
	setString(&c.Origin, raw.Origin)
	setString(&c.EmbedderOrigin, raw.EmbedderOrigin)
	setString(&c.MetricsAddr, raw.MetricsAddr)
	setString(&c.Verifier, raw.Verifier)
	setString(&c.VerifierID, raw.VerifierID)

	if dir := strings.TrimSpace(raw.LogDir); dir != "" {
		c.LogDir = mustExpand(dir)
	}

	var err error
	switch strings.TrimSpace(raw.PollInterval) {
	case "0", "off":
		c.PollInterval = -1
	default:
		if c.PollInterval, err = parseDuration("poll_interval", raw.PollInterval, c.PollInterval); err != nil {
			return err
		}
	}
	if c.ErrorTime, err = parseDuration("error_time", raw.ErrorTime, c.ErrorTime); err != nil {
		return err
	}
	if c.SuccessTime, err = parseDuration("success_time", raw.SuccessTime, c.SuccessTime); err != nil {
		return err
	}

	c.RateLimit = raw.RateLimit
	if raw.RateBurst < 0 {
		return fmt.Errorf("parse config: rate_burst must not be negative")
	}
	c.RateBurst = raw.RateBurst
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	c.AuthToken = strings.TrimSpace(os.Getenv(EnvAuthToken))
}

// LogPath returns the path of the application log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return filepath.Join(mustExpand(defaultLogDir), "prefsync.log")
	}
	return filepath.Join(c.LogDir, "prefsync.log")
}

func setString(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive", key)
	}
	return d, nil
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
