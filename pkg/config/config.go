// Package config resolves client settings from a YAML file, then PICKEM_*
// environment variables, then command-line flags; each layer overrides the
// previous one only for the values it sets.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL         string        `yaml:"base_url" env:"PICKEM_BASE_URL"`
	Timeout         time.Duration `yaml:"timeout" env:"PICKEM_TIMEOUT"`
	RateLimit       float64       `yaml:"rate_limit" env:"PICKEM_RATE_LIMIT"`
	RateBurst       int           `yaml:"rate_burst" env:"PICKEM_RATE_BURST"`
	LogLevel        string        `yaml:"log_level" env:"PICKEM_LOG_LEVEL"`
	SessionDir      string        `yaml:"session_dir" env:"PICKEM_SESSION_DIR"`
	PollInterval    time.Duration `yaml:"poll_interval" env:"PICKEM_POLL_INTERVAL"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PICKEM_SHUTDOWN_TIMEOUT"`
}

func Default() Config {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return Config{
		BaseURL:         "http://localhost:8080/api",
		Timeout:         15 * time.Second,
		RateBurst:       1,
		LogLevel:        "info",
		SessionDir:      dir,
		PollInterval:    250 * time.Millisecond,
		ShutdownTimeout: 3 * time.Second,
	}
}

// LoadFile overlays the YAML file at path onto c. An empty path is a no-op.
func LoadFile(c *Config, path string) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return errors.Wrapf(err, "parse config %s", filepath.Base(path))
	}
	return nil
}

func ApplyEnv(c *Config) error {
	if err := env.Parse(c); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}

const (
	FlagConfig       = "config"
	FlagBaseURL      = "base-url"
	FlagLogLevel     = "log-level"
	FlagTimeout      = "timeout"
	FlagSessionDir   = "session-dir"
	FlagRateLimit    = "rate-limit"
	FlagPollInterval = "poll-interval"
)

// AddFlags registers the global flags. Defaults shown in help come from Default.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagConfig, "", "path to a YAML config file")
	fs.String(FlagBaseURL, d.BaseURL, "backend API base URL")
	fs.String(FlagLogLevel, d.LogLevel, "log level (trace, debug, info, warn, error)")
	fs.Duration(FlagTimeout, d.Timeout, "HTTP timeout per request")
	fs.String(FlagSessionDir, d.SessionDir, "directory holding .pickem/session.json")
	fs.Float64(FlagRateLimit, d.RateLimit, "max requests per second (0 = unlimited)")
	fs.Duration(FlagPollInterval, d.PollInterval, "state watcher poll interval")
}

// ApplyFlags copies every flag the user set explicitly onto c.
func ApplyFlags(c *Config, fs *pflag.FlagSet) error {
	var err error
	set := func(name string, fn func() error) {
		if err != nil || fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		err = errors.Wrapf(fn(), "flag --%s", name)
	}
	set(FlagBaseURL, func() (e error) { c.BaseURL, e = fs.GetString(FlagBaseURL); return })
	set(FlagLogLevel, func() (e error) { c.LogLevel, e = fs.GetString(FlagLogLevel); return })
	set(FlagTimeout, func() (e error) { c.Timeout, e = fs.GetDuration(FlagTimeout); return })
	set(FlagSessionDir, func() (e error) { c.SessionDir, e = fs.GetString(FlagSessionDir); return })
	set(FlagRateLimit, func() (e error) { c.RateLimit, e = fs.GetFloat64(FlagRateLimit); return })
	set(FlagPollInterval, func() (e error) { c.PollInterval, e = fs.GetDuration(FlagPollInterval); return })
	return err
}

// Resolve builds the effective configuration for a command invocation.
func Resolve(fs *pflag.FlagSet) (Config, error) {
	c := Default()
	path := ""
	if fs != nil && fs.Lookup(FlagConfig) != nil {
		path, _ = fs.GetString(FlagConfig)
	}
	if path == "" {
		path = os.Getenv("PICKEM_CONFIG")
	}
	if err := LoadFile(&c, path); err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&c); err != nil {
		return Config{}, err
	}
	if fs != nil {
		if err := ApplyFlags(&c, fs); err != nil {
			return Config{}, err
		}
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base URL is required")
	}
	if c.Timeout < 0 || c.PollInterval < 0 || c.ShutdownTimeout < 0 {
		return errors.New("durations must not be negative")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "log level %q", c.LogLevel)
	}
	return l, nil
}
