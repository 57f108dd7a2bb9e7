package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pickem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLayering(t *testing.T) {
	path := writeConfig(t, `
base_url: https://file.example/api
timeout: 5s
rate_limit: 4
log_level: warn
`)
	t.Setenv("PICKEM_TIMEOUT", "9s")
	t.Setenv("PICKEM_LOG_LEVEL", "debug")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--log-level", "error"}))

	c, err := Resolve(fs)
	require.NoError(t, err)
	require.Equal(t, "https://file.example/api", c.BaseURL)
	require.Equal(t, 9*time.Second, c.Timeout)
	require.Equal(t, 4.0, c.RateLimit)
	require.Equal(t, "error", c.LogLevel)
	require.Equal(t, Default().PollInterval, c.PollInterval)

	lvl, err := c.Level()
	require.NoError(t, err)
	require.Equal(t, zerolog.ErrorLevel, lvl)
}

func TestUnsetFlagsDoNotOverride(t *testing.T) {
	t.Setenv("PICKEM_BASE_URL", "https://env.example")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(nil))

	c, err := Resolve(fs)
	require.NoError(t, err)
	require.Equal(t, "https://env.example", c.BaseURL)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.LogLevel = "loud"
	require.Error(t, c.Validate())

	c = Default()
	c.BaseURL = " "
	require.Error(t, c.Validate())

	c = Default()
	c.RateLimit = -1
	require.Error(t, c.Validate())
}

func TestMissingFile(t *testing.T) {
	c := Default()
	require.Error(t, LoadFile(&c, filepath.Join(t.TempDir(), "nope.yaml")))
	require.NoError(t, LoadFile(&c, ""))
}
