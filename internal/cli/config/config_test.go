package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-url", "", "")
	flags.String("state", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.StringP("output", "o", "", "")
	flags.Duration("http-timeout", 0, "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.APIURL)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.True(t, cfg.Server.Watch)
	assert.Equal(t, DefaultTitle, cfg.Server.Title)
	assert.True(t, filepath.IsAbs(cfg.StatePath), "state path resolved against the working directory")
	assert.True(t, strings.HasSuffix(cfg.StatePath, filepath.FromSlash(DefaultStateFile)))
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
api_url: http://pipeline.internal:8000/
state_path: data/state.db
output: json
http_timeout: 2s
server:
  port: 9000
  watch: false
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://pipeline.internal:8000", cfg.APIURL, "trailing slash trimmed")
	assert.Equal(t, filepath.Join(dir, "data", "state.db"), cfg.StatePath)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.Server.Watch)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr, "unset keys keep defaults")
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_FindsFileUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "output: markdown\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	chdir(t, nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.OutputFormat)
}

func TestLoadConfig_Precedence(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
output: markdown
http_timeout: 1s
server:
  port: 9000
`)
	t.Setenv("PIPEDASH_OUTPUT", "text")
	t.Setenv("PIPEDASH_HTTP_TIMEOUT", "3s")
	t.Setenv("PIPEDASH_SERVER__PORT", "9100")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--output", "json", "--state", ":memory:"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.OutputFormat, "flag beats env and file")
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout, "env beats file")
	assert.Equal(t, 9100, cfg.Server.Port, "double underscore reaches nested keys")
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestLoadConfig_UnsetFlagsDoNotOverride(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, "output: markdown\n")

	flags := newFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.OutputFormat)
}

func TestLoadConfig_DurationFlag(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--http-timeout", "750ms"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.HTTPTimeout)
}

func TestLoadConfig_ExpandsEnvVars(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Setenv("PIPEDASH_TEST_API_HOST", "api.example.test")
	path := writeConfig(t, dir, "api_url: http://${PIPEDASH_TEST_API_HOST}:8000\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.test:8000", cfg.APIURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"bad output", "output: xml\n", "invalid output format"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad api url", "api_url: localhost:8000\n", "invalid api_url"},
		{"bad duration", "http_timeout: soon\n", "unable to decode config"},
		{"malformed yaml", "output: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Defaults().Validate())
	})

	t.Run("negative timeout", func(t *testing.T) {
		cfg := Defaults()
		cfg.HTTPTimeout = -time.Second
		assert.ErrorContains(t, cfg.Validate(), "http_timeout")
	})

	t.Run("empty state path", func(t *testing.T) {
		cfg := Defaults()
		cfg.StatePath = ""
		assert.ErrorContains(t, cfg.Validate(), "state_path is required")
	})
}

func TestConfig_ResolvedAPIURL(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "http://127.0.0.1:8765", cfg.ResolvedAPIURL())

	cfg.Server.Addr = "0.0.0.0"
	cfg.Server.Port = 9000
	assert.Equal(t, "http://127.0.0.1:9000", cfg.ResolvedAPIURL())

	cfg.Server.Addr = "::1"
	assert.Equal(t, "http://[::1]:9000", cfg.ResolvedAPIURL())

	cfg.Server.Addr = "::"
	assert.Equal(t, "http://[::1]:9000", cfg.ResolvedAPIURL())

	cfg.APIURL = "https://dash.example.test"
	assert.Equal(t, "https://dash.example.test", cfg.ResolvedAPIURL())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "api_url", envKey("PIPEDASH_API_URL"))
	assert.Equal(t, "server.watch", envKey("PIPEDASH_SERVER__WATCH"))
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "falls back to a discard logger")

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.Same(t, logger, ctx.Value(LoggerKey()))
}
