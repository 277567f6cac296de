package commands

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/pipedash/internal/cli/config"
	"github.com/leapstack-labs/pipedash/internal/dashboard"
	"github.com/leapstack-labs/pipedash/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext collects the loaded config and the context logger.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// Client returns an API client for the configured api_url.
func (c *CommandContext) Client() *dashboard.Client {
	return dashboard.NewClient(c.Cfg.ResolvedAPIURL(), &http.Client{Timeout: c.Cfg.HTTPTimeout})
}

// OpenStore opens and migrates the state database. The caller closes it.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, error) {
	path := c.Cfg.StatePath
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(path); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	if version, err := store.GetMigrationVersion(); err == nil {
		c.Logger.Debug("state store ready", slog.String("path", store.Path()), slog.Int64("schema_version", version))
	}
	return store, nil
}

// getConfig returns the current configuration, or defaults when the root
// command did not load one (as in tests that run a subcommand directly).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Defaults()
}

// isTTY reports whether w is an interactive terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// resolveFormat turns the configured output mode into a concrete format.
// Auto picks text for terminals and markdown otherwise.
func resolveFormat(mode string, w io.Writer) (dashboard.Format, error) {
	if mode == "" || mode == "auto" {
		if isTTY(w) {
			return dashboard.FormatText, nil
		}
		return dashboard.FormatMarkdown, nil
	}
	return dashboard.ParseFormat(mode)
}

// colorEnabled reports whether styled output should be written to w.
func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok || !isTTY(w) {
		return false
	}
	return termenv.NewOutput(f).Profile != termenv.Ascii
}
