package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pipedash/internal/state"
	"github.com/leapstack-labs/pipedash/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr     string
	Port     int
	Watch    bool
	Title    string
	SeedDemo bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the pipeline API and dashboard",
		Long: `Start a web server providing the pipeline JSON API and the live dashboard.

Endpoints:
- /api/health, /api/summary, /api/metrics, /api/predictions
- /                 dashboard page
- /dashboard/load   live update stream
- /dashboard/reload refresh every open dashboard

With --api-url the dashboard loads from that API instead of this server's own.`,
		Example: `  # Serve on the default port
  pipedash serve

  # Serve on all interfaces with sample data
  pipedash serve --addr 0.0.0.0 --port 3000 --seed-demo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Address to listen on (default: 127.0.0.1)")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Refresh dashboards when the state database changes")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Dashboard title")
	cmd.Flags().BoolVar(&opts.SeedDemo, "seed-demo", false, "Record the sample run if the store is empty")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)
	srvCfg := cc.Cfg.Server

	// CLI flags override config file
	if opts.Addr != "" {
		srvCfg.Addr = opts.Addr
	}
	if opts.Port != 0 {
		srvCfg.Port = opts.Port
	}
	if cmd.Flags().Changed("watch") {
		srvCfg.Watch = opts.Watch
	}
	if opts.Title != "" {
		srvCfg.Title = opts.Title
	}

	store, err := cc.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if opts.SeedDemo {
		if err := seedDemo(cmd.Context(), store); err != nil {
			return err
		}
	}

	server := ui.NewServer(ui.Config{
		Store:       store,
		Host:        srvCfg.Addr,
		Port:        srvCfg.Port,
		Watch:       srvCfg.Watch,
		StatePath:   store.Path(),
		APIURL:      cc.Cfg.APIURL,
		HTTPTimeout: cc.Cfg.HTTPTimeout,
		Title:       srvCfg.Title,
		Logger:      cc.Logger,
	})

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving dashboard on http://%s\n", server.Addr())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// seedDemo records the sample run unless a run already exists.
func seedDemo(ctx context.Context, store state.Store) error {
	_, err := store.LatestRun(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, state.ErrNoRun) {
		return fmt.Errorf("failed to check state store: %w", err)
	}
	if err := store.RecordRun(ctx, state.DemoRun(nowUTC(), demoPredictions)); err != nil {
		return fmt.Errorf("failed to record demo run: %w", err)
	}
	return nil
}
