package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pipedash/internal/dashboard"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Run one dashboard load cycle and print the result",
		Long: `Fetch the pipeline summary, metrics and predictions from the API and print
the dashboard as it would appear in the browser.

If any request fails the dashboard shows ERROR / Failed to load and the
command exits non-zero. Values written before the failure are kept.`,
		Example: `  # Load from the local server
  pipedash load

  # Load from a remote API as JSON
  pipedash load --api-url http://pipeline.internal:8000 -o json`,
		Args: cobra.NoArgs,
		RunE: runLoad,
	}
}

func runLoad(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)
	out := cmd.OutOrStdout()

	format, err := resolveFormat(cc.Cfg.OutputFormat, out)
	if err != nil {
		return err
	}

	page := dashboard.NewDashboardPage()
	loadErr := dashboard.NewLoader(cc.Client(), page, cc.Logger).Load(cmd.Context())

	if err := dashboard.RenderPage(out, page, format, colorEnabled(out)); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	if loadErr != nil {
		return fmt.Errorf("dashboard load failed: %w", loadErr)
	}
	return nil
}
