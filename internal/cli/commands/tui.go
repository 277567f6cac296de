package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pipedash/internal/tui"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal dashboard",
		Long: `Show the dashboard in the terminal. Press r to run a new load cycle and q to quit.

Logs are written to stderr; redirect them when running interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			out := cmd.OutOrStdout()
			return tui.Run(cmd.Context(), cc.Client(), cc.Logger, cmd.InOrStdin(), out, colorEnabled(out))
		},
	}
}
