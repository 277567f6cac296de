package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/pipedash/internal/cli/config"
)

const configHeader = `# pipedash configuration
# Every key can also be set with PIPEDASH_<KEY> (nested keys: PIPEDASH_SERVER__PORT)
# or the matching command-line flag.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default pipedash.yaml",
		Example: `  # Initialize in current directory
  pipedash init

  # Force overwrite existing config
  pipedash init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.DefaultConfigFile)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.DefaultConfigFile)
	}

	content, err := defaultConfigYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Created %s\n\n", configPath)
	_, _ = fmt.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintln(out, "  1. Run 'pipedash record --demo' to store a sample run")
	_, _ = fmt.Fprintln(out, "  2. Run 'pipedash serve' and open the dashboard")
	return nil
}

// initConfig mirrors config.Config with the duration as text, which is how
// it is written by hand.
type initConfig struct {
	APIURL      string              `yaml:"api_url"`
	StatePath   string              `yaml:"state_path"`
	Verbose     bool                `yaml:"verbose"`
	Output      string              `yaml:"output"`
	HTTPTimeout string              `yaml:"http_timeout"`
	Server      config.ServerConfig `yaml:"server"`
}

func defaultConfigYAML() ([]byte, error) {
	def := config.Defaults()
	doc := initConfig{
		APIURL:      def.APIURL,
		StatePath:   def.StatePath,
		Verbose:     def.Verbose,
		Output:      def.OutputFormat,
		HTTPTimeout: def.HTTPTimeout.String(),
		Server:      def.Server,
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
