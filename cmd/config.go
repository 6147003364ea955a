package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/timvw/tmux-runner/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the config file and
TMUX_RUNNER_* environment variables, as YAML. The output is a valid config
file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if flagProgram != "" {
			cfg.Program = flagProgram
		}

		if cfg.ConfigFile != "" {
			fmt.Fprintf(os.Stderr, "config: loaded %s\n", cfg.ConfigFile)
		} else {
			fmt.Fprintln(os.Stderr, "config: no config file found, showing defaults")
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
