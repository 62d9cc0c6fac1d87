package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/taskledger/taskledger/internal/config"
	"github.com/taskledger/taskledger/internal/tui"
)

// newConfigCmd creates the config command and its subcommands.
func newConfigCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(newConfigShowCmd(flags))
	return cmd
}

// newConfigShowCmd creates the config show command.
func newConfigShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration after all layers are merged",
		Long: `Show the configuration the CLI actually runs with, after merging
defaults, the global config, the project config, TASKLEDGER_* environment
variables, and flags (highest precedence last).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectRoot, err := resolveProjectRoot(flags)
			if err != nil {
				return err
			}
			cfg, err := config.LoadWithOverrides(projectRoot, config.Overrides{Actor: flags.Actor})
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return tui.NewOutput(cmd.OutOrStdout(), flags.Output).JSON(cfg)
			}

			rendered, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# effective configuration for %s\n%s", projectRoot, rendered)
			return nil
		},
	}
}
