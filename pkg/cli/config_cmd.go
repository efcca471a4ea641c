package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/canonrest/pkg/cli/internal/output"
	"github.com/getmockd/canonrest/pkg/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var (
		configFile string
		showEnv    bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective server configuration",
		Long: `Show the configuration serve would start with: defaults, then the
--config file, then CANONREST_* environment variables.

Examples:
  canonrest config
  canonrest config --config canonrest.yaml --json
  canonrest config --env
  canonrest config init canonrest.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showEnv {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), config.EnvUsage())
				return nil
			}

			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), cfg)
			}
			data, err := config.ToYAML(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().BoolVar(&showEnv, "env", false, "List the supported environment variables")

	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "canonrest.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			if err := config.SaveToFile(path, config.Default()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
