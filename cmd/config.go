package cmd

import (
	"fmt"

	"github.com/grovetools/mviewer/cli"
	"github.com/grovetools/mviewer/config"
	"github.com/grovetools/mviewer/tui/theme"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the `config` command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect mviewer configuration",
		Long: `Configuration is merged from two layers:
1. Global config (~/.config/mviewer/mviewer.yml)
2. Project config (mviewer.yml or mviewer.toml, searched upward from the current directory)
MVIEWER_HOST, MVIEWER_PORT and MVIEWER_WORKSPACE override both.`,
	}

	cmd.AddCommand(newConfigShowCmd(), newConfigSchemaCmd(), newConfigValidateCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			data, err := cfg.Marshal(config.Format(format))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().String("format", string(config.FormatYAML), "Output format: yaml or toml")
	return cmd
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for mviewer.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a configuration file against the schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			switch {
			case len(args) == 1:
				_, err = config.Load(args[0])
			case cli.GetOptions(cmd).ConfigFile != "":
				_, err = cli.LoadConfig(cmd)
			default:
				var path string
				if path, err = config.FindConfigFile("."); err == nil {
					_, err = config.Load(path)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme.RenderStatus("success", "Configuration is valid"))
			return nil
		},
	}
}
