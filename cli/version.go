package cli

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/mviewer/version"
	"github.com/spf13/cobra"
)

// SetVersionTemplate sets the --version output for a root command.
func SetVersionTemplate(cmd *cobra.Command, info version.Info) {
	cmd.Version = info.Version
	cmd.SetVersionTemplate(fmt.Sprintf(`{{.Name}} {{.Version}}
  Commit:    %s
  Built:     %s
  Platform:  %s
`, info.Commit, info.BuildDate, info.Platform))
}

// NewVersionCommand creates the version subcommand.
func NewVersionCommand() *cobra.Command {
	cmd := NewStandardCommand("version", "Print the version of mviewer")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		info := version.GetInfo()
		if GetOptions(cmd).JSONOutput {
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return nil
	}
	return cmd
}
