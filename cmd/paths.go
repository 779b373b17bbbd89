package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/mviewer/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput lists the directories mviewer reads and writes.
type PathsOutput struct {
	ConfigDir string `json:"config_dir"`
	StateDir  string `json:"state_dir"`
	CacheDir  string `json:"cache_dir"`
	LogDir    string `json:"log_dir"`
}

func NewPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the XDG-compliant paths used by mviewer",
		Long: `Print the XDG-compliant paths used by mviewer as JSON.

- config_dir: global mviewer.yml
- state_dir: runtime state
- cache_dir: regenerable data
- log_dir: daily log files read by 'mviewer logs'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir: paths.ConfigDir(),
				StateDir:  paths.StateDir(),
				CacheDir:  paths.CacheDir(),
				LogDir:    paths.LogDir(),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}
}
