package cmd

import (
	"github.com/grovetools/mviewer/cli"
	"github.com/grovetools/mviewer/version"
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the mviewer command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"mviewer",
		"Terminal client for the mViewer image renderer",
	)
	cli.SetVersionTemplate(rootCmd, version.GetInfo())

	rootCmd.AddCommand(
		NewConnectCmd(),
		NewSendCmd(),
		NewViewCmd(),
		NewLayersCmd(),
		NewStatsCmd(),
		NewLogsCmd(),
		NewConfigCmd(),
		NewPathsCmd(),
		cli.NewVersionCommand(),
	)
	cli.ApplyStyledHelpRecursive(rootCmd)
	return rootCmd
}
