package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/mviewer/cli"
	"github.com/grovetools/mviewer/pkg/panels"
	"github.com/spf13/cobra"
)

// NewViewCmd creates the `view` command.
func NewViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Fetch and print the current view state",
		Long: `Fetches view.json from the renderer and prints the display mode and image
files. With --json the full document is printed as the renderer would
receive it back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.store.RefreshViewState(cmd.Context()); err != nil {
				return err
			}
			view := s.store.View()

			if cli.GetOptions(cmd).JSONOutput {
				data, err := json.MarshalIndent(view, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), panels.RenderInfo(view))
			return nil
		},
	}
	return cmd
}
