package cmd

import (
	"fmt"

	"github.com/grovetools/mviewer/errors"
	"github.com/grovetools/mviewer/pkg/models"
	"github.com/grovetools/mviewer/pkg/panels"
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the `stats` command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the statistics of the last picked region",
		Long: `Fetches view.json and pick.json and prints the region statistics for one
plane. Grayscale views always use the gray plane.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			planeName, _ := cmd.Flags().GetString("plane")
			plane := models.Plane(planeName)
			switch plane {
			case models.PlaneBlue, models.PlaneGreen, models.PlaneRed, models.PlaneGray:
			default:
				return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown plane %q", planeName))
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.store.RefreshViewState(cmd.Context()); err != nil {
				return err
			}
			if err := s.store.RefreshPickResult(cmd.Context()); err != nil {
				return err
			}

			view := s.store.View()
			if view.DisplayMode == models.DisplayGrayscale {
				plane = models.PlaneGray
			}
			region := panels.ComputeRegion(view, s.store.Pick().ForPlane(plane))
			fmt.Fprintln(cmd.OutOrStdout(), panels.RenderRegion(region))
			return nil
		},
	}
	cmd.Flags().String("plane", string(models.PlaneBlue), "Plane to report: blue, green, red or gray")
	return cmd
}
