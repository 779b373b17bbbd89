package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/grovetools/mviewer/errors"
	"github.com/grovetools/mviewer/pkg/layers"
	"github.com/grovetools/mviewer/pkg/store"
	"github.com/grovetools/mviewer/tui/components/table"
	"github.com/spf13/cobra"
)

// NewLayersCmd creates the `layers` command and its edit subcommands.
func NewLayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "List and edit the overlay layers of the current view",
		Long: `Without a subcommand, lists the overlay layers of the current view.

Edit subcommands load the layer list, make one change and submit the whole
view back to the renderer. Rows are numbered from 1 as listed.

Examples:
  mviewer layers
  mviewer layers toggle 2
  mviewer layers move 3 1
  mviewer layers set 2 sym_type triangle
  mviewer layers color 1 "#00ff00" --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editLayers(cmd, nil)
		},
	}

	cmd.PersistentFlags().Bool("dry-run", false, "Print the edited table without submitting it")
	cmd.PersistentFlags().Duration("timeout", 10*time.Second, "Give up if the renderer cannot be reached in time")

	cmd.AddCommand(
		newLayerEditCmd("toggle <row>", "Toggle a layer's visibility", 1,
			func(t *layers.Table, rows []int, args []string) error {
				return t.ToggleVisible(rows[0])
			}),
		newLayerEditCmd("move <row> <to>", "Move a layer to another position", 2,
			func(t *layers.Table, rows []int, args []string) error {
				return t.Move(rows[0], rows[1])
			}),
		newLayerEditCmd("delete <row>", "Remove a layer", 1,
			func(t *layers.Table, rows []int, args []string) error {
				return t.Delete(rows[0])
			}),
		newLayerEditCmd("color <row> <color>", "Set a layer's color", 1,
			func(t *layers.Table, rows []int, args []string) error {
				return t.SetColor(rows[0], args[1])
			}),
		newLayerEditCmd("set <row> <field> <value>", "Set a layer field such as sym_type or data_col", 1,
			func(t *layers.Table, rows []int, args []string) error {
				field := layers.Field(args[1])
				row, err := t.Row(rows[0])
				if err != nil {
					return err
				}
				for _, f := range row.SelectFields() {
					if f == field {
						return t.Select(rows[0], field, args[2])
					}
				}
				return t.SetText(rows[0], field, args[2])
			}),
	)
	return cmd
}

type layerEdit func(t *layers.Table, rows []int, args []string) error

// newLayerEditCmd builds a subcommand whose first numRows arguments are
// 1-based row numbers.
func newLayerEditCmd(use, short string, numRows int, edit layerEdit) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(countArgs(use)),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([]int, numRows)
			for i := range rows {
				n, err := strconv.Atoi(args[i])
				if err != nil || n < 1 {
					return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("row %q is not a row number", args[i]))
				}
				rows[i] = n - 1
			}
			return editLayers(cmd, func(t *layers.Table) error {
				return edit(t, rows, args)
			})
		},
	}
}

func countArgs(use string) int {
	n := 0
	for _, r := range use {
		if r == '<' {
			n++
		}
	}
	return n
}

// editLayers loads the layer table, applies edit and submits the result.
// A nil edit only lists.
func editLayers(cmd *cobra.Command, edit func(t *layers.Table) error) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.store.RefreshViewState(cmd.Context()); err != nil {
		return err
	}
	control := layers.NewControl(s.store, store.BusyFunc(func(bool) {}), s.layerOptions()...)
	if err := control.Init(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if edit == nil {
		fmt.Fprintln(out, renderLayers(control.Table()))
		return nil
	}
	if err := edit(control.Table()); err != nil {
		return err
	}

	fmt.Fprintln(out, renderLayers(control.Table()))
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		return nil
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	s.connect(cmd.Context())
	if err := control.Apply(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Submitted %d layers\n", control.Table().Len())
	return nil
}

func renderLayers(t *layers.Table) string {
	if t.Len() == 0 {
		return "No layers"
	}
	rows := make([][]string, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		cells, err := t.Cells(i)
		if err != nil {
			continue
		}
		rows = append(rows, append([]string{strconv.Itoa(i + 1)}, cells[:]...))
	}
	return table.SimpleTable([]string{"#", "Vis", "Type", "Source", "Symbol", "Scale", "Color"}, rows)
}
