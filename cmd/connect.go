package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/mviewer/logging"
	"github.com/grovetools/mviewer/pkg/layers"
	"github.com/grovetools/mviewer/pkg/panels"
	"github.com/grovetools/mviewer/pkg/store"
	"github.com/grovetools/mviewer/pkg/viewer"
	"github.com/grovetools/mviewer/pkg/workspace"
	"github.com/grovetools/mviewer/tui"
	"github.com/grovetools/mviewer/tui/console"
	"github.com/spf13/cobra"
)

// NewConnectCmd creates the `connect` command.
func NewConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Open an interactive session with the renderer",
		Long: `Connects to the renderer's WebSocket, requests an image sized to the canvas
and opens the console. The console shows the image metadata, the overlay
layers, region statistics and FITS headers, and sends zoom and pan commands.
The terminal stands for the image canvas: click to pick a point, drag to
zoom into a box.

When workspace.watch is set, changes to view.json and pick.json in
workspace.dir are picked up without waiting for a directive.`,
		Args: cobra.NoArgs,
		RunE: runConnectE,
	}
	return cmd
}

func runConnectE(cmd *cobra.Command, args []string) error {
	alerts := &console.Alerts{}
	s, err := openSession(cmd, store.WithAlerter(alerts))
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess := s.consoleSession(alerts)
	v, info, stats, header := sess.Viewer, sess.Info, sess.Stats, sess.Header

	// log lines would tear the alternate screen; show them once it closes
	tui.InitializeTUI()
	release := logging.HoldGlobalOutput()
	defer release()

	model := console.New(ctx, sess)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	model.Attach(program.Send)

	info.Init()
	stats.Init()
	defer info.Close()
	defer stats.Close()
	defer header.Close()

	if s.cfg.Workspace.Watch {
		w, err := workspace.NewWatcher(s.cfg.Workspace.Dir, s.store,
			workspace.WithPatterns(s.cfg.Workspace.Patterns...),
			workspace.WithDebounce(s.cfg.WatchDebounceInterval()),
			workspace.WithLogger(s.logger),
		)
		if err != nil {
			return err
		}
		go w.Start(ctx)
	}

	s.connect(ctx)
	go func() {
		program.Send(console.SessionEnded(v.Run(ctx)))
	}()
	go func() {
		if err := header.Init(ctx); err != nil {
			s.logger.WithError(err).Debug("Header request failed")
		}
	}()
	width, height := v.Canvas()
	v.Resize(width, height)

	if _, err := program.Run(); err != nil {
		return err
	}
	if err := model.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// consoleSession builds the viewer and panels of an interactive session.
// The viewer takes its reference point from the stats panel, so the labels
// follow the selected plane.
func (s *session) consoleSession(alerts *console.Alerts) console.Session {
	stats := panels.NewRegionStats(s.store)
	v := viewer.New(s.client, s.store, append(s.viewerOptions(), viewer.WithRegionStats(stats))...)
	return console.Session{
		Viewer: v,
		Store:  s.store,
		Layers: layers.NewControl(s.store, v, s.layerOptions()...),
		Info:   panels.NewInfoDisplay(s.store),
		Stats:  stats,
		Header: panels.NewFITSHeaderViewer(s.store, s.store, v.Headers()),
		Zoom:   panels.NewZoomControl(s.store, v),
		Alerts: alerts,
	}
}
