package cmd

import (
	"context"
	"os"

	"github.com/grovetools/mviewer/cli"
	"github.com/grovetools/mviewer/config"
	"github.com/grovetools/mviewer/pkg/layers"
	"github.com/grovetools/mviewer/pkg/store"
	"github.com/grovetools/mviewer/pkg/transport"
	"github.com/grovetools/mviewer/pkg/viewer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Approximate pixel size of a terminal cell, used when the canvas size is
// left to the terminal.
const (
	cellWidth  = 8
	cellHeight = 16
)

// session bundles the objects every renderer-facing command needs.
type session struct {
	cfg    *config.Config
	logger *logrus.Entry
	client *transport.Client
	store  *store.Store
}

// newFetcher reads documents from the workspace directory when one is
// configured without an explicit base URL, and over HTTP otherwise.
func newFetcher(cfg *config.Config) (store.Fetcher, error) {
	if cfg.Workspace.Dir != "" && cfg.HTTP.BaseURL == "" {
		return store.DirFetcher{Dir: cfg.Workspace.Dir}, nil
	}
	return store.NewHTTPFetcher(cfg.BaseURL(), cfg.HTTPTimeout())
}

func newTransport(cfg *config.Config, logger *logrus.Entry) *transport.Client {
	return transport.New(cfg.Server.Host, cfg.Server.Port,
		transport.WithPath(cfg.Server.Path),
		transport.WithRetryInterval(cfg.ConnectRetryInterval()),
		transport.WithLogger(logger),
	)
}

// openSession loads configuration and wires the store to a (not yet
// connected) transport.
func openSession(cmd *cobra.Command, storeOpts ...store.Option) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := cli.GetLogger(cmd)

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	client := newTransport(cfg, logger)
	opts := append([]store.Option{store.WithLogger(logger)}, storeOpts...)

	return &session{
		cfg:    cfg,
		logger: logger,
		client: client,
		store:  store.New(fetcher, client, opts...),
	}, nil
}

// loadConfig is cli.LoadConfig, except that a missing file means defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cli.GetOptions(cmd).ConfigFile != "" {
		return cli.LoadConfig(cmd)
	}
	return config.LoadDefault()
}

// connect dials the renderer in the background. Sends block until it is up.
func (s *session) connect(ctx context.Context) {
	s.logger.WithField("url", s.client.URL()).Debug("Connecting to renderer")
	s.client.Connect(ctx)
}

func (s *session) close() {
	_ = s.client.Close()
}

func (s *session) layerOptions() []layers.Option {
	var opts []layers.Option
	if s.cfg.Layers.PreserveUnknown {
		opts = append(opts, layers.WithPreserveUnknown())
	}
	return append(opts, layers.WithLogger(s.logger))
}

func (s *session) viewerOptions() []viewer.Option {
	width, height := s.cfg.Viewer.CanvasWidth, s.cfg.Viewer.CanvasHeight
	if width == 0 || height == 0 {
		width, height = terminalCanvas()
	}
	return []viewer.Option{
		viewer.WithCanvas(width, height),
		viewer.WithResizeDebounce(s.cfg.ResizeDebounceInterval()),
		viewer.WithPickThreshold(float64(s.cfg.Viewer.PickThreshold)),
		viewer.WithLogger(s.logger),
	}
}

// terminalCanvas sizes the canvas from the terminal, falling back to the
// default square.
func terminalCanvas() (int, int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return config.DefaultCanvasSize, config.DefaultCanvasSize
	}
	return cols * cellWidth, rows * cellHeight
}
