package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/mviewer/config"
	"github.com/grovetools/mviewer/errors"
	"github.com/grovetools/mviewer/pkg/models"
	"github.com/grovetools/mviewer/pkg/store"
	"github.com/grovetools/mviewer/tui/console"
	"github.com/grovetools/mviewer/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

const grayView = `{
  "display_mode": "grayscale",
  "gray_file": {"fits_file": "m51.fits"},
  "xmin": 100, "ymin": 40, "factor": 2,
  "overlay": [
    {"type": "grid", "coord_sys": "gal", "color": "#ff0000", "visible": 1},
    {"type": "label", "coord_sys": "eqj2000", "lat": 47.2, "lon": 202.47, "text": "M51", "color": "#ffffff", "visible": 1}
  ]
}`

const pickDoc = `[
  {"xref": 5, "yref": 10, "raref": 202.47, "decref": 47.2, "npixel": 1500},
  {}, {}
]`

// setup isolates mviewer's directories and writes a config pointing at r.
func setup(t *testing.T, r *testutil.Renderer) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MVIEWER_HOME", filepath.Join(dir, "home"))
	t.Setenv("MVIEWER_HOST", "")
	t.Setenv("MVIEWER_PORT", "")

	host, port := "localhost", 1
	if r != nil {
		host, port = r.HostPort(t)
	}
	path := filepath.Join(dir, "mviewer.yml")
	data := fmt.Sprintf(`server:
  host: %s
  port: %d
  connect_retry: 10ms
logging:
  file:
    path: %s
`, host, port, filepath.Join(dir, "mviewer.log"))
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func run(args ...string) (string, error) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSendCommand(t *testing.T) {
	r := testutil.NewRenderer(t)
	cfg := setup(t, r)

	_, err := run("send", "zoom", "10", "210", "100", "300", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "zoom 10 210 100 300", r.WaitForCommand(t, waitTimeout))
}

func TestSendRejectsBadCommand(t *testing.T) {
	cfg := setup(t, nil)

	_, err := run("send", "zoom", "1", "--config", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidCommand))

	_, err = run("send", "explode", "--config", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidCommand))
}

func TestSendListensForDirectives(t *testing.T) {
	r := testutil.NewRenderer(t)
	r.OnCommand(func(command string) []string {
		if command == "zoomIn" {
			return []string{"image http://render.local/viewer.png"}
		}
		return nil
	})
	cfg := setup(t, r)

	out, err := run("send", "zoomIn", "--listen", "300ms", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "image http://render.local/viewer.png")
}

func TestViewCommand(t *testing.T) {
	r := testutil.NewRenderer(t)
	r.SetDocument(store.ViewDocument, grayView)
	cfg := setup(t, r)

	out, err := run("view", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "m51.fits")

	out, err = run("view", "--json", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"display_mode": "grayscale"`)
}

func TestViewFetchFailure(t *testing.T) {
	r := testutil.NewRenderer(t)
	cfg := setup(t, r)

	_, err := run("view", "--config", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFetchFailed))
}

func TestLayersList(t *testing.T) {
	r := testutil.NewRenderer(t)
	r.SetDocument(store.ViewDocument, grayView)
	cfg := setup(t, r)

	out, err := run("layers", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "GRID")
	assert.Contains(t, out, "LABEL")
	assert.Contains(t, out, "M51")
	r.ExpectNoCommand(t, 50*time.Millisecond)
}

func TestLayersToggleSubmits(t *testing.T) {
	r := testutil.NewRenderer(t)
	r.SetDocument(store.ViewDocument, grayView)
	cfg := setup(t, r)

	out, err := run("layers", "toggle", "1", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted 2 layers")

	submitted := r.WaitForCommand(t, waitTimeout)
	assert.True(t, strings.HasPrefix(submitted, "submitUpdateRequest '"), submitted)
	assert.Contains(t, submitted, `"visible":0`)
	assert.Contains(t, submitted, `"text":"M51"`)
}

func TestLayersMoveDryRun(t *testing.T) {
	r := testutil.NewRenderer(t)
	r.SetDocument(store.ViewDocument, grayView)
	cfg := setup(t, r)

	out, err := run("layers", "move", "2", "1", "--dry-run", "--config", cfg)
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "LABEL"), strings.Index(out, "GRID"))
	r.ExpectNoCommand(t, 100*time.Millisecond)
}

func TestLayersRejectsBadEdits(t *testing.T) {
	r := testutil.NewRenderer(t)
	r.SetDocument(store.ViewDocument, grayView)
	cfg := setup(t, r)

	_, err := run("layers", "toggle", "9", "--config", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRow))

	_, err = run("layers", "toggle", "zero", "--config", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = run("layers", "set", "1", "coord_sys", "martian", "--config", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRow))
}

func TestStatsCommand(t *testing.T) {
	r := testutil.NewRenderer(t)
	r.SetDocument(store.ViewDocument, grayView)
	r.SetDocument(store.PickDocument, pickDoc)
	cfg := setup(t, r)

	out, err := run("stats", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Center")
	assert.Contains(t, out, "110")
	assert.Contains(t, out, "1,500 pixels")

	_, err = run("stats", "--plane", "ultraviolet", "--config", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestConfigCommands(t *testing.T) {
	cfg := setup(t, nil)

	out, err := run("config", "show", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "connect_retry: 10ms")

	out, err = run("config", "show", "--format", "toml", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "[server]")

	_, err = run("config", "validate", cfg)
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "mviewer.yml")
	require.NoError(t, os.WriteFile(bad, []byte("server:\n  port: 99999\n"), 0644))
	_, err = run("config", "validate", bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation))
	assert.Contains(t, err.Error(), "server.port")

	out, err = run("config", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"resize_debounce"`)
}

func TestLogsTail(t *testing.T) {
	cfg := setup(t, nil)
	logFile := filepath.Join(filepath.Dir(cfg), "mviewer.log")
	lines := []string{
		`{"level":"info","msg":"first","component":"viewer","time":"2026-10-15T10:00:00Z"}`,
		`{"level":"warning","msg":"second","component":"transport","time":"2026-10-15T10:00:01Z"}`,
		`{"level":"info","msg":"third","component":"viewer","time":"2026-10-15T10:00:02Z"}`,
	}
	require.NoError(t, os.WriteFile(logFile, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	out, err := run("logs", "--tail", "2", "--config", cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "third")

	out, err = run("logs", "--component", "viewer", "--json", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, lines[0]+"\n"+lines[2]+"\n", out)
}

func TestTailOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")
	require.NoError(t, os.WriteFile(path, []byte("ab\ncd\nef\n"), 0644))

	tests := []struct {
		n    int
		want int64
	}{
		{0, 0},
		{1, 6},
		{2, 3},
		{10, 0},
	}
	for _, tt := range tests {
		got, err := tailOffset(path, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestConsoleReferenceFollowsSelectedPlane(t *testing.T) {
	r := testutil.NewRenderer(t)
	r.SetDocument(store.ViewDocument, strings.Replace(grayView, `"grayscale"`, `"color"`, 1))
	r.SetDocument(store.PickDocument, `[
  {"xref": 5, "yref": 10, "raref": 202.47, "decref": 47.2},
  {"xref": 6, "yref": 11},
  {"xref": 7, "yref": 12, "raref": 202.5, "decref": 47.3}
]`)

	cfg := config.Default()
	cfg.Server.Host, cfg.Server.Port = r.HostPort(t)
	cfg.HTTP.BaseURL = r.BaseURL()
	cfg.Viewer.CanvasWidth, cfg.Viewer.CanvasHeight = 800, 600

	logger := logrus.NewEntry(logrus.New())
	fetcher, err := newFetcher(cfg)
	require.NoError(t, err)
	client := newTransport(cfg, logger)
	s := &session{cfg: cfg, logger: logger, client: client, store: store.New(fetcher, client)}
	defer s.close()

	sess := s.consoleSession(&console.Alerts{})
	sess.Stats.Init()
	defer sess.Stats.Close()
	sess.Stats.SelectPlane(models.PlaneRed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.store.RefreshViewState(ctx))
	s.connect(ctx)
	go func() { _ = sess.Viewer.Run(ctx) }()

	select {
	case <-r.Connected():
	case <-time.After(waitTimeout):
		t.Fatal("viewer never connected")
	}
	r.Push(t, "pick")

	require.Eventually(t, func() bool {
		return sess.Viewer.Reference().X == 114
	}, waitTimeout, 10*time.Millisecond)
	ref := sess.Viewer.Reference()
	assert.Equal(t, 64, ref.Y)
	assert.Equal(t, 202.5, ref.RA)
	assert.Equal(t, 47.3, ref.Dec)
}
