package console

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/mviewer/pkg/layers"
	"github.com/grovetools/mviewer/pkg/panels"
	"github.com/grovetools/mviewer/pkg/store"
	"github.com/grovetools/mviewer/pkg/transport"
	"github.com/grovetools/mviewer/pkg/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const view = `{
  "display_mode": "grayscale",
  "gray_file": {"fits_file": "m51.fits"},
  "xmin": 0, "ymin": 0, "factor": 1,
  "overlay": [
    {"type": "grid", "coord_sys": "eqj2000", "color": "#ff0000", "visible": 1},
    {"type": "catalog", "data_file": "2mass.tbl", "data_col": "j_m", "color": "#00ff00", "visible": 0}
  ]
}`

type fakeTransport struct {
	mu   sync.Mutex
	sent []string
	done chan struct{}
}

func (f *fakeTransport) OnMessage(transport.Handler) func() { return func() {} }
func (f *fakeTransport) Done() <-chan struct{}              { return f.done }
func (f *fakeTransport) Err() error                         { return nil }

func (f *fakeTransport) Send(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeTransport) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newModel(t *testing.T) (*Model, *store.Store, *fakeTransport) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.ViewDocument), []byte(view), 0644))

	ft := &fakeTransport{done: make(chan struct{})}
	alerts := &Alerts{}
	s := store.New(store.DirFetcher{Dir: dir}, ft, store.WithAlerter(alerts))
	v := viewer.New(ft, s)

	m := New(context.Background(), Session{
		Viewer: v,
		Store:  s,
		Layers: layers.NewControl(s, v),
		Info:   panels.NewInfoDisplay(s),
		Stats:  panels.NewRegionStats(s),
		Header: panels.NewFITSHeaderViewer(s, s, v.Headers()),
		Zoom:   panels.NewZoomControl(s, v),
		Alerts: alerts,
	})
	m.Init()
	return m, s, ft
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLayersLoadOnViewChange(t *testing.T) {
	m, s, _ := newModel(t)
	assert.Equal(t, 0, m.session.Layers.Table().Len())

	require.NoError(t, s.RefreshViewState(context.Background()))
	m.Update(viewChangedMsg{})
	assert.Equal(t, 2, m.session.Layers.Table().Len())

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabLayers, m.tab)
	out := m.View()
	assert.Contains(t, out, "GRID")
	assert.Contains(t, out, "SOURCE TABLE")
}

func TestLayerEditAndApply(t *testing.T) {
	m, s, ft := newModel(t)
	require.NoError(t, s.RefreshViewState(context.Background()))
	m.Update(viewChangedMsg{})
	m.tab = tabLayers

	m.Update(runes("j"))
	assert.Equal(t, 1, m.cursor)
	m.Update(runes("v"))
	assert.True(t, m.dirty)
	assert.Contains(t, m.View(), "modified")

	// a refresh must not discard unapplied edits
	m.Update(viewChangedMsg{})
	row, err := m.session.Layers.Table().Row(1)
	require.NoError(t, err)
	assert.True(t, row.Visible)

	_, cmd := m.Update(runes("a"))
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.False(t, m.dirty)

	sent := ft.Sent()
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0], "submitUpdateRequest '"), sent[0])
	assert.Contains(t, sent[0], `"data_file":"2mass.tbl"`)
	assert.True(t, m.session.Viewer.Busy())
}

func TestApplySubmitsLayersAsCommitted(t *testing.T) {
	m, s, ft := newModel(t)
	require.NoError(t, s.RefreshViewState(context.Background()))
	m.Update(viewChangedMsg{})
	m.tab = tabLayers

	m.Update(runes("v"))
	_, cmd := m.Update(runes("a"))
	require.NotNil(t, cmd)
	assert.False(t, m.dirty)
	assert.False(t, s.View().Overlay[0].Styling().Visible, "the store is updated before the submit is sent")

	// keep editing while the submit is in flight
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	for i := 0; i < 50; i++ {
		m.Update(runes("J"))
		m.Update(runes("K"))
		m.Update(runes("v"))
	}
	m.Update(<-done)
	assert.True(t, m.dirty)

	sent := ft.Sent()
	require.Len(t, sent, 1)
	payload := strings.TrimSuffix(strings.TrimPrefix(sent[0], "submitUpdateRequest '"), "'")
	var submitted struct {
		Overlay []map[string]interface{} `json:"overlay"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &submitted))
	require.Len(t, submitted.Overlay, 2)
	assert.Equal(t, "grid", submitted.Overlay[0]["type"])
	assert.Equal(t, float64(0), submitted.Overlay[0]["visible"])
	assert.Equal(t, "catalog", submitted.Overlay[1]["type"])
}

func TestApplyWithoutViewAlerts(t *testing.T) {
	m, _, ft := newModel(t)
	m.tab = tabLayers

	_, cmd := m.Update(runes("a"))
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.alert)
	assert.Empty(t, ft.Sent())
}

func TestMoveAndDeleteLayers(t *testing.T) {
	m, s, _ := newModel(t)
	require.NoError(t, s.RefreshViewState(context.Background()))
	m.Update(viewChangedMsg{})
	m.tab = tabLayers

	m.Update(runes("J"))
	assert.Equal(t, 1, m.cursor)
	row, err := m.session.Layers.Table().Row(1)
	require.NoError(t, err)
	assert.Equal(t, "GRID", row.TypeLabel())

	m.Update(runes("x"))
	assert.Equal(t, 1, m.session.Layers.Table().Len())
	assert.Equal(t, 0, m.cursor)

	m.Update(runes("r"))
	assert.Equal(t, 2, m.session.Layers.Table().Len())
	assert.False(t, m.dirty)
}

func TestZoomKeysSendCommands(t *testing.T) {
	m, _, ft := newModel(t)

	for _, k := range []tea.KeyMsg{runes("+"), runes("0"), {Type: tea.KeyShiftUp}, {Type: tea.KeyPgDown}} {
		_, cmd := m.Update(k)
		require.NotNil(t, cmd, k.String())
		msg := cmd()
		require.NoError(t, msg.(actionDoneMsg).err)
	}
	assert.Equal(t, []string{"zoomIn", "zoomReset", "panUp", "panDownRight"}, ft.Sent())
	assert.True(t, m.session.Viewer.Busy())
}

func TestBusyAndAlerts(t *testing.T) {
	m, _, _ := newModel(t)

	_, cmd := m.Update(busyMsg(true))
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "working")

	m.Update(busyMsg(false))
	assert.Contains(t, m.View(), "ready")

	m.Update(alertMsg(store.RemoteErrorMessage))
	assert.Contains(t, m.View(), store.RemoteErrorMessage)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.NotContains(t, m.View(), store.RemoteErrorMessage)
}

func TestSessionEnded(t *testing.T) {
	m, _, _ := newModel(t)
	_, cmd := m.Update(SessionEnded(assert.AnError))
	require.NotNil(t, cmd)
	assert.Equal(t, assert.AnError, m.Err())
}

func TestAttachForwardsNotifications(t *testing.T) {
	m, s, _ := newModel(t)

	var mu sync.Mutex
	var msgs []tea.Msg
	m.Attach(func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		msgs = append(msgs, msg)
	})

	require.NoError(t, s.RefreshViewState(context.Background()))
	m.session.Viewer.SetBusy(true)
	m.session.Alerts.Alert("boom")

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, msgs, tea.Msg(viewChangedMsg{}))
	assert.Contains(t, msgs, tea.Msg(busyMsg(true)))
	assert.Contains(t, msgs, tea.Msg(alertMsg("boom")))
}

func TestMouseClickAndDrag(t *testing.T) {
	m, _, ft := newModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	mouse := func(action tea.MouseAction, button tea.MouseButton, x, y int) tea.Cmd {
		_, cmd := m.Update(tea.MouseMsg{X: x, Y: y, Action: action, Button: button})
		return cmd
	}

	// canvas 1000x1000 over 100x50 cells: cell (10,5) is pixel (105,110)
	assert.Nil(t, mouse(tea.MouseActionPress, tea.MouseButtonLeft, 10, 5))
	cmd := mouse(tea.MouseActionRelease, tea.MouseButtonNone, 10, 5)
	require.NotNil(t, cmd)
	require.NoError(t, cmd().(actionDoneMsg).err)
	assert.False(t, m.session.Viewer.Busy(), "a pick keeps the image interactive")

	assert.Nil(t, mouse(tea.MouseActionPress, tea.MouseButtonLeft, 10, 5))
	cmd = mouse(tea.MouseActionRelease, tea.MouseButtonNone, 30, 25)
	require.NotNil(t, cmd)
	require.NoError(t, cmd().(actionDoneMsg).err)
	assert.True(t, m.session.Viewer.Busy())

	// a release without a left press, or a right click, sends nothing
	assert.Nil(t, mouse(tea.MouseActionRelease, tea.MouseButtonNone, 1, 1))
	assert.Nil(t, mouse(tea.MouseActionPress, tea.MouseButtonRight, 1, 1))
	assert.Nil(t, mouse(tea.MouseActionRelease, tea.MouseButtonNone, 1, 1))

	assert.Equal(t, []string{"pick 105 890", "zoom 105 305 490 890"}, ft.Sent())
}

func TestMouseIgnoredBeforeWindowSize(t *testing.T) {
	m, _, ft := newModel(t)
	_, cmd := m.Update(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Nil(t, cmd)
	_, cmd = m.Update(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionRelease})
	assert.Nil(t, cmd)
	assert.Empty(t, ft.Sent())
}
