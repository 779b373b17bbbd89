package panels

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/grovetools/mviewer/pkg/models"
	"github.com/grovetools/mviewer/pkg/protocol"
	"github.com/grovetools/mviewer/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const colorView = `{"display_mode":"color",
  "blue_file":{"fits_file":"2mass_j.fits"},
  "green_file":{"fits_file":"2mass_h.fits"},
  "red_file":{"fits_file":"2mass_k.fits"},
  "xmin":100,"ymin":40,"factor":2,"overlay":[]}`

const grayView = `{"display_mode":"grayscale","gray_file":{"fits_file":"dss.fits"},
  "xmin":0,"ymin":0,"factor":1,"overlay":[]}`

const pickDoc = `[
  {"xref":5,"yref":10,"raref":210.8,"decref":54.35,"xmax":7,"ymax":8,"xmin":1,"ymin":2,
   "aveflux":12.5,"rmsflux":0.5,"radius":0.01,"radpix":20,"npixel":1234567,"nnull":1200},
  {"xref":6,"yref":11,"raref":210.9,"decref":54.4},
  {"xref":7,"yref":12}
]`

type workspace struct {
	t   *testing.T
	dir string
}

func (w workspace) write(name, body string) {
	w.t.Helper()
	require.NoError(w.t, os.WriteFile(filepath.Join(w.dir, name), []byte(body), 0644))
}

type countingFetcher struct {
	store.DirFetcher
	mu    sync.Mutex
	calls int
}

func (f *countingFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.DirFetcher.Fetch(ctx, name)
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Send(_ context.Context, cmd protocol.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, cmd.String())
	return nil
}

func (r *recorder) SetBusy(busy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if busy {
		r.events = append(r.events, "busy")
	}
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type nopSender struct{}

func (nopSender) Send(context.Context, string) error { return nil }

func newStore(t *testing.T, view string) (*store.Store, workspace, *countingFetcher) {
	t.Helper()
	ws := workspace{t: t, dir: t.TempDir()}
	ws.write(store.ViewDocument, view)
	fetcher := &countingFetcher{DirFetcher: store.DirFetcher{Dir: ws.dir}}
	s := store.New(fetcher, nopSender{})
	require.NoError(t, s.RefreshViewState(context.Background()))
	return s, ws, fetcher
}

func TestInfoDisplay(t *testing.T) {
	s, ws, _ := newStore(t, colorView)
	info := NewInfoDisplay(s)
	info.Init()
	defer info.Close()

	out := info.View()
	assert.Contains(t, out, "color")
	assert.Contains(t, out, "2mass_j.fits")
	assert.Contains(t, out, "2mass_h.fits")
	assert.Contains(t, out, "2mass_k.fits")

	changes := 0
	info.OnChange(func() { changes++ })
	ws.write(store.ViewDocument, grayView)
	require.NoError(t, s.RefreshViewState(context.Background()))

	assert.Equal(t, 1, changes)
	out = info.View()
	assert.Contains(t, out, "grayscale")
	assert.Contains(t, out, "dss.fits")
	assert.NotContains(t, out, "2mass_j.fits")

	info.Close()
	require.NoError(t, s.RefreshViewState(context.Background()))
	assert.Equal(t, 1, changes, "closed panels are no longer notified")
}

func TestRenderInfoWithoutView(t *testing.T) {
	assert.Contains(t, RenderInfo(nil), "no view loaded")
}

func TestComputeRegion(t *testing.T) {
	view := &models.ViewState{XMin: 100, YMin: 40, Factor: 2}
	r := ComputeRegion(view, models.PlaneStats{XRef: 5, YRef: 10, XMax: 7.4, YMin: 0.2, RARef: 210.8})

	assert.Equal(t, 110, r.XRef)
	assert.Equal(t, 60, r.YRef)
	assert.Equal(t, 115, r.XMax)
	assert.Equal(t, 40, r.YMin)
	assert.Equal(t, 210.8, r.RARef)
}

func TestRegionStats(t *testing.T) {
	s, ws, fetcher := newStore(t, colorView)
	stats := NewRegionStats(s)
	stats.Init()
	defer stats.Close()

	_, ok := stats.Region()
	assert.False(t, ok)
	assert.Contains(t, stats.View(), "pick a point")

	ws.write(store.PickDocument, pickDoc)
	require.NoError(t, s.RefreshPickResult(context.Background()))

	r, ok := stats.Region()
	require.True(t, ok)
	assert.Equal(t, 110, r.XRef)
	assert.Equal(t, 60, r.YRef)
	out := stats.View()
	assert.Contains(t, out, "blue plane")
	assert.Contains(t, out, "1,234,567 pixels (1,200 nulls)")
	assert.Contains(t, out, "12.5 ± 0.5")
	assert.Contains(t, out, "210.8")

	fetches := fetcher.calls
	stats.SelectPlane(models.PlaneGreen)
	assert.Equal(t, fetches, fetcher.calls, "plane change uses data already fetched")

	r, _ = stats.Region()
	assert.Equal(t, 112, r.XRef)
	assert.Equal(t, 210.9, r.RARef)
	assert.Contains(t, stats.View(), "green plane")
}

func TestRegionStatsGrayscale(t *testing.T) {
	s, ws, _ := newStore(t, grayView)
	ws.write(store.PickDocument, pickDoc)
	require.NoError(t, s.RefreshPickResult(context.Background()))

	stats := NewRegionStats(s)
	stats.Init()
	stats.SelectPlane(models.PlaneRed)

	r, ok := stats.Region()
	require.True(t, ok)
	assert.Equal(t, 5, r.XRef, "grayscale always reads plane 0")
	assert.NotContains(t, stats.View(), "red plane")
}

func TestFITSHeaderViewer(t *testing.T) {
	s, _, _ := newStore(t, colorView)
	sender := &recorder{}
	headers := NewHeaderCache()

	viewer := NewFITSHeaderViewer(s, sender, headers)
	require.NoError(t, viewer.Init(context.Background()))
	defer viewer.Close()

	assert.Equal(t, []string{"header"}, sender.Events())
	assert.Contains(t, viewer.View(), "waiting for header")

	headers.Set(0, "<pre>SIMPLE  =                    T\nNAXIS   =                    2</pre>")
	headers.Set(1, "<pre>TELESCOP= '2MASS   '</pre>")
	assert.Contains(t, viewer.View(), "NAXIS   =                    2")
	assert.Contains(t, viewer.View(), "blue plane")

	require.NoError(t, viewer.SelectPlane(context.Background(), models.PlaneGreen))
	assert.Equal(t, []string{"header", "header"}, sender.Events())
	assert.Contains(t, viewer.View(), "TELESCOP= '2MASS   '")
	assert.Equal(t, models.PlaneGreen, viewer.Plane())
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "SIMPLE = T", "SIMPLE = T"},
		{"pre block", "<pre>A = 1\nB = 2\n</pre>", "A = 1\nB = 2"},
		{"breaks", "A = 1<br>B = 2<br/>C = 3", "A = 1\nB = 2\nC = 3"},
		{"entities", "<p>OBJECT = &apos;M101&apos; &amp; friends</p>", "OBJECT = 'M101' & friends"},
		{"table", "<table><tr><td>A</td><td>1</td></tr><tr><td>B</td><td>2</td></tr></table>", "A 1\nB 2"},
		{"empty blocks", "<div>a</div><p></p><p></p><div>b</div>", "a\nb"},
		{"blank runs", "<pre>A\n\n\n\nB</pre>", "A\n\nB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTMLToText(tt.in))
		})
	}
}

func TestZoomControlBusyBeforeSend(t *testing.T) {
	r := &recorder{}
	z := NewZoomControl(r, r)
	ctx := context.Background()

	require.NoError(t, z.ZoomIn(ctx))
	require.NoError(t, z.ZoomOut(ctx))
	require.NoError(t, z.ZoomReset(ctx))
	require.NoError(t, z.Center(ctx))
	require.NoError(t, z.Pan(ctx, protocol.PanUpLeft))

	assert.Equal(t, []string{
		"busy", "zoomIn",
		"busy", "zoomOut",
		"busy", "zoomReset",
		"busy", "center",
		"busy", "panUpLeft",
	}, r.Events())
}
