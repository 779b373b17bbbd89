// Package viewer is the session controller: it reacts to renderer
// directives, translates canvas gestures into commands and tracks the busy
// state.
package viewer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/mviewer/errors"
	"github.com/grovetools/mviewer/logging"
	"github.com/grovetools/mviewer/pkg/coords"
	"github.com/grovetools/mviewer/pkg/panels"
	"github.com/grovetools/mviewer/pkg/protocol"
	"github.com/grovetools/mviewer/pkg/store"
	"github.com/grovetools/mviewer/pkg/transport"
	"github.com/sirupsen/logrus"
)

// Defaults for the canvas and gesture handling.
const (
	DefaultResizeDebounce = 150 * time.Millisecond
	DefaultPickThreshold  = 5
	DefaultCanvasSize     = 1000
)

// Transport is the message channel to the renderer. *transport.Client
// satisfies it.
type Transport interface {
	OnMessage(h transport.Handler) (unsubscribe func())
	Send(ctx context.Context, text string) error
	Done() <-chan struct{}
	Err() error
}

// ImageSink shows the rendered image.
type ImageSink interface {
	Clear()
	Load(url string)
}

// Reference is the current pick point: canvas pixels and sky position.
type Reference struct {
	X, Y    int
	RA, Dec float64
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithImageSink sets where image directives are delivered.
func WithImageSink(s ImageSink) Option {
	return func(v *Viewer) { v.image = s }
}

// WithHeaderCache sets the cache filled by header directives.
func WithHeaderCache(c *panels.HeaderCache) Option {
	return func(v *Viewer) { v.headers = c }
}

// WithRegionStats makes the reference point follow the stats panel's
// selected plane.
func WithRegionStats(p *panels.RegionStats) Option {
	return func(v *Viewer) { v.stats = p }
}

// WithCanvas sets the initial canvas size in pixels.
func WithCanvas(width, height int) Option {
	return func(v *Viewer) {
		if width > 0 && height > 0 {
			v.width, v.height = width, height
		}
	}
}

// WithResizeDebounce sets the quiet period before a resize is sent.
func WithResizeDebounce(d time.Duration) Option {
	return func(v *Viewer) {
		if d > 0 {
			v.debounce = d
		}
	}
}

// WithPickThreshold sets the box size below which a zoom box is a pick.
func WithPickThreshold(px float64) Option {
	return func(v *Viewer) {
		if px > 0 {
			v.threshold = px
		}
	}
}

// WithLogger sets the viewer's logger.
func WithLogger(l *logrus.Entry) Option {
	return func(v *Viewer) { v.logger = l }
}

// Viewer serialises directive handling on a single event loop.
type Viewer struct {
	transport Transport
	store     *store.Store
	image     ImageSink
	headers   *panels.HeaderCache
	stats     *panels.RegionStats
	logger    *logrus.Entry

	debounce  time.Duration
	threshold float64

	events      chan func(ctx context.Context) bool
	stopped     chan struct{}
	stop        sync.Once
	unsubscribe func()

	mu           sync.Mutex
	width        int
	height       int
	busy         bool
	busyHandlers []func(bool)
	reference    Reference
	resizeTimer  *time.Timer
	resizeGen    int
	pendingW     int
	pendingH     int
}

// New creates a viewer over an open (or opening) transport and a store.
func New(t Transport, s *store.Store, opts ...Option) *Viewer {
	v := &Viewer{
		transport: t,
		store:     s,
		headers:   panels.NewHeaderCache(),
		debounce:  DefaultResizeDebounce,
		threshold: DefaultPickThreshold,
		width:     DefaultCanvasSize,
		height:    DefaultCanvasSize,
		events:    make(chan func(ctx context.Context) bool, 64),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = logging.NewLogger("viewer")
	}
	v.unsubscribe = t.OnMessage(func(message string) {
		v.enqueue(func(ctx context.Context) bool {
			return v.handle(ctx, message)
		})
	})
	return v
}

// Headers returns the header fragment cache.
func (v *Viewer) Headers() *panels.HeaderCache {
	return v.headers
}

// Canvas returns the current canvas size.
func (v *Viewer) Canvas() (width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// Reference returns the last pick point.
func (v *Viewer) Reference() Reference {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reference
}

// SetBusy implements store.Busy.
func (v *Viewer) SetBusy(busy bool) {
	v.mu.Lock()
	changed := v.busy != busy
	v.busy = busy
	handlers := make([]func(bool), len(v.busyHandlers))
	copy(handlers, v.busyHandlers)
	v.mu.Unlock()

	if !changed {
		return
	}
	for _, h := range handlers {
		h(busy)
	}
}

// Busy reports whether a request is outstanding.
func (v *Viewer) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

// OnBusyChange registers fn to run whenever the busy state flips.
func (v *Viewer) OnBusyChange(fn func(busy bool)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busyHandlers = append(v.busyHandlers, fn)
}

// Run processes renderer directives one at a time until ctx ends, the
// connection drops, or the renderer sends close. A close returns nil.
// Directives that arrive between New and Run are queued, not lost.
func (v *Viewer) Run(ctx context.Context) error {
	defer v.stop.Do(func() {
		v.unsubscribe()
		close(v.stopped)
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-v.transport.Done():
			// directives read before the drop still count
			for {
				select {
				case event := <-v.events:
					if closed := event(ctx); closed {
						return nil
					}
					continue
				default:
				}
				break
			}
			return errors.TransportClosed(v.transport.Err())
		case event := <-v.events:
			if closed := event(ctx); closed {
				v.logger.Info("Renderer closed the session")
				return nil
			}
		}
	}
}

func (v *Viewer) enqueue(event func(ctx context.Context) bool) {
	select {
	case v.events <- event:
	case <-v.stopped:
	}
}

// handle dispatches one directive. It reports true when the session is over.
func (v *Viewer) handle(ctx context.Context, message string) bool {
	d := protocol.ParseDirective(message)
	log := v.logger.WithField("directive", d.Verb)

	switch d.Kind {
	case protocol.DirectiveImage:
		if v.image != nil {
			v.image.Clear()
			v.image.Load(seeded(d.Arg))
		}
		if err := v.store.RefreshViewState(ctx); err != nil {
			log.WithError(err).Debug("View refresh after image failed")
		}
		v.SetBusy(false)

	case protocol.DirectivePick:
		if err := v.store.RefreshPickResult(ctx); err != nil {
			log.WithError(err).Debug("Pick refresh failed")
			return false
		}
		v.updateReference()

	case protocol.DirectiveHeader:
		v.fetchHeaders(ctx, d.Arg)

	case protocol.DirectiveUpdateDisplay:
		if err := v.store.Send(ctx, protocol.Update()); err != nil {
			log.WithError(err).Warn("Failed to request update")
		}

	case protocol.DirectiveClose:
		return true

	default:
		log.WithError(errors.UnknownDirective(d.Verb)).WithField("raw", d.Raw).Info("Ignoring directive")
	}
	return false
}

func (v *Viewer) fetchHeaders(ctx context.Context, mode string) {
	var indexes []int
	switch mode {
	case protocol.HeaderGray:
		indexes = []int{0}
	case protocol.HeaderColor:
		indexes = []int{0, 1, 2}
	default:
		v.logger.WithField("mode", mode).Warn("Bad header directive")
		return
	}

	for _, i := range indexes {
		fragment, err := v.store.FetchHeader(ctx, i)
		if err != nil {
			v.logger.WithError(err).WithField("index", i).Warn("Failed to fetch header")
			continue
		}
		v.headers.Set(i, fragment)
	}
}

func (v *Viewer) updateReference() {
	var region panels.Region
	ok := false
	if v.stats != nil {
		region, ok = v.stats.Region()
	}
	if !ok {
		pick := v.store.Pick()
		if pick == nil {
			return
		}
		region = panels.ComputeRegion(v.store.View(), pick[0])
	}

	v.mu.Lock()
	v.reference = Reference{X: region.XRef, Y: region.YRef, RA: region.RARef, Dec: region.DecRef}
	v.mu.Unlock()
}

// seeded appends a cache-busting seed to an image URL.
func seeded(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "seed=" + uuid.NewString()
}

// Resize records a new canvas size. Only the last of a burst of resizes,
// once no other has arrived for the debounce period, is sent.
func (v *Viewer) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pendingW, v.pendingH = width, height
	v.resizeGen++
	gen := v.resizeGen
	if v.resizeTimer != nil {
		v.resizeTimer.Stop()
	}
	v.resizeTimer = time.AfterFunc(v.debounce, func() {
		v.enqueue(func(ctx context.Context) bool {
			v.resizeFinal(ctx, gen)
			return false
		})
	})
}

func (v *Viewer) resizeFinal(ctx context.Context, gen int) {
	v.mu.Lock()
	if gen != v.resizeGen {
		v.mu.Unlock()
		return
	}
	v.width, v.height = v.pendingW, v.pendingH
	width, height := v.width, v.height
	v.mu.Unlock()

	v.SetBusy(true)
	if v.image != nil {
		v.image.Clear()
	}
	if err := v.store.Send(ctx, protocol.Resize(width, height)); err != nil {
		v.logger.WithError(err).Warn("Failed to send resize")
	}
}

// BoxCommand converts a dragged box in screen coordinates (origin top-left)
// into a zoom command in image coordinates (origin bottom-left). Boxes
// smaller than threshold on both axes are treated as a pick at their far
// corner, reported by pick.
func BoxCommand(x0, y0, x1, y1, height, threshold float64) (cmd protocol.Command, pick bool) {
	xmin, xmax := x0, x1
	if xmin > xmax {
		xmin, xmax = xmax, xmin
	}
	if xmin == xmax {
		xmax = xmin + 1e-9
	}

	ymin, ymax := coords.FlipY(height, y0), coords.FlipY(height, y1)
	if ymin > ymax {
		ymin, ymax = ymax, ymin
	}
	if ymin == ymax {
		ymax = ymin + 1e-9
	}

	if ymax-ymin < threshold && xmax-xmin < threshold {
		return protocol.Pick(xmax, ymax), true
	}
	return protocol.Zoom(xmin, xmax, ymin, ymax), false
}

// ZoomBox handles a box dragged on the canvas.
func (v *Viewer) ZoomBox(ctx context.Context, x0, y0, x1, y1 float64) error {
	_, height := v.Canvas()
	cmd, pick := BoxCommand(x0, y0, x1, y1, float64(height), v.threshold)

	// a pick keeps the image interactive
	v.SetBusy(!pick)
	if err := v.store.Send(ctx, cmd); err != nil {
		v.SetBusy(false)
		return err
	}
	return nil
}

// Click picks the point under the cursor.
func (v *Viewer) Click(ctx context.Context, x, y float64) error {
	_, height := v.Canvas()
	return v.store.Send(ctx, protocol.Pick(x, coords.FlipY(float64(height), y)))
}

// Send delivers an arbitrary command, entering the busy state first.
func (v *Viewer) Send(ctx context.Context, cmd protocol.Command) error {
	v.SetBusy(true)
	if err := v.store.Send(ctx, cmd); err != nil {
		v.SetBusy(false)
		return err
	}
	return nil
}
