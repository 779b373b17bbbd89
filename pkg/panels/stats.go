package panels

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/grovetools/mviewer/pkg/coords"
	"github.com/grovetools/mviewer/pkg/models"
	"github.com/grovetools/mviewer/tui/components/table"
	"github.com/grovetools/mviewer/tui/theme"
)

// Region is the statistics of one plane around the pick point, with image
// coordinates converted to canvas pixels.
type Region struct {
	XRef, YRef     int
	RARef, DecRef  float64
	FluxRef        float64
	SigmaRef       float64
	XMin, YMin     int
	RAMin, DecMin  float64
	FluxMin        float64
	SigmaMin       float64
	XMax, YMax     int
	RAMax, DecMax  float64
	FluxMax        float64
	SigmaMax       float64
	AveFlux        float64
	RMSFlux        float64
	Radius, RadPix float64
	NPixel, NNull  float64
}

// ComputeRegion combines plane statistics with the view transform.
func ComputeRegion(view *models.ViewState, s models.PlaneStats) Region {
	var xmin, ymin, factor float64
	if view != nil {
		xmin, ymin, factor = view.XMin, view.YMin, view.Factor
	}
	return Region{
		XRef:     coords.Canvas(xmin, s.XRef, factor),
		YRef:     coords.Canvas(ymin, s.YRef, factor),
		RARef:    s.RARef,
		DecRef:   s.DecRef,
		FluxRef:  s.FluxRef,
		SigmaRef: s.SigmaRef,
		XMin:     coords.Canvas(xmin, s.XMin, factor),
		YMin:     coords.Canvas(ymin, s.YMin, factor),
		RAMin:    s.RAMin,
		DecMin:   s.DecMin,
		FluxMin:  s.FluxMin,
		SigmaMin: s.SigmaMin,
		XMax:     coords.Canvas(xmin, s.XMax, factor),
		YMax:     coords.Canvas(ymin, s.YMax, factor),
		RAMax:    s.RAMax,
		DecMax:   s.DecMax,
		FluxMax:  s.FluxMax,
		SigmaMax: s.SigmaMax,
		AveFlux:  s.AveFlux,
		RMSFlux:  s.RMSFlux,
		Radius:   s.Radius,
		RadPix:   s.RadPix,
		NPixel:   s.NPixel,
		NNull:    s.NNull,
	}
}

// RegionStats shows the pick statistics for the selected plane.
type RegionStats struct {
	rendered
	source Source

	region Region
	valid  bool
}

func NewRegionStats(source Source) *RegionStats {
	p := &RegionStats{source: source}
	p.plane = models.PlaneBlue
	return p
}

// Init subscribes to pick updates and renders the current pick, if any.
func (p *RegionStats) Init() {
	p.setSubscription(p.source.SubscribePick(p.render))
	p.render()
}

// SelectPlane re-renders from the pick already fetched.
func (p *RegionStats) SelectPlane(plane models.Plane) {
	p.setPlane(plane)
	p.render()
}

// Region returns the values shown for the selected plane. ok is false until
// a pick result has been received.
func (p *RegionStats) Region() (r Region, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.region, p.valid
}

func (p *RegionStats) render() {
	view := p.source.View()
	pick := p.source.Pick()
	if pick == nil {
		p.set(theme.RenderHeader("Region Statistics") + "\n" +
			theme.DefaultTheme.Muted.Render("click the image to pick a point"))
		return
	}

	plane := effectivePlane(view, p.Plane())
	region := ComputeRegion(view, pick.ForPlane(plane))

	p.mu.Lock()
	p.region = region
	p.valid = true
	p.mu.Unlock()

	title := "Region Statistics"
	if plane != models.PlaneGray {
		title += " (" + string(plane) + " plane)"
	}
	p.set(theme.RenderHeader(title) + "\n" + RenderRegion(region))
}

// RenderRegion lays out a Region as the stats table and summary lines.
func RenderRegion(r Region) string {
	grid := table.NewBuilder().
		WithHeaders("", "X", "Y", "RA", "Dec", "Flux", "Sigma").
		WithRows(
			[]string{"Center", strconv.Itoa(r.XRef), strconv.Itoa(r.YRef), num(r.RARef), num(r.DecRef), num(r.FluxRef), num(r.SigmaRef)},
			[]string{"Max Flux", strconv.Itoa(r.XMax), strconv.Itoa(r.YMax), num(r.RAMax), num(r.DecMax), num(r.FluxMax), num(r.SigmaMax)},
			[]string{"Min Flux", strconv.Itoa(r.XMin), strconv.Itoa(r.YMin), num(r.RAMin), num(r.DecMin), num(r.FluxMin), num(r.SigmaMin)},
		).
		Build().
		String()

	summary := table.StatusTable([][]string{
		{"Avg", fmt.Sprintf("%s ± %s", num(r.AveFlux), num(r.RMSFlux))},
		{"Region", fmt.Sprintf("Radius %s deg (%s pixels)", num(r.Radius), num(r.RadPix))},
		{"Pixels", fmt.Sprintf("%s pixels (%s nulls)", count(r.NPixel), count(r.NNull))},
	})
	return grid + "\n" + summary
}

// num formats a statistic. Small magnitudes keep their significant digits.
func num(v float64) string {
	if v != 0 && math.Abs(v) < 1e-3 {
		return strconv.FormatFloat(v, 'g', 6, 64)
	}
	return humanize.Ftoa(v)
}

func count(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}
