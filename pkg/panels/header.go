package panels

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/grovetools/mviewer/pkg/models"
	"github.com/grovetools/mviewer/pkg/protocol"
	"github.com/grovetools/mviewer/tui/theme"
	"golang.org/x/net/html"
)

// HeaderCache holds the FITS header fragments by plane index.
type HeaderCache struct {
	mu        sync.RWMutex
	fragments map[int]string
	onChange  func()
}

// NewHeaderCache creates an empty cache.
func NewHeaderCache() *HeaderCache {
	return &HeaderCache{fragments: map[int]string{}}
}

// Set stores the fragment for a plane index.
func (c *HeaderCache) Set(index int, fragment string) {
	c.mu.Lock()
	c.fragments[index] = fragment
	notify := c.onChange
	c.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// Get returns the fragment for a plane index.
func (c *HeaderCache) Get(index int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.fragments[index]
	return f, ok
}

func (c *HeaderCache) setOnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// FITSHeaderViewer shows the FITS header of the selected plane.
type FITSHeaderViewer struct {
	rendered
	source  Source
	sender  Sender
	headers *HeaderCache
	mode    models.DisplayMode
}

// NewFITSHeaderViewer creates the header panel. Fragments arrive in headers
// when the renderer answers a header command.
func NewFITSHeaderViewer(source Source, sender Sender, headers *HeaderCache) *FITSHeaderViewer {
	p := &FITSHeaderViewer{source: source, sender: sender, headers: headers}
	p.plane = models.PlaneBlue
	return p
}

// Init reads the display mode, asks the renderer for header fragments and
// subscribes to view updates.
func (p *FITSHeaderViewer) Init(ctx context.Context) error {
	if view := p.source.View(); view != nil {
		p.mode = view.DisplayMode
	}
	p.headers.setOnChange(p.render)
	p.setSubscription(p.source.Subscribe(p.render))
	p.render()
	return p.sender.Send(ctx, protocol.Header())
}

// SelectPlane shows another plane's header and requests fresh fragments.
func (p *FITSHeaderViewer) SelectPlane(ctx context.Context, plane models.Plane) error {
	p.setPlane(plane)
	p.render()
	return p.sender.Send(ctx, protocol.Header())
}

func (p *FITSHeaderViewer) render() {
	view := p.source.View()
	plane := effectivePlane(view, p.Plane())

	title := "FITS Header"
	if p.mode == models.DisplayColor {
		title += " (" + string(plane) + " plane)"
	}

	fragment, ok := p.headers.Get(plane.Index())
	body := theme.DefaultTheme.Muted.Render("waiting for header...")
	if ok {
		body = HTMLToText(fragment)
	}
	p.set(theme.RenderHeader(title) + "\n" + body)
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// blockTags start a new line when they open or close.
var blockTags = map[string]bool{
	"p": true, "div": true, "tr": true, "li": true,
	"table": true, "h1": true, "h2": true, "h3": true, "pre": true,
}

// HTMLToText strips markup from a header fragment, keeping line structure.
func HTMLToText(fragment string) string {
	var b strings.Builder
	newline := func() {
		if s := b.String(); s != "" && !strings.HasSuffix(s, "\n") {
			b.WriteString("\n")
		}
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; either way keep what was read
			return tidy(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "br":
				b.WriteString("\n")
			case (tag == "td" || tag == "th") && tt == html.EndTagToken:
				b.WriteString(" ")
			case blockTags[tag]:
				newline()
			}
		}
	}
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	out := strings.Join(lines, "\n")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.Trim(out, "\n")
}
