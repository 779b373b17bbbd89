package panels

import (
	"github.com/grovetools/mviewer/pkg/models"
	"github.com/grovetools/mviewer/tui/components/table"
	"github.com/grovetools/mviewer/tui/theme"
)

// InfoDisplay shows the display mode and the file behind each plane.
type InfoDisplay struct {
	rendered
	source Source
}

func NewInfoDisplay(source Source) *InfoDisplay {
	return &InfoDisplay{source: source}
}

// Init subscribes to view updates and renders the current view.
func (p *InfoDisplay) Init() {
	p.setSubscription(p.source.Subscribe(p.render))
	p.render()
}

func (p *InfoDisplay) render() {
	p.set(RenderInfo(p.source.View()))
}

// RenderInfo renders the mode and file names of view.
func RenderInfo(view *models.ViewState) string {
	if view == nil {
		return theme.RenderHeader("Image") + "\n" + theme.DefaultTheme.Muted.Render("no view loaded")
	}

	items := [][]string{{"Mode", string(view.DisplayMode)}}
	if view.DisplayMode == models.DisplayColor {
		items = append(items,
			[]string{"Blue File", fileName(view.BlueFile)},
			[]string{"Green File", fileName(view.GreenFile)},
			[]string{"Red File", fileName(view.RedFile)},
		)
	} else {
		items = append(items, []string{"Gray File", fileName(view.GrayFile)})
	}
	return theme.RenderHeader("Image") + "\n" + table.StatusTable(items)
}

func fileName(f *models.FileInfo) string {
	if f == nil {
		return "-"
	}
	return f.FITSFile
}
