package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/mviewer/pkg/coords"
	"github.com/grovetools/mviewer/pkg/viewer"
	"github.com/grovetools/mviewer/tui/components/table"
	"github.com/grovetools/mviewer/tui/theme"
)

var layerHeaders = []string{"Vis", "Type", "Source", "Symbol", "Scale", "Color"}

// View renders the console.
func (m *Model) View() string {
	t := theme.DefaultTheme
	var b strings.Builder

	b.WriteString(theme.RenderHeader("mViewer"))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")
	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	body := m.body()
	if m.busy {
		body = t.Busy.Render(body)
	}
	b.WriteString(body)
	b.WriteString("\n")

	if m.alert != "" {
		b.WriteString("\n")
		b.WriteString(theme.RenderStatus("error", m.alert))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) statusLine() string {
	var parts []string
	if m.busy {
		parts = append(parts, m.spinner.View()+" working...")
	} else {
		parts = append(parts, theme.RenderStatus("success", "ready"))
	}
	if v := m.session.Viewer; v != nil {
		ref := v.Reference()
		if ref != (viewer.Reference{}) {
			parts = append(parts, theme.DefaultTheme.Muted.Render(fmt.Sprintf("X %d  Y %d  RA %s  Dec %s",
				ref.X, ref.Y, coords.ToDMS(ref.RA), coords.ToDMS(ref.Dec))))
		}
	}
	return strings.Join(parts, "  ")
}

func (m *Model) tabBar() string {
	names := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == m.tab {
			names = append(names, theme.DefaultTheme.Highlight.Render("["+name+"]"))
		} else {
			names = append(names, theme.DefaultTheme.Muted.Render(" "+name+" "))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, names...)
}

func (m *Model) body() string {
	s := m.session
	switch m.tab {
	case tabInfo:
		if s.Info != nil {
			return s.Info.View()
		}
	case tabLayers:
		return m.layersView()
	case tabStats:
		if s.Stats != nil {
			return s.Stats.View()
		}
	case tabHeader:
		if s.Header != nil {
			return s.Header.View()
		}
	}
	return theme.DefaultTheme.Muted.Render("nothing to show")
}

func (m *Model) layersView() string {
	t := m.layerTable()
	if t == nil || t.Len() == 0 {
		return theme.DefaultTheme.Muted.Render("no layers")
	}

	rows := make([][]string, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		cells, err := t.Cells(i)
		if err != nil {
			continue
		}
		row := cells[:]
		if r, err := t.Row(i); err == nil && r.Color != "" {
			row[5] = theme.Swatch(r.Color) + " " + cells[5]
		}
		rows = append(rows, row)
	}

	out := table.SelectableTable(layerHeaders, rows, m.cursor)
	if m.dirty {
		out += "\n" + theme.RenderStatus("warning", "modified, press a to apply")
	}
	return out
}
