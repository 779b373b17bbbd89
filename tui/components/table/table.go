package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/mviewer/tui/theme"
)

// Options provides additional configuration for the table
type Options struct {
	Bordered      bool
	HeaderStyle   lipgloss.Style
	RowStyle      lipgloss.Style
	AlternateRows bool
	Theme         *theme.Theme
}

// DefaultOptions returns the default table options
func DefaultOptions() Options {
	return Options{
		Bordered:      true,
		HeaderStyle:   theme.DefaultTheme.TableHeader,
		RowStyle:      theme.DefaultTheme.TableRow,
		AlternateRows: theme.DefaultTheme.UseAlternatingRows,
		Theme:         theme.DefaultTheme,
	}
}

// Builder provides a fluent interface for creating styled tables
type Builder struct {
	headers []string
	rows    [][]string
	width   int
	options Options
}

// NewBuilder creates a new table builder
func NewBuilder() *Builder {
	return &Builder{options: DefaultOptions()}
}

// WithTheme sets the theme
func (b *Builder) WithTheme(t *theme.Theme) *Builder {
	b.options.Theme = t
	b.options.HeaderStyle = t.TableHeader
	b.options.RowStyle = t.TableRow
	b.options.AlternateRows = t.UseAlternatingRows
	return b
}

// WithBorder enables or disables the border
func (b *Builder) WithBorder(bordered bool) *Builder {
	b.options.Bordered = bordered
	return b
}

// WithAlternateRows enables or disables alternating row colors
func (b *Builder) WithAlternateRows(alternate bool) *Builder {
	b.options.AlternateRows = alternate
	return b
}

// WithHeaders sets the table headers
func (b *Builder) WithHeaders(headers ...string) *Builder {
	b.headers = headers
	return b
}

// WithRows appends rows
func (b *Builder) WithRows(rows ...[]string) *Builder {
	b.rows = append(b.rows, rows...)
	return b
}

// WithWidth sets the total table width
func (b *Builder) WithWidth(width int) *Builder {
	b.width = width
	return b
}

// Build creates the styled table
func (b *Builder) Build() *ltable.Table {
	opts := b.options
	t := ltable.New()
	if len(b.headers) > 0 {
		t = t.Headers(b.headers...)
	}
	if opts.Bordered {
		t = t.Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(opts.Theme.Colors.Border))
	} else {
		t = t.Border(lipgloss.HiddenBorder())
	}
	if b.width > 0 {
		t = t.Width(b.width)
	}

	t = t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == ltable.HeaderRow {
			return opts.HeaderStyle
		}
		style := opts.RowStyle
		if opts.AlternateRows && row%2 == 1 {
			style = style.Background(opts.Theme.Colors.VerySubtleBackground)
		}
		return style
	})

	for _, r := range b.rows {
		t = t.Row(r...)
	}
	return t
}

// SimpleTable creates a basic table with headers and rows
func SimpleTable(headers []string, rows [][]string) string {
	return NewBuilder().
		WithHeaders(headers...).
		WithRows(rows...).
		Build().
		String()
}

// StatusTable renders label/value pairs without a border, labels muted.
func StatusTable(items [][]string) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		if len(item) >= 2 {
			rows = append(rows, []string{theme.DefaultTheme.Muted.Render(item[0] + ":"), item[1]})
		}
	}
	return NewBuilder().
		WithBorder(false).
		WithAlternateRows(false).
		WithRows(rows...).
		Build().
		String()
}

// SelectableTable renders a bordered table with a marker to the left of the
// selected data row. A negative selectedIndex renders no marker.
func SelectableTable(headers []string, rows [][]string, selectedIndex int) string {
	rendered := NewBuilder().
		WithHeaders(headers...).
		WithRows(rows...).
		Build().
		String()

	// Line 0 is the top border. With headers, line 1 is the header row and
	// line 2 its separator.
	first := 1
	if len(headers) > 0 {
		first = 3
	}
	selectedLine := -1
	if selectedIndex >= 0 {
		selectedLine = first + selectedIndex
	}

	marker := theme.DefaultTheme.Highlight.Render(">")
	lines := strings.Split(rendered, "\n")
	for i, line := range lines {
		if i == selectedLine {
			lines[i] = marker + " " + line
		} else {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
