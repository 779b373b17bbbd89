package console

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/mviewer/pkg/layers"
	"github.com/grovetools/mviewer/pkg/models"
	"github.com/grovetools/mviewer/pkg/protocol"
)

// Update handles messages and updates the model accordingly.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case busyMsg:
		m.busy = bool(msg)
		if m.busy {
			return m, m.spinner.Tick
		}
		return m, nil

	case viewChangedMsg:
		// pending edits win over a refresh; revert picks the new list up
		if !m.dirty {
			m.reloadLayers()
		}
		return m, nil

	case pickChangedMsg, panelChangedMsg:
		return m, nil

	case alertMsg:
		m.alert = string(msg)
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.alert = msg.err.Error()
		}
		return m, nil

	case sessionEndedMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.mouse(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll && !key.Matches(msg, m.keys.Quit) {
		m.help.ShowAll = false
		return m, nil
	}
	m.alert = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = true
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % tabCount
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + tabCount - 1) % tabCount
		return m, nil
	}

	if cmd, ok := m.zoomKey(msg); ok {
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Blue):
		return m, m.selectPlane(models.PlaneBlue)
	case key.Matches(msg, m.keys.Green):
		return m, m.selectPlane(models.PlaneGreen)
	case key.Matches(msg, m.keys.Red):
		return m, m.selectPlane(models.PlaneRed)
	}

	if m.tab == tabLayers {
		return m, m.layerKey(msg)
	}
	return m, nil
}

// zoomKey maps the zoom and pan keys. ok is false for any other key.
func (m *Model) zoomKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	z := m.session.Zoom
	if z == nil {
		return nil, false
	}
	pan := func(dir protocol.PanDirection) func(ctx context.Context) error {
		return func(ctx context.Context) error { return z.Pan(ctx, dir) }
	}

	var fn func(ctx context.Context) error
	switch {
	case key.Matches(msg, m.keys.ZoomIn):
		fn = z.ZoomIn
	case key.Matches(msg, m.keys.ZoomOut):
		fn = z.ZoomOut
	case key.Matches(msg, m.keys.ZoomReset):
		fn = z.ZoomReset
	case key.Matches(msg, m.keys.Center):
		fn = z.Center
	case key.Matches(msg, m.keys.PanUp):
		fn = pan(protocol.PanUp)
	case key.Matches(msg, m.keys.PanDown):
		fn = pan(protocol.PanDown)
	case key.Matches(msg, m.keys.PanLeft):
		fn = pan(protocol.PanLeft)
	case key.Matches(msg, m.keys.PanRight):
		fn = pan(protocol.PanRight)
	case key.Matches(msg, m.keys.PanUpLeft):
		fn = pan(protocol.PanUpLeft)
	case key.Matches(msg, m.keys.PanUpRight):
		fn = pan(protocol.PanUpRight)
	case key.Matches(msg, m.keys.PanDownLeft):
		fn = pan(protocol.PanDownLeft)
	case key.Matches(msg, m.keys.PanDownRight):
		fn = pan(protocol.PanDownRight)
	case key.Matches(msg, m.keys.Update) && m.session.Viewer != nil:
		v := m.session.Viewer
		fn = func(ctx context.Context) error { return v.Send(ctx, protocol.Update()) }
	default:
		return nil, false
	}
	return m.run(fn), true
}

func (m *Model) selectPlane(p models.Plane) tea.Cmd {
	if m.session.Stats != nil {
		m.session.Stats.SelectPlane(p)
	}
	if h := m.session.Header; h != nil {
		return m.run(func(ctx context.Context) error { return h.SelectPlane(ctx, p) })
	}
	return nil
}

func (m *Model) layerKey(msg tea.KeyMsg) tea.Cmd {
	t := m.layerTable()
	if t == nil {
		return nil
	}

	var err error
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < t.Len()-1 {
			m.cursor++
		}
		return nil
	case key.Matches(msg, m.keys.Toggle):
		err = m.edit(t.ToggleVisible(m.cursor))
	case key.Matches(msg, m.keys.MoveUp):
		if err = m.edit(t.MoveUp(m.cursor)); err == nil && m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.MoveDown):
		if err = m.edit(t.MoveDown(m.cursor)); err == nil && m.cursor < t.Len()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Delete):
		err = m.edit(t.Delete(m.cursor))
		m.clampCursor()
	case key.Matches(msg, m.keys.Revert):
		m.reloadLayers()
	case key.Matches(msg, m.keys.Apply):
		// commit here so later edits cannot reach the submitted view
		c := m.session.Layers
		view, err := c.Commit()
		if err != nil {
			m.alert = err.Error()
			return nil
		}
		m.dirty = false
		return m.run(func(ctx context.Context) error { return c.Submit(ctx, view) })
	}
	if err != nil {
		m.alert = err.Error()
	}
	return nil
}

func (m *Model) edit(err error) error {
	if err == nil {
		m.dirty = true
	}
	return err
}

func (m *Model) layerTable() *layers.Table {
	if m.session.Layers == nil {
		return nil
	}
	return m.session.Layers.Table()
}

// run performs fn off the UI goroutine and reports the outcome.
func (m *Model) run(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: fn(ctx)}
	}
}

// mouse turns a left click into a pick and a left drag into a zoom box.
// The terminal is mapped onto the canvas, each cell standing for the
// pixels at its centre.
func (m *Model) mouse(msg tea.MouseMsg) tea.Cmd {
	v := m.session.Viewer
	if v == nil || m.width <= 0 || m.height <= 0 {
		return nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.press = &msg
		}
	case tea.MouseActionRelease:
		if m.press == nil {
			return nil
		}
		start := *m.press
		m.press = nil

		x0, y0 := m.toCanvas(start.X, start.Y)
		if start.X == msg.X && start.Y == msg.Y {
			return m.run(func(ctx context.Context) error { return v.Click(ctx, x0, y0) })
		}
		x1, y1 := m.toCanvas(msg.X, msg.Y)
		return m.run(func(ctx context.Context) error { return v.ZoomBox(ctx, x0, y0, x1, y1) })
	}
	return nil
}

func (m *Model) toCanvas(col, row int) (x, y float64) {
	width, height := m.session.Viewer.Canvas()
	x = (float64(col) + 0.5) * float64(width) / float64(m.width)
	y = (float64(row) + 0.5) * float64(height) / float64(m.height)
	return x, y
}
