package console

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the console state.
type Model struct {
	ctx     context.Context
	session Session
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	tab    tab
	cursor int
	dirty  bool // layer edits not yet applied
	press  *tea.MouseMsg
	busy   bool
	alert  string
	err    error
	width  int
	height int
}

// Init is the first command that will be executed.
func (m *Model) Init() tea.Cmd {
	m.reloadLayers()
	return nil
}

// Err returns why the session ended, if it did.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) reloadLayers() {
	if m.session.Layers == nil {
		return
	}
	if err := m.session.Layers.Init(); err != nil {
		return
	}
	m.dirty = false
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := 0
	if t := m.layerTable(); t != nil {
		n = t.Len()
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
