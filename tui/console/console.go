// Package console is the interactive terminal front end for a viewer
// session.
package console

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/mviewer/pkg/layers"
	"github.com/grovetools/mviewer/pkg/panels"
	"github.com/grovetools/mviewer/pkg/store"
	"github.com/grovetools/mviewer/pkg/viewer"
	"github.com/grovetools/mviewer/tui/theme"
)

// Session holds the pieces of a connected viewer the console drives.
type Session struct {
	Viewer *viewer.Viewer
	Store  *store.Store
	Layers *layers.Control
	Info   *panels.InfoDisplay
	Stats  *panels.RegionStats
	Header *panels.FITSHeaderViewer
	Zoom   *panels.ZoomControl
	Alerts *Alerts
}

// Alerts forwards store alerts to the console once it is attached. Until
// then they are dropped.
type Alerts struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// Alert implements store.Alerter.
func (a *Alerts) Alert(message string) {
	a.mu.Lock()
	send := a.send
	a.mu.Unlock()
	if send != nil {
		send(alertMsg(message))
	}
}

func (a *Alerts) attach(send func(tea.Msg)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.send = send
}

type (
	viewChangedMsg  struct{}
	pickChangedMsg  struct{}
	panelChangedMsg struct{}
	busyMsg         bool
	alertMsg        string
	actionDoneMsg   struct{ err error }
	sessionEndedMsg struct{ err error }
)

// SessionEnded reports the end of the viewer's event loop to the console.
func SessionEnded(err error) tea.Msg {
	return sessionEndedMsg{err: err}
}

type tab int

const (
	tabInfo tab = iota
	tabLayers
	tabStats
	tabHeader
	tabCount
)

var tabNames = [tabCount]string{"Info", "Layers", "Stats", "Header"}

// New creates the console model. ctx bounds every command it sends.
func New(ctx context.Context, s Session) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.DefaultTheme.Accent

	return &Model{
		ctx:     ctx,
		session: s,
		keys:    DefaultKeyMap,
		help:    help.New(),
		spinner: sp,
	}
}

// Attach subscribes the model to store, viewer and panel notifications,
// delivering them through send (normally tea.Program.Send).
func (m *Model) Attach(send func(tea.Msg)) {
	s := m.session
	if s.Store != nil {
		s.Store.Subscribe(func() { send(viewChangedMsg{}) })
		s.Store.SubscribePick(func() { send(pickChangedMsg{}) })
	}
	if s.Viewer != nil {
		s.Viewer.OnBusyChange(func(busy bool) { send(busyMsg(busy)) })
	}
	changed := func() { send(panelChangedMsg{}) }
	if s.Info != nil {
		s.Info.OnChange(changed)
	}
	if s.Stats != nil {
		s.Stats.OnChange(changed)
	}
	if s.Header != nil {
		s.Header.OnChange(changed)
	}
	if s.Alerts != nil {
		s.Alerts.attach(send)
	}
}
