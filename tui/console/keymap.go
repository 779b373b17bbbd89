package console

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the console keybindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding

	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ZoomReset key.Binding
	Center    key.Binding
	Update    key.Binding

	PanUp        key.Binding
	PanDown      key.Binding
	PanLeft      key.Binding
	PanRight     key.Binding
	PanUpLeft    key.Binding
	PanUpRight   key.Binding
	PanDownLeft  key.Binding
	PanDownRight key.Binding

	Toggle   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Delete   key.Binding
	Apply    key.Binding
	Revert   key.Binding

	Blue  key.Binding
	Green key.Binding
	Red   key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap is the default set of keybindings.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next panel"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "prev panel"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	ZoomReset: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "reset zoom"),
	),
	Center: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "center"),
	),
	Update: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "redraw"),
	),
	PanUp: key.NewBinding(
		key.WithKeys("shift+up"),
		key.WithHelp("S-↑", "pan up"),
	),
	PanDown: key.NewBinding(
		key.WithKeys("shift+down"),
		key.WithHelp("S-↓", "pan down"),
	),
	PanLeft: key.NewBinding(
		key.WithKeys("shift+left"),
		key.WithHelp("S-←", "pan left"),
	),
	PanRight: key.NewBinding(
		key.WithKeys("shift+right"),
		key.WithHelp("S-→", "pan right"),
	),
	PanUpLeft: key.NewBinding(
		key.WithKeys("home"),
		key.WithHelp("home", "pan up-left"),
	),
	PanUpRight: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "pan up-right"),
	),
	PanDownLeft: key.NewBinding(
		key.WithKeys("end"),
		key.WithHelp("end", "pan down-left"),
	),
	PanDownRight: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "pan down-right"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "toggle layer"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("K"),
		key.WithHelp("K", "move layer up"),
	),
	MoveDown: key.NewBinding(
		key.WithKeys("J"),
		key.WithHelp("J", "move layer down"),
	),
	Delete: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "delete layer"),
	),
	Apply: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "apply layers"),
	),
	Revert: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "revert layers"),
	),
	Blue: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "blue plane"),
	),
	Green: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "green plane"),
	),
	Red: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "red plane"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns keybindings to be shown in the compact help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.ZoomIn, k.ZoomOut, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.ZoomReset, k.Center, k.Update},
		{k.PanUp, k.PanDown, k.PanLeft, k.PanRight},
		{k.PanUpLeft, k.PanUpRight, k.PanDownLeft, k.PanDownRight},
		{k.Up, k.Down, k.Toggle, k.MoveUp, k.MoveDown, k.Delete, k.Apply, k.Revert},
		{k.Blue, k.Green, k.Red, k.NextTab, k.PrevTab, k.Help, k.Quit},
	}
}
