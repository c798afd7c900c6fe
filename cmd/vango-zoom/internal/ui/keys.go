package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the preview's keybindings
type KeyMap struct {
	Zoom       key.Binding
	Dismiss    key.Binding
	Outside    key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Resize     key.Binding
	Owner      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap is the preview's default keybindings
var DefaultKeyMap = KeyMap{
	Zoom: key.NewBinding(
		key.WithKeys("z", "enter"),
		key.WithHelp("z", "zoom / close button"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "escape key"),
	),
	Outside: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "click backdrop"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "scroll down"),
	),
	Resize: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "resize viewport"),
	),
	Owner: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "owner accepts/refuses"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Zoom, k.Dismiss, k.ScrollDown, k.Resize, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Zoom, k.Dismiss, k.Outside},
		{k.ScrollUp, k.ScrollDown, k.Resize},
		{k.Owner, k.Help, k.Quit},
	}
}
