package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the TUI.
type KeyMap struct {
	Increase     key.Binding
	Decrease     key.Binding
	IncreaseMore key.Binding
	DecreaseMore key.Binding
	ToggleMute   key.Binding
	Refresh      key.Binding

	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increase, k.Decrease, k.ToggleMute, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Increase, k.Decrease, k.IncreaseMore, k.DecreaseMore},
		{k.ToggleMute, k.Refresh},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings. Mute is disabled unless
// the daemon supports it.
func DefaultKeyMap(canMute bool) KeyMap {
	k := KeyMap{
		Increase: key.NewBinding(
			key.WithKeys("+", "=", "up", "k", "right", "l"),
			key.WithHelp("+/↑", "increase"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("-", "_", "down", "j", "left", "h"),
			key.WithHelp("-/↓", "decrease"),
		),
		IncreaseMore: key.NewBinding(
			key.WithKeys("pgup", "K"),
			key.WithHelp("pgup/K", "increase ×4"),
		),
		DecreaseMore: key.NewBinding(
			key.WithKeys("pgdown", "J"),
			key.WithHelp("pgdn/J", "decrease ×4"),
		),
		ToggleMute: key.NewBinding(
			key.WithKeys("m", "/"),
			key.WithHelp("m", "toggle mute"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
	k.ToggleMute.SetEnabled(canMute)
	return k
}
