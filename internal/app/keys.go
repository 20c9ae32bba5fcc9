package app

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	View  key.Binding
	Pause key.Binding
	Clear key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.View, k.Pause, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.View, k.Pause, k.Clear},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	View: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "grid/ring"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p", " "),
		key.WithHelp("p/space", "pause"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear beacons"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}
