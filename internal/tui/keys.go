package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Overview      key.Binding
	Subcategories key.Binding
	Budget        key.Binding
	Projection    key.Binding
	Next          key.Binding
	Prev          key.Binding
	Down          key.Binding
	Up            key.Binding
	Top           key.Binding
	Reload        key.Binding
	AutoReload    key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Overview:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overview")),
		Subcategories: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "subcategories")),
		Budget:        key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "budget")),
		Projection:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "projection")),
		Next:          key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/tab", "next tab")),
		Prev:          key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←", "prev tab")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/↓", "scroll down")),
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/↑", "scroll up")),
		Top:           key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		AutoReload:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "toggle auto-reload")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Reload, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Overview, k.Subcategories, k.Budget, k.Projection},
		{k.Next, k.Prev, k.Down, k.Up, k.Top},
		{k.Reload, k.AutoReload, k.Help, k.Quit},
	}
}
