package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines global and pane-specific bindings.
type KeyMap struct {
	Quit        key.Binding
	ToggleFocus key.Binding
	Up          key.Binding
	Down        key.Binding
	PageDown    key.Binding
	PageUp      key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Toggle      key.Binding
	CollapseAll key.Binding
	NextFile    key.Binding
	PrevFile    key.Binding
	CycleView   key.Binding
	Raw         key.Binding
	Copy        key.Binding
	HideFiles   key.Binding
	Help        key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ToggleFocus: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus")),
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "move up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "move down")),
		PageDown:    key.NewBinding(key.WithKeys("ctrl+f", "pgdown"), key.WithHelp("ctrl+f", "page down")),
		PageUp:      key.NewBinding(key.WithKeys("ctrl+b", "pgup"), key.WithHelp("ctrl+b", "page up")),
		Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "collapse/expand file")),
		CollapseAll: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse/expand all")),
		NextFile:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next file")),
		PrevFile:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous file")),
		CycleView:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "split/unified")),
		Raw:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "raw/diff")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy patch")),
		HideFiles:   key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "hide files")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}
