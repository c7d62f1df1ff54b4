package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	nextTab  key.Binding
	prevTab  key.Binding
	rangeKey key.Binding
	refresh  key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		nextTab:  key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab/l", "next tab")),
		prevTab:  key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab/h", "prev tab")),
		rangeKey: key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1/2/3", "time range")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextTab, k.rangeKey, k.refresh, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down},
		{k.nextTab, k.prevTab},
		{k.rangeKey, k.refresh, k.quit},
	}
}
