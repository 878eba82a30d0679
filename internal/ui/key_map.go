package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next    key.Binding
	prev    key.Binding
	up      key.Binding
	down    key.Binding
	play    key.Binding
	compact key.Binding
	add     key.Binding
	remove  key.Binding
	clear   key.Binding
	rename  key.Binding
	pick    key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	help    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:    key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab/→", "next playlist")),
		prev:    key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab/←", "prev playlist")),
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		play:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		compact: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compact")),
		add:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new playlist")),
		remove:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		clear:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		rename:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		pick:    key.NewBinding(key.WithKeys("p", "/"), key.WithHelp("p", "find playlist")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.play, k.compact, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.up, k.down},
		{k.play, k.compact, k.pick},
		{k.add, k.remove, k.clear, k.rename},
		{k.help, k.quit},
	}
}
