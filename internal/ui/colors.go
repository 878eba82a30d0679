package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette is a small stylesheet of named [lipgloss.Style] fields.
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	tab      lipgloss.Style
	active   lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	selected lipgloss.Style
}

// NewPalette builds the palette from the accent, success, error, warning and muted colors.
func NewPalette(accent, success, failure, warning, muted string) *Palette {
	return &Palette{
		title:    NewBold(accent).MarginBottom(1),
		ok:       NewBold(success),
		err:      NewBold(failure),
		warn:     NewStyle(warning),
		help:     NewEm(muted),
		tab:      NewStyle(muted).Padding(0, 1),
		active:   NewBold("#FFFFFF").Background(lipgloss.Color(accent)).Padding(0, 1),
		header:   NewBold(accent).Padding(0, 1),
		cell:     lipgloss.NewStyle().Padding(0, 1),
		selected: NewBold(success).Padding(0, 1),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
