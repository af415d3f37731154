package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	barFilled = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	barMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	barOver   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	barEmpty  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// BarCells returns how many of width cells a level fills.
func BarCells(level, width int) int {
	if width <= 0 || level <= 0 {
		return 0
	}
	if level >= 100 {
		return width
	}
	return (level*width + 50) / 100
}

// RenderBar draws a level as a bar of width cells.
func RenderBar(level, width int, muted bool) string {
	width = max(width, 0)
	filled := BarCells(level, width)

	style := barFilled
	switch {
	case muted:
		style = barMuted
	case level > 100:
		style = barOver
	}

	return style.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", width-filled))
}

// PlainBar draws a level without colour, for logs and status bars.
func PlainBar(level, width int) string {
	width = max(width, 0)
	filled := BarCells(level, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
