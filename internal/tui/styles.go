package tui

import (
	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("12")  // bright blue
	colorMuted  = lipgloss.Color("240") // gray
	colorCursor = lipgloss.Color("11")  // bright yellow
	colorFrame  = lipgloss.Color("238") // dark gray

	// authorPalette follows the ANSI colors of the preview renderer, so a
	// speaker has the same color in the list and in the messages.
	authorPalette = []lipgloss.Color{"12", "10", "13", "14", "11"}

	stylePrompt = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleCursor = lipgloss.NewStyle().Foreground(colorCursor).Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)

	// author list columns
	styleCount = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	stylePeak  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleHours = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Faint(true)

	styleListFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFrame)

	stylePreviewFrame = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent)

	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)
)

func authorStyle(name string) lipgloss.Style {
	c := authorPalette[xxhash.Sum64String(name)%uint64(len(authorPalette))]
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
