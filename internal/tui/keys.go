package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Prev        key.Binding
	Next        key.Binding
	CopySummary key.Binding
	ToggleStats key.Binding
	ToggleScope key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Prev: key.NewBinding(
		key.WithKeys("up", "ctrl+k"),
		key.WithHelp("up/dn", "author"),
	),
	Next: key.NewBinding(
		key.WithKeys("down", "ctrl+j"),
	),
	CopySummary: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "copy summary"),
	),
	// ToggleStats shows or hides the author statistics above the messages.
	ToggleStats: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("C-t", "stats"),
	),
	// ToggleScope switches the preview between the selected author's
	// messages and the whole chat around the hit.
	ToggleScope: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "author/chat"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u/C-d", "scroll"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
}

// helpLine lists the bindings that carry help text.
func (k keyMap) helpLine() string {
	var parts []string
	for _, b := range []key.Binding{k.Prev, k.ToggleStats, k.ToggleScope, k.ScrollUp, k.CopySummary, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " | ")
}
