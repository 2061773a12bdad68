package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatlens/internal/render"
	"github.com/Zuo-Peng/chatlens/internal/search"
)

// linesPerItem is the number of terminal lines each entry occupies.
const linesPerItem = 2

// renderList renders the left panel: authors or search hits, with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		label := "No matches"
		if m.mode == modeList {
			label = "No authors"
		}
		return styleMuted.
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(label)
	}

	var lines []string
	for i := m.listOffset; i < len(m.results); i++ {
		if len(lines)+linesPerItem > height {
			break
		}
		r := m.results[i]
		if r.Stats != nil {
			lines = append(lines, formatAuthorLine(r, width, i == m.cursor)...)
		} else {
			lines = append(lines, formatHitLine(r, width, i == m.cursor)...)
		}
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func cursorPrefix(selected bool) string {
	if selected {
		return styleCursor.Render("> ")
	}
	return "  "
}

func fit(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if width < 0 {
		width = 0
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "")
	}
	return s
}

// formatAuthorLine formats an author entry:
//
//	line 1: [>] author  123 msgs  peak 21h
//	line 2:    hourly sparkline  language
func formatAuthorLine(r search.Result, width int, selected bool) []string {
	s := r.Stats
	count := fmt.Sprintf("%d msgs", s.TotalMessages)
	peak := fmt.Sprintf("peak %02dh", s.PeakHour())
	cols := runewidth.StringWidth(count) + runewidth.StringWidth(peak) + 2

	line1 := cursorPrefix(selected) +
		authorStyle(r.Author).Render(fit(r.Author, width-2-cols-1)) + " " +
		styleCount.Render(count) + " " + stylePeak.Render(peak)

	line2 := "    " + styleHours.Render(render.Sparkline(s.MessagesByHour))
	if s.Language != "" {
		line2 += " " + styleMuted.Render(s.Language)
	}
	return []string{line1, line2}
}

// formatHitLine formats a search hit:
//
//	line 1: [>] author  MM-DD
//	line 2:    snippet (dimmed)
func formatHitLine(r search.Result, width int, selected bool) []string {
	date := r.Timestamp
	if len(date) >= 10 {
		date = date[5:10]
	}

	line1 := cursorPrefix(selected) + authorStyle(r.Author).Render(fit(r.Author, width-2-6))
	if date != "" {
		line1 += " " + styleMuted.Render(date)
	}

	snippet := strings.ReplaceAll(r.Snippet, ">>>", "")
	snippet = strings.ReplaceAll(snippet, "<<<", "")
	line2 := "    " + styleMuted.Render(fit(snippet, width-4))

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := max(listHeight/linesPerItem, 1)
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
