package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatlens/internal/aggregate"
	"github.com/Zuo-Peng/chatlens/internal/search"
)

func TestFormatHitLine(t *testing.T) {
	req := require.New(t)

	lines := formatHitLine(search.Result{
		Author:    "Alice",
		Timestamp: "2024-05-01T10:00:00Z",
		Snippet:   "pizza >>>tonight<<<?",
	}, 40, true)
	req.Len(lines, 2)
	req.Contains(lines[0], "Alice")
	req.Contains(lines[0], "05-01")
	req.Contains(lines[1], "pizza tonight?")
	req.NotContains(lines[1], ">>>")

	lines = formatHitLine(search.Result{Author: "Bob"}, 40, false)
	req.True(strings.HasPrefix(lines[0], "  "))
}

func TestFormatAuthorLine(t *testing.T) {
	req := require.New(t)

	stats := &aggregate.Stats{TotalMessages: 42, Language: "en"}
	stats.MessagesByHour[21] = 30
	stats.MessagesByHour[9] = 12

	lines := formatAuthorLine(search.Result{Author: "Alice", MsgID: -1, Stats: stats}, 40, false)
	req.Len(lines, 2)
	req.Contains(lines[0], "Alice")
	req.Contains(lines[0], "42 msgs")
	req.Contains(lines[0], "peak 21h")
	req.Contains(lines[1], "█")
	req.Contains(lines[1], "en")
}

func TestAuthorStyleIsStable(t *testing.T) {
	req := require.New(t)
	req.Equal(authorStyle("Alice").GetForeground(), authorStyle("Alice").GetForeground())
	req.Contains(authorPalette, authorStyle("Bob").GetForeground())
}

func TestAdjustListScroll(t *testing.T) {
	m := model{cursor: 7}
	m.adjustListScroll(6) // three entries visible
	require.Equal(t, 5, m.listOffset)

	m.cursor = 2
	m.adjustListScroll(6)
	require.Equal(t, 2, m.listOffset)
}

func authorResults() []search.Result {
	return []search.Result{
		{RunID: "r", Author: "Alice", MsgID: -1, Stats: &aggregate.Stats{TotalMessages: 2}},
		{RunID: "r", Author: "Bob", MsgID: -1, Stats: &aggregate.Stats{TotalMessages: 1}},
	}
}

func TestUpdate_ResultsAndNavigation(t *testing.T) {
	req := require.New(t)

	m := model{mode: modeList, input: newQueryInput("", ""), showStats: true}
	updated, _ := m.Update(resultsMsg{results: authorResults()})
	m = updated.(model)
	req.Len(m.results, 2)
	req.Equal(0, m.cursor)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(model)
	req.Equal(1, m.cursor)

	// results for another query are ignored
	updated, _ = m.Update(resultsMsg{query: "zzz"})
	m = updated.(model)
	req.Len(m.results, 2)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(model)
	req.NotNil(cmd)
	req.True(m.quitting)
	req.Equal("Bob", m.chosen.Author)
}

func TestUpdate_PreviewToggles(t *testing.T) {
	req := require.New(t)

	m := model{mode: modeList, input: newQueryInput("", ""), showStats: true, ready: true}
	updated, _ := m.Update(resultsMsg{results: authorResults()})
	m = updated.(model)

	want := previewRequest{runID: "r", author: "Alice", msgID: -1}
	req.Equal(want, m.previewFor(m.results[0]))

	updated, _ = m.Update(previewRenderedMsg{req: want, content: "Alice @ Friends"})
	m = updated.(model)
	req.NotNil(m.shown)
	req.Nil(m.loadCurrentPreview(), "already showing this preview")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = updated.(model)
	req.False(m.showStats)
	req.NotNil(cmd, "stats toggle re-renders the preview")
	req.True(m.previewFor(m.results[0]).noStats)

	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = updated.(model)
	req.True(m.wholeChat)
	req.NotNil(cmd)

	// a render for the old toggles is stale and leaves the panel alone
	updated, _ = m.Update(previewRenderedMsg{req: want, content: "old"})
	m = updated.(model)
	req.Equal(want, *m.shown)
	req.NotEqual(want, m.previewFor(m.results[0]))
}

func TestStatusBar(t *testing.T) {
	req := require.New(t)

	m := model{mode: modeList, title: "Friends [run-1]", results: authorResults(), showStats: true}
	bar := m.statusBar()
	req.Contains(bar, "Friends [run-1]")
	req.Contains(bar, "2 authors")
	req.Contains(bar, "stats on")
	req.Contains(bar, "C-t stats")

	m.wholeChat = true
	m.showStats = false
	bar = m.statusBar()
	req.Contains(bar, "chat")
	req.Contains(bar, "stats off")
}
