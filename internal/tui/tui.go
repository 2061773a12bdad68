package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/Zuo-Peng/chatlens/internal/render"
	"github.com/Zuo-Peng/chatlens/internal/search"
)

const debounceDelay = 200 * time.Millisecond

type browseMode int

const (
	modeSearch browseMode = iota // message hits for a query
	modeList                     // authors of one run
)

type resultsMsg struct {
	query   string
	results []search.Result
	err     error
}

type debounceMsg struct {
	query string
}

type model struct {
	db    *index.DB
	opts  search.Options
	mode  browseMode
	title string

	query      string
	input      textinput.Model
	results    []search.Result
	cursor     int
	listOffset int

	preview viewport.Model
	shown   *previewRequest
	// showStats and wholeChat apply to every preview until toggled again.
	showStats bool
	wholeChat bool

	width    int
	height   int
	ready    bool
	quitting bool
	chosen   *search.Result
}

func newQueryInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.PromptStyle = stylePrompt
	ti.TextStyle = stylePrompt
	ti.CharLimit = 256
	ti.SetValue(value)
	ti.Focus()
	return ti
}

func newModel(db *index.DB, opts search.Options, mode browseMode, query string) model {
	placeholder := "Search messages..."
	if mode == modeList {
		placeholder = "Filter authors..."
	}
	return model{
		db:        db,
		opts:      opts,
		mode:      mode,
		title:     runTitle(db, opts.RunID),
		query:     query,
		input:     newQueryInput(placeholder, query),
		preview:   viewport.New(0, 0),
		showStats: true,
	}
}

// runTitle names the browsed run in the status bar.
func runTitle(db *index.DB, runID string) string {
	if runID == "" {
		return "all runs"
	}
	run, err := db.GetRun(runID)
	if err != nil || run == nil {
		return runID
	}
	id := run.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s [%s]", run.ChatName, id)
}

// Run browses the message hits for query and blocks until the user quits.
// Choosing a hit copies its author's summary to the clipboard.
func Run(db *index.DB, query string, opts search.Options) error {
	return run(db, newModel(db, opts, modeSearch, query))
}

// RunList browses the authors of opts.RunID, most active first.
func RunList(db *index.DB, opts search.Options) error {
	return run(db, newModel(db, opts, modeList, ""))
}

func run(db *index.DB, m model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	if fm := final.(model); fm.chosen != nil {
		return copySummary(db, fm.chosen.RunID, fm.chosen.Author)
	}
	return nil
}

// copySummary copies the one-line author summary to the clipboard, or
// prints it when no clipboard is available.
func copySummary(db *index.DB, runID, author string) error {
	stats, err := db.GetAuthorStats(runID, author)
	if err != nil {
		return err
	}
	line := render.Summary(author, *stats)

	if err := clipboard.WriteAll(line); err != nil {
		fmt.Println(line)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", line)
	return nil
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	switch {
	case m.mode == modeList:
		cmds = append(cmds, m.doListAuthors(""))
	case m.query != "":
		cmds = append(cmds, m.doSearch(m.query))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.preview = viewport.New(m.previewWidth(), m.panelHeight())
		m.shown = nil
		return m, m.loadCurrentPreview()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case debounceMsg:
		if msg.query != m.query {
			return m, nil
		}
		if m.mode == modeList {
			return m, m.doListAuthors(msg.query)
		}
		return m, m.doSearch(msg.query)

	case resultsMsg:
		return m.applyResults(msg)

	case previewRenderedMsg:
		return m.applyPreview(msg), nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.CopySummary):
		if r, ok := m.selected(); ok {
			m.chosen = &r
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, keys.Prev):
		cmd := m.move(-1)
		return m, cmd

	case key.Matches(msg, keys.Next):
		cmd := m.move(1)
		return m, cmd

	case key.Matches(msg, keys.ToggleStats):
		m.showStats = !m.showStats
		return m, m.loadCurrentPreview()

	case key.Matches(msg, keys.ToggleScope):
		m.wholeChat = !m.wholeChat
		return m, m.loadCurrentPreview()

	case key.Matches(msg, keys.ScrollUp):
		m.preview.LineUp(m.panelHeight() / 2)
		return m, nil

	case key.Matches(msg, keys.ScrollDown):
		m.preview.LineDown(m.panelHeight() / 2)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != m.query {
		m.query = q
		return m, tea.Batch(cmd, m.debounce(q))
	}
	return m, cmd
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready || len(m.results) == 0 {
		return m, nil
	}

	region, idx := m.hitTest(msg.X, msg.Y)
	wheelUp := msg.Button == tea.MouseButtonWheelUp
	wheelDown := msg.Button == tea.MouseButtonWheelDown

	switch region {
	case regionList:
		switch {
		case wheelUp:
			m.listOffset = max(m.listOffset-1, 0)
		case wheelDown:
			maxOffset := max(len(m.results)-m.panelHeight()/linesPerItem, 0)
			m.listOffset = min(m.listOffset+1, maxOffset)
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if idx >= 0 && idx < len(m.results) && idx != m.cursor {
				cmd := m.move(idx - m.cursor)
				return m, cmd
			}
		}
	case regionPreview:
		if wheelUp || wheelDown {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// move shifts the cursor by delta entries, clamped to the list.
func (m *model) move(delta int) tea.Cmd {
	next := min(max(m.cursor+delta, 0), len(m.results)-1)
	if next < 0 || next == m.cursor {
		return nil
	}
	m.cursor = next
	m.adjustListScroll(m.panelHeight())
	return m.loadCurrentPreview()
}

func (m model) selected() (search.Result, bool) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return search.Result{}, false
	}
	return m.results[m.cursor], true
}

func (m model) applyResults(msg resultsMsg) (tea.Model, tea.Cmd) {
	if msg.query != m.query {
		return m, nil
	}
	m.cursor, m.listOffset = 0, 0
	m.shown = nil
	if msg.err != nil {
		m.results = nil
		m.preview.SetContent("Error: " + msg.err.Error())
		return m, nil
	}
	m.results = msg.results
	if len(m.results) == 0 {
		m.preview.SetContent("")
		return m, nil
	}
	return m, m.loadCurrentPreview()
}

func (m model) applyPreview(msg previewRenderedMsg) model {
	r, ok := m.selected()
	if !ok || m.previewFor(r) != msg.req {
		return m // stale
	}
	if msg.err != nil {
		m.preview.SetContent("Preview error: " + msg.err.Error())
	} else {
		m.preview.SetContent(msg.content)
		if msg.hitLine > 0 {
			m.preview.SetYOffset(msg.hitLine)
		} else {
			m.preview.GotoTop()
		}
	}
	req := msg.req
	m.shown = &req
	return m
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW, previewW, panelH := m.listWidth(), m.previewWidth(), m.panelHeight()

	list := styleListFrame.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	preview := stylePreviewFrame.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, list, preview)
	return lipgloss.JoinVertical(lipgloss.Left, m.input.View(), panels, m.statusBar())
}

// layout: 40% list, 60% preview, each minus its border and padding

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(m.width*40/100-4, 20)
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width*60/100-4, 20)
}

// panelHeight leaves room for the input row, the status bar and borders.
func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-6, 5)
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel and, for the list, the
// entry index under the pointer.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	top := 2 // input row + top border
	if y < top || y >= top+m.panelHeight() {
		return regionNone, -1
	}
	lw := m.listWidth()
	switch {
	case x >= 1 && x <= lw:
		return regionList, m.listOffset + (y-top)/linesPerItem
	case x > lw+2:
		return regionPreview, -1
	}
	return regionNone, -1
}

func (m model) statusBar() string {
	count := fmt.Sprintf("%d hits", len(m.results))
	if m.mode == modeList {
		count = fmt.Sprintf("%d authors", len(m.results))
	}
	scope := "author"
	if m.wholeChat {
		scope = "chat"
	}
	stats := "stats on"
	if !m.showStats {
		stats = "stats off"
	}
	parts := []string{m.title, count, scope, stats, keys.helpLine()}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) doSearch(query string) tea.Cmd {
	db, opts := m.db, m.opts
	opts.Query = query
	return func() tea.Msg {
		if strings.TrimSpace(query) == "" {
			return resultsMsg{query: query}
		}
		results, err := search.Search(db, opts)
		return resultsMsg{query: query, results: results, err: err}
	}
}

func (m model) doListAuthors(filter string) tea.Cmd {
	db, runID := m.db, m.opts.RunID
	return func() tea.Msg {
		results, err := search.ListAuthors(db, runID, filter)
		return resultsMsg{query: filter, results: results, err: err}
	}
}

func (m model) debounce(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{query: query}
	})
}

// loadCurrentPreview renders the selected entry unless the panel already
// shows it with the current toggles.
func (m model) loadCurrentPreview() tea.Cmd {
	r, ok := m.selected()
	if !ok || !m.ready {
		return nil
	}
	req := m.previewFor(r)
	if m.shown != nil && *m.shown == req {
		return nil
	}
	return loadPreviewCmd(m.db, req, m.query, m.previewWidth())
}
