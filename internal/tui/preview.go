package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/Zuo-Peng/chatlens/internal/render"
	"github.com/Zuo-Peng/chatlens/internal/search"
)

// previewRequest identifies one rendering of the preview panel. It is
// comparable, so it doubles as the key of the panel's current content.
type previewRequest struct {
	runID     string
	author    string
	msgID     int
	noStats   bool
	wholeChat bool
}

func (m model) previewFor(r search.Result) previewRequest {
	return previewRequest{
		runID:     r.RunID,
		author:    r.Author,
		msgID:     r.MsgID,
		noStats:   !m.showStats,
		wholeChat: m.wholeChat,
	}
}

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	req     previewRequest
	content string
	hitLine int
	err     error
}

// loadPreviewCmd renders the preview off the update loop. In whole-chat
// scope the author filter is dropped and the window centers on the hit.
func loadPreviewCmd(db *index.DB, req previewRequest, query string, width int) tea.Cmd {
	return func() tea.Msg {
		author := req.author
		if req.wholeChat {
			author = ""
		}
		content, hitLine, err := render.RenderAuthor(db, req.runID, author, render.Options{
			HitMsgID: req.msgID,
			Context:  -1,
			Width:    width,
			Query:    query,
			NoStats:  req.noStats,
		})
		return previewRenderedMsg{req: req, content: content, hitLine: hitLine, err: err}
	}
}
