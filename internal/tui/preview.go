package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/igfa/internal/index"
	"github.com/Zuo-Peng/igfa/internal/render"
	"github.com/Zuo-Peng/igfa/internal/search"
)

// previewRenderedMsg is sent when an async detail render completes.
type previewRenderedMsg struct {
	name    string
	content string
	err     error
}

// loadPreviewCmd returns a tea.Cmd that renders the contact detail async.
func loadPreviewCmd(db *index.DB, r search.Result, width int) tea.Cmd {
	return func() tea.Msg {
		rank, err := search.RankOf(db, r.Name)
		if err != nil {
			return previewRenderedMsg{name: r.Name, err: err}
		}
		content := render.ContactDetail(r, rank, render.Options{Color: true, Width: width})
		return previewRenderedMsg{name: r.Name, content: content}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
