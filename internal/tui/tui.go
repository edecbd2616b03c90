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
	"github.com/dustin/go-humanize"

	"github.com/Zuo-Peng/igfa/internal/analyze"
	"github.com/Zuo-Peng/igfa/internal/index"
	"github.com/Zuo-Peng/igfa/internal/render"
	"github.com/Zuo-Peng/igfa/internal/search"
)

const debounceDelay = 200 * time.Millisecond

type tuiMode int

const (
	modeAll tuiMode = iota
	modeFriends
	modeSlow
	modeCount
)

func (m tuiMode) String() string {
	switch m {
	case modeFriends:
		return "Top Friends"
	case modeSlow:
		return "Slow Repliers"
	default:
		return "All Contacts"
	}
}

// Options controls the Top Friends and Slow Repliers views.
type Options struct {
	MinMessages int
	TopN        int
}

// message types

type resultsMsg struct {
	mode    tuiMode
	query   string
	results []search.Result
	err     error
}

type debounceTickMsg struct {
	query string
}

// model

type model struct {
	db          *index.DB
	report      *analyze.Report
	opts        Options
	mode        tuiMode
	query       string
	results     []search.Result
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewKey  string // contact name, to avoid duplicate renders
	width       int
	height      int
	ready       bool
	quitting    bool
	selected    *search.Result
}

func initialModel(db *index.DB, report *analyze.Report, opts Options) model {
	ti := textinput.New()
	ti.Placeholder = "Filter contacts..."
	ti.Focus()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	return model{
		db:          db,
		report:      report,
		opts:        opts,
		filterInput: ti,
		preview:     viewport.New(0, 0),
	}
}

// Run starts the dashboard and blocks until it exits.
// If the user selects a contact, a one-line summary is copied to the clipboard.
func Run(db *index.DB, report *analyze.Report, opts Options) error {
	m := initialModel(db, report, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	if fm.selected != nil {
		return copySummary(*fm.selected)
	}
	return nil
}

// summaryLine describes a contact in one line.
func summaryLine(r search.Result) string {
	return fmt.Sprintf("%s: %s messages, avg reply %s, fastest %s (%s, %s)",
		r.Name,
		humanize.Comma(int64(r.MessageCount)),
		render.FormatDuration(r.AvgReply),
		render.FormatDuration(r.FastestReply),
		r.ResponderStyle(),
		r.ActivityLevel(),
	)
}

func copySummary(r search.Result) error {
	line := summaryLine(r)
	if err := clipboard.WriteAll(line); err != nil {
		fmt.Printf("%s\n", line)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", line)
	return nil
}

// Init triggers the initial contact load.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.doQuery(m.mode, m.query))
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewKey = ""
		if len(m.results) > 0 && m.cursor < len(m.results) {
			cmds = append(cmds, loadPreviewCmd(m.db, m.results[m.cursor], m.previewWidth()))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			if len(m.results) > 0 && m.cursor < len(m.results) {
				r := m.results[m.cursor]
				m.selected = &r
				m.quitting = true
				return m, tea.Quit
			}

		case key.Matches(msg, keys.NextMode):
			m.mode = (m.mode + 1) % modeCount
			return m, m.doQuery(m.mode, m.query)

		case key.Matches(msg, keys.PrevMode):
			m.mode = (m.mode + modeCount - 1) % modeCount
			return m, m.doQuery(m.mode, m.query)

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.results)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}

		// Pass remaining keys to text input
		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		newQuery := m.filterInput.Value()
		if newQuery != m.query {
			m.query = newQuery
			cmds = append(cmds, scheduleDebouncedQuery(newQuery))
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if !m.ready || len(m.results) == 0 {
			return m, nil
		}

		region, itemIdx := m.hitTest(msg.X, msg.Y)

		switch {
		case region == regionList && msg.Button == tea.MouseButtonWheelUp:
			if m.listOffset > 0 {
				m.listOffset--
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonWheelDown:
			visibleItems := m.panelHeight() / linesPerItem
			maxOffset := len(m.results) - visibleItems
			if maxOffset < 0 {
				maxOffset = 0
			}
			if m.listOffset < maxOffset {
				m.listOffset++
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if itemIdx >= 0 && itemIdx < len(m.results) && m.cursor != itemIdx {
				m.cursor = itemIdx
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case region == regionPreview && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
			var vpCmd tea.Cmd
			m.preview, vpCmd = m.preview.Update(msg)
			if vpCmd != nil {
				cmds = append(cmds, vpCmd)
			}
			return m, tea.Batch(cmds...)
		}

		return m, nil

	case debounceTickMsg:
		// Only query if the filter hasn't changed since the tick was scheduled
		if msg.query == m.query {
			cmds = append(cmds, m.doQuery(m.mode, msg.query))
		}
		return m, tea.Batch(cmds...)

	case resultsMsg:
		if msg.query != m.query || msg.mode != m.mode {
			return m, nil // stale
		}
		if msg.err != nil {
			m.results = nil
			m.cursor = 0
			m.listOffset = 0
			m.preview.SetContent("Error: " + msg.err.Error())
			m.previewKey = ""
			return m, nil
		}
		m.results = msg.results
		m.cursor = 0
		m.listOffset = 0
		if len(m.results) > 0 {
			cmds = append(cmds, m.loadCurrentPreview())
		} else {
			m.preview.SetContent("")
			m.previewKey = ""
		}
		return m, tea.Batch(cmds...)

	case previewRenderedMsg:
		if msg.name == m.previewKey {
			return m, nil
		}
		if len(m.results) > 0 && m.cursor < len(m.results) && m.results[m.cursor].Name != msg.name {
			return m, nil // stale preview
		}
		if msg.err != nil {
			m.preview.SetContent("Detail error: " + msg.err.Error())
		} else {
			m.preview.SetContent(msg.content)
			m.preview.GotoTop()
		}
		m.previewKey = msg.name
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

// View renders the full dashboard.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	inputRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderTabs(), " ", m.filterInput.View())

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, m.statusBar())
}

func (m model) renderTabs() string {
	var tabs []string
	for mode := modeAll; mode < modeCount; mode++ {
		if mode == m.mode {
			tabs = append(tabs, styleTabActive.Render(mode.String()))
		} else {
			tabs = append(tabs, styleTabInactive.Render(mode.String()))
		}
	}
	return strings.Join(tabs, "")
}

// helper methods

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract input row (1) + status bar (1) + borders (4)
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	pH := m.panelHeight()
	contentYStart := 2 // input row (1) + top border (1)
	contentYEnd := contentYStart + pH - 1

	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	listBoxRight := lw + 1 // col 0=border, 1..lw=content, lw+1=border

	if x >= 1 && x <= lw {
		return regionList, m.listOffset + (relY / linesPerItem)
	}

	if x > listBoxRight+1 {
		return regionPreview, -1
	}

	return regionNone, -1
}

func (m model) statusBar() string {
	var parts []string
	parts = append(parts, "@"+m.report.Account.Username)
	parts = append(parts, fmt.Sprintf("%d contacts", len(m.results)))
	parts = append(parts, fmt.Sprintf("%d group chats", m.report.GroupChats))
	parts = append(parts, "tab switch view")
	parts = append(parts, "C-u/C-d detail")
	parts = append(parts, "Enter copy summary")
	parts = append(parts, "Esc quit")
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

// doQuery loads the contacts shown in mode, filtered by name.
func (m model) doQuery(mode tuiMode, query string) tea.Cmd {
	db := m.db
	opts := m.opts
	return func() tea.Msg {
		var results []search.Result
		var err error
		switch mode {
		case modeFriends:
			results, err = search.TopFriends(db, search.InsightOptions{MoreThan: opts.MinMessages, Limit: opts.TopN})
			results = filterByName(results, query)
		case modeSlow:
			results, err = search.SlowRepliers(db, search.InsightOptions{MoreThan: opts.MinMessages, Limit: opts.TopN})
			results = filterByName(results, query)
		default:
			results, err = search.Contacts(db, search.Options{Name: query})
		}
		return resultsMsg{mode: mode, query: query, results: results, err: err}
	}
}

func scheduleDebouncedQuery(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) loadCurrentPreview() tea.Cmd {
	if len(m.results) == 0 || m.cursor >= len(m.results) {
		return nil
	}
	r := m.results[m.cursor]
	if r.Name == m.previewKey {
		return nil
	}
	return loadPreviewCmd(m.db, r, m.previewWidth())
}
