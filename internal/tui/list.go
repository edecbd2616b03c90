package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/igfa/internal/render"
	"github.com/Zuo-Peng/igfa/internal/search"
)

// linesPerItem is the number of terminal lines each contact occupies.
const linesPerItem = 2

// renderList renders the left panel: contacts with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No contacts")
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatContactLine(r, width, i == m.cursor)...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatContactLine formats a contact as two lines:
//
//	line 1: [>] #pos name         messages
//	line 2:    avg / fastest / longest (dimmed)
func formatContactLine(r search.Result, width int, selected bool) []string {
	pos := fmt.Sprintf("#%-3d", r.Position)
	count := humanize.Comma(int64(r.MessageCount))

	nameMax := width - 2 - runewidth.StringWidth(pos) - 1 - len(count) - 1
	if nameMax < 0 {
		nameMax = 0
	}
	name := r.Name
	if runewidth.StringWidth(name) > nameMax {
		name = runewidth.Truncate(name, nameMax, "…")
	}
	name = runewidth.FillRight(name, nameMax)

	var line1 string
	if selected {
		line1 = styleListSelected.Render("> "+pos+" "+name) + " " + styleCount.Render(count)
	} else {
		line1 = "  " + pos + " " + styleListNormal.Render(name) + " " + styleCount.Render(count)
	}

	meta := fmt.Sprintf("avg %s · fastest %s · longest %s",
		render.FormatDuration(r.AvgReply),
		render.FormatDuration(r.FastestReply),
		render.FormatDuration(r.LongestReply),
	)
	metaMax := width - 4
	if metaMax < 0 {
		metaMax = 0
	}
	if runewidth.StringWidth(meta) > metaMax {
		meta = runewidth.Truncate(meta, metaMax, "")
	}
	line2 := "    " + styleListMeta.Render(meta)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}

// filterByName keeps results whose name contains query, ignoring case.
func filterByName(results []search.Result, query string) []search.Result {
	if query == "" {
		return results
	}
	q := strings.ToLower(query)
	out := make([]search.Result, 0, len(results))
	for _, r := range results {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}
