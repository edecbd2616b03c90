package render

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/igfa/internal/analyze"
	"github.com/Zuo-Peng/igfa/internal/search"
)

const (
	colorReset   = "\033[0m"
	colorHeader  = "\033[1;34m" // bold blue
	colorName    = "\033[1;32m" // bold green
	colorDim     = "\033[2m"
	colorWarn    = "\033[1;33m" // bold yellow
	colorBoldRed = "\033[1;31m"
)

type Options struct {
	Color bool // emit ANSI colors
	Width int  // wrap width for detail text (0 = no wrap)
}

func (o Options) paint(color, s string) string {
	if !o.Color {
		return s
	}
	return color + s + colorReset
}

// FormatDuration renders seconds as "45s", "2m 5s", "1h 0m 9s" or
// "3d 4h 0m 1s". Fractions are truncated and negative values print as 0s.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "N/A"
	}
	s := int64(seconds)
	switch {
	case s < 0:
		return "0s"
	case s < 60:
		return fmt.Sprintf("%ds", s)
	case s < 3600:
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	case s < 86400:
		return fmt.Sprintf("%dh %dm %ds", s/3600, s%3600/60, s%60)
	default:
		return fmt.Sprintf("%dd %dh %dm %ds", s/86400, s%86400/3600, s%3600/60, s%60)
	}
}

// fit pads or truncates s to exactly w display columns.
func fit(s string, w int) string {
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "…")
	}
	return runewidth.FillRight(s, w)
}

const nameWidth = 24

// ContactTable renders contacts as an aligned table.
func ContactTable(rows []search.Result, opts Options) string {
	if len(rows) == 0 {
		return opts.paint(colorDim, "(no contacts)") + "\n"
	}

	var b strings.Builder
	header := fmt.Sprintf("%4s  %s  %9s  %-14s %-14s %-14s",
		"#", fit("Name", nameWidth), "Messages", "Avg reply", "Fastest", "Longest")
	b.WriteString(opts.paint(colorHeader, header))
	b.WriteString("\n")

	for _, r := range rows {
		fmt.Fprintf(&b, "%4d  %s  %9s  %-14s %-14s %-14s\n",
			r.Position,
			opts.paint(colorName, fit(r.Name, nameWidth)),
			humanize.Comma(int64(r.MessageCount)),
			FormatDuration(r.AvgReply),
			FormatDuration(r.FastestReply),
			FormatDuration(r.LongestReply),
		)
	}
	return b.String()
}

// Report renders the overview of an analyzed export followed by contacts.
func Report(r *analyze.Report, sum search.Summary, contacts []search.Result, opts Options) string {
	var b strings.Builder
	section := func(title string) {
		b.WriteString(opts.paint(colorHeader, "=== "+title+" ==="))
		b.WriteString("\n")
	}

	section("Account")
	fmt.Fprintf(&b, "  Username: %s\n", r.Account.Username)
	fmt.Fprintf(&b, "  Export:   %s\n", r.Account.Root)
	fmt.Fprintf(&b, "  ID:       %s\n", r.Account.HexUsername)

	b.WriteString("\n")
	section("Overview")
	fmt.Fprintf(&b, "  Contacts:             %s\n", humanize.Comma(int64(sum.Contacts)))
	fmt.Fprintf(&b, "  Messages:             %s\n", humanize.Comma(int64(sum.TotalMessages)))
	fmt.Fprintf(&b, "  Mean avg reply:       %s\n", FormatDuration(sum.MeanAvgReply))
	if sum.MostActive != nil {
		fmt.Fprintf(&b, "  Most active chat:     %s (%s messages)\n",
			sum.MostActive.Name, humanize.Comma(int64(sum.MostActive.MessageCount)))
	}
	if sum.Fastest != nil {
		fmt.Fprintf(&b, "  Fastest replier:      %s (%s)\n", sum.Fastest.Name, FormatDuration(sum.Fastest.AvgReply))
	}
	fmt.Fprintf(&b, "  Group chats:          %s\n", humanize.Comma(int64(r.GroupChats)))
	fmt.Fprintf(&b, "  Deactivated accounts: %s\n", humanize.Comma(int64(r.DeactivatedAccounts)))
	fmt.Fprintf(&b, "  Followers:            %s\n", humanize.Comma(int64(r.Relationships.Followers)))
	fmt.Fprintf(&b, "  Following:            %s\n", humanize.Comma(int64(r.Relationships.Following)))
	fmt.Fprintf(&b, "  Close friends:        %s\n", humanize.Comma(int64(r.Relationships.CloseFriends)))

	b.WriteString("\n")
	section("Contacts")
	b.WriteString(ContactTable(contacts, opts))

	if len(r.Diagnostics) > 0 {
		b.WriteString("\n")
		b.WriteString(opts.paint(colorWarn, fmt.Sprintf("%d entries skipped (run 'igfa doctor' for details)", len(r.Diagnostics))))
		b.WriteString("\n")
	}
	return b.String()
}

// ContactDetail renders one contact with its reply-speed rank.
func ContactDetail(c search.Result, rank search.Rank, opts Options) string {
	var b strings.Builder
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
		}
	}

	writeLine(opts.paint(colorName, c.Name))
	writeLine(opts.paint(colorDim, strings.Repeat("-", runewidth.StringWidth(c.Name))))
	writeLine(fmt.Sprintf("Messages:      %s", humanize.Comma(int64(c.MessageCount))))
	writeLine(fmt.Sprintf("Avg reply:     %s", FormatDuration(c.AvgReply)))
	writeLine(fmt.Sprintf("Fastest reply: %s", FormatDuration(c.FastestReply)))
	writeLine(fmt.Sprintf("Longest reply: %s", FormatDuration(c.LongestReply)))
	writeLine("")
	writeLine(fmt.Sprintf("Style:         %s", c.ResponderStyle()))
	writeLine(fmt.Sprintf("Activity:      %s", c.ActivityLevel()))
	if rank.Total > 0 {
		writeLine(fmt.Sprintf("Speed rank:    #%d of %d (top %.1f%%)", rank.Position, rank.Total, rank.Percentile))
		writeLine(fmt.Sprintf("Category:      %s", opts.paint(colorBoldRed, rank.Category)))
	}
	return b.String()
}

// StoryLikes renders the story like tally.
func StoryLikes(likes []analyze.StoryLikeCount, opts Options) string {
	if len(likes) == 0 {
		return opts.paint(colorDim, "(no story likes)") + "\n"
	}

	var b strings.Builder
	b.WriteString(opts.paint(colorHeader, fmt.Sprintf("%4s  %s  %7s", "#", fit("Account", nameWidth), "Likes")))
	b.WriteString("\n")
	for i, l := range likes {
		fmt.Fprintf(&b, "%4d  %s  %7s\n", i+1, opts.paint(colorName, fit(l.Name, nameWidth)), humanize.Comma(int64(l.Likes)))
	}
	return b.String()
}

// Diagnostics lists skipped entries, one per line.
func Diagnostics(diags []analyze.Diagnostic, opts Options) string {
	if len(diags) == 0 {
		return "  none\n"
	}
	var b strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&b, "  %s %s\n", opts.paint(colorWarn, fmt.Sprintf("%-15s", d.Kind)), d.Entry)
		fmt.Fprintf(&b, "    %s\n", opts.paint(colorDim, d.Reason))
	}
	return b.String()
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}
