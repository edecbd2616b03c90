package analyze

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zuo-Peng/igfa/internal/archive"
	"github.com/Zuo-Peng/igfa/internal/parse"
	"github.com/Zuo-Peng/igfa/internal/scan"
)

// Analyzer runs the export pipeline. It holds no per-upload state and is safe
// for concurrent use.
type Analyzer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// Analyze opens the export in data and builds its Report. It fails only when
// the archive is unreadable, empty, or has no recognizable export root; entry
// level problems end up in Report.Diagnostics.
func (a *Analyzer) Analyze(data []byte) (*Report, error) {
	sess := NewSession(a.logger)

	arc, err := archive.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer arc.Close()

	names := arc.Names()
	id, err := archive.IdentifyAccount(names)
	if err != nil {
		return nil, fmt.Errorf("identify account: %w", err)
	}
	sess.Logger = sess.Logger.With("account", id.Username)

	sel := scan.Select(id.Root, names)
	sess.Logger.Info("scanned export",
		"entries", len(names),
		"conversations", len(sel.Conversations),
		"story_likes", len(sel.StoryLikes),
	)

	report := &Report{
		SessionID: sess.ID,
		Account:   id,
		Entries:   len(names),
		Resources: ResourceCounts{
			Conversations: len(sel.Conversations),
			StoryLikes:    len(sel.StoryLikes),
			Followers:     len(sel.Followers),
			Following:     len(sel.Following),
			CloseFriends:  len(sel.CloseFriends),
		},
		DeactivatedAccounts: sel.DeactivatedCount(),
	}

	convs := readConversations(sess, arc, sel.Conversations)
	report.ConversationFiles = len(convs)
	report.Contacts, report.GroupChats = Aggregate(sess, convs)

	report.Relationships = Relationships{
		Followers:    countLast(sess, arc, sel.Followers, parse.CountFollowers),
		Following:    countLast(sess, arc, sel.Following, parse.CountFollowing),
		CloseFriends: countLast(sess, arc, sel.CloseFriends, parse.CountCloseFriends),
	}
	report.StoryLikes = TallyStoryLikes(readStoryLikes(sess, arc, sel.StoryLikes))
	report.Diagnostics = sess.Diagnostics()

	sess.Logger.Info("analysis complete",
		"contacts", len(report.Contacts),
		"group_chats", report.GroupChats,
		"diagnostics", len(report.Diagnostics),
	)
	return report, nil
}

func readConversations(sess *Session, arc *archive.Archive, entries []scan.Entry) []*parse.Conversation {
	convs := make([]*parse.Conversation, 0, len(entries))
	for _, e := range entries {
		data, err := arc.ReadEntry(e.Name)
		if err != nil {
			sess.Record(e.Name, err)
			continue
		}
		conv, err := parse.ParseConversation(e.Name, data)
		if err != nil {
			sess.Record(e.Name, err)
			continue
		}
		convs = append(convs, conv)
	}
	return convs
}

// countLast counts the last entry of a relationship class. A failure counts
// as zero.
func countLast(sess *Session, arc *archive.Archive, entries []scan.Entry, count func(string, []byte) (int, error)) int {
	if len(entries) == 0 {
		return 0
	}
	name := entries[len(entries)-1].Name
	data, err := arc.ReadEntry(name)
	if err != nil {
		sess.Record(name, err)
		return 0
	}
	n, err := count(name, data)
	if err != nil {
		sess.Record(name, err)
		return 0
	}
	return n
}

// readStoryLikes returns the titles of the first candidate that is valid
// JSON. A candidate with the wrong shape still ends the search and yields no
// titles.
func readStoryLikes(sess *Session, arc *archive.Archive, entries []scan.Entry) []string {
	for _, e := range entries {
		data, err := arc.ReadEntry(e.Name)
		if err != nil {
			sess.Record(e.Name, err)
			continue
		}
		titles, err := parse.ParseStoryLikes(e.Name, data)
		if errors.Is(err, parse.ErrMalformedEntry) {
			sess.Record(e.Name, err)
			continue
		}
		if err != nil {
			sess.Record(e.Name, err)
		}
		return titles
	}
	return nil
}
