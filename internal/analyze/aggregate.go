package analyze

import (
	"fmt"
	"sort"

	"github.com/Zuo-Peng/igfa/internal/parse"
	"github.com/Zuo-Peng/igfa/internal/reply"
)

const (
	instagramUser = "Instagram User"
	unknownName   = "Unknown"
)

// Aggregate builds the contact table from conversation records in discovery
// order and counts group chats.
//
// A record with more than two participants is a group chat. Records with no
// participants, or whose first participant is "Instagram User", are skipped.
// The first participant names the contact; a name already accepted, or
// "Unknown", is skipped, so the first conversation with a contact wins.
// Rows with no measurable reply time are dropped and the rest are sorted by
// message count, highest first, keeping discovery order on ties.
func Aggregate(sess *Session, convs []*parse.Conversation) (rows []ContactRow, groupChats int) {
	seen := make(map[string]struct{})
	rows = make([]ContactRow, 0, len(convs))

	for _, conv := range convs {
		if !conv.HasParticipants {
			sess.Record(conv.Entry, &parse.EntryError{
				Entry: conv.Entry,
				Op:    "aggregate",
				Err:   fmt.Errorf("%w: participants", parse.ErrMissingField),
			})
			continue
		}
		if len(conv.Participants) > 2 {
			groupChats++
			continue
		}
		if len(conv.Participants) == 0 {
			continue
		}

		first := conv.Participants[0]
		if first.HasName && first.Name == instagramUser {
			continue
		}
		raw := unknownName
		if first.HasName {
			raw = first.Name
		}
		if raw == unknownName {
			continue
		}
		name := parse.DecodeName(raw)
		if _, dup := seen[name]; dup {
			sess.Logger.Debug("duplicate contact", "entry", conv.Entry, "name", name)
			continue
		}

		st, err := reply.Estimate(conv.Messages)
		if err != nil {
			sess.Logger.Debug("reply times defaulted", "entry", conv.Entry, "error", err)
		}

		seen[name] = struct{}{}
		rows = append(rows, ContactRow{
			Name:         name,
			MessageCount: len(conv.Messages),
			AvgReply:     st.Avg,
			FastestReply: st.Fastest,
			LongestReply: st.Longest,
		})
	}

	kept := rows[:0]
	for _, r := range rows {
		if r.AvgReply != 0 {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].MessageCount > kept[j].MessageCount
	})
	return kept, groupChats
}
