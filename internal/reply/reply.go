// Package reply estimates reply latency from the timestamps of a conversation.
package reply

import (
	"errors"
	"sort"

	"github.com/Zuo-Peng/igfa/internal/parse"
)

// ErrUnordered is returned when a message cannot be placed in time order.
var ErrUnordered = errors.New("messages cannot be ordered by timestamp")

// Stats holds reply latencies in seconds. All fields are zero when no reply
// was observed.
type Stats struct {
	Avg     float64 `json:"avg"`
	Fastest float64 `json:"fastest"`
	Longest float64 `json:"longest"`
	Samples int     `json:"samples"`
}

// Estimate orders msgs by timestamp and measures every hand-over between two
// different senders. Pairs where either side lacks a sender or timestamp are
// skipped, as are same-sender pairs and pairs that are not strictly later.
// A message without timestamp_ms orders as time zero.
//
// msgs is not modified.
func Estimate(msgs []parse.Message) (Stats, error) {
	if len(msgs) < 2 {
		return Stats{}, nil
	}
	for _, m := range msgs {
		if m.Malformed {
			return Stats{}, ErrUnordered
		}
	}

	sorted := make([]parse.Message, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampMs < sorted[j].TimestampMs
	})

	var st Stats
	var total float64
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if !prev.HasSender || !cur.HasSender || !prev.HasTimestamp || !cur.HasTimestamp {
			continue
		}
		if prev.SenderName == cur.SenderName {
			continue
		}
		delta := cur.TimestampMs - prev.TimestampMs
		if delta <= 0 {
			continue
		}

		secs := float64(delta) / 1000
		if st.Samples == 0 || secs < st.Fastest {
			st.Fastest = secs
		}
		if secs > st.Longest {
			st.Longest = secs
		}
		total += secs
		st.Samples++
	}

	if st.Samples == 0 {
		return Stats{}, nil
	}
	st.Avg = total / float64(st.Samples)
	return st, nil
}
