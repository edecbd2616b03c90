package search

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Zuo-Peng/igfa/internal/analyze"
	"github.com/Zuo-Peng/igfa/internal/index"
)

// ErrContactNotFound is returned by RankOf for a name not in the table.
var ErrContactNotFound = errors.New("contact not found")

// Result is a contact row with its 1-based position in the contact table.
type Result struct {
	Position int `json:"position" yaml:"position"`
	analyze.ContactRow `yaml:",inline"`
}

type Options struct {
	Name        string // case-insensitive substring, "" = all
	MinMessages int    // message_count >= MinMessages
	Limit       int    // 0 = no limit
}

// Contacts lists contacts in table order.
func Contacts(db *index.DB, opts Options) ([]Result, error) {
	rows, err := db.Raw().Query(
		`SELECT position, name, message_count, avg_reply, fastest_reply, longest_reply
		 FROM contacts
		 WHERE message_count >= ?
		 ORDER BY position`,
		opts.MinMessages,
	)
	if err != nil {
		return nil, fmt.Errorf("contacts query: %w", err)
	}
	defer rows.Close()

	all, err := scanResults(rows)
	if err != nil {
		return nil, err
	}

	// SQLite LIKE only folds ASCII, and names are often not ASCII
	needle := strings.ToLower(opts.Name)
	results := make([]Result, 0, len(all))
	for _, r := range all {
		if needle != "" && !strings.Contains(strings.ToLower(r.Name), needle) {
			continue
		}
		results = append(results, r)
		if opts.Limit > 0 && len(results) >= opts.Limit {
			break
		}
	}
	return results, nil
}

type InsightOptions struct {
	MoreThan int // message_count > MoreThan
	Limit    int
}

// TopFriends returns the fastest repliers among contacts with more than
// MoreThan messages. Ties keep table order.
func TopFriends(db *index.DB, opts InsightOptions) ([]Result, error) {
	return ranked(db, opts, "ASC")
}

// SlowRepliers returns the slowest repliers among contacts with more than
// MoreThan messages. Ties keep table order.
func SlowRepliers(db *index.DB, opts InsightOptions) ([]Result, error) {
	return ranked(db, opts, "DESC")
}

func ranked(db *index.DB, opts InsightOptions, dir string) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}

	query := fmt.Sprintf(`
		SELECT position, name, message_count, avg_reply, fastest_reply, longest_reply
		FROM contacts
		WHERE message_count > ?
		ORDER BY avg_reply %s, position
		LIMIT ?
	`, dir)

	rows, err := db.Raw().Query(query, opts.MoreThan, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("insight query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// Rank places a contact among all contacts ordered by average reply time,
// fastest first.
type Rank struct {
	Position   int     `json:"position" yaml:"position"`
	Total      int     `json:"total" yaml:"total"`
	Percentile float64 `json:"percentile" yaml:"percentile"`
	Category   string  `json:"category" yaml:"category"`
}

func RankOf(db *index.DB, name string) (Rank, error) {
	var r Rank
	err := db.Raw().QueryRow(`
		SELECT pos, total FROM (
			SELECT name,
			       ROW_NUMBER() OVER (ORDER BY avg_reply, position) AS pos,
			       COUNT(*) OVER () AS total
			FROM contacts
		) WHERE name = ?`,
		name,
	).Scan(&r.Position, &r.Total)
	if err == sql.ErrNoRows {
		return Rank{}, fmt.Errorf("%w: %q", ErrContactNotFound, name)
	}
	if err != nil {
		return Rank{}, fmt.Errorf("rank query: %w", err)
	}

	r.Percentile = (1 - float64(r.Position)/float64(r.Total)) * 100
	r.Category = analyze.SpeedCategory(r.Percentile)
	return r, nil
}

// Summary holds table-wide figures. MostActive and Fastest are nil for an
// empty table.
type Summary struct {
	Contacts      int     `json:"contacts" yaml:"contacts"`
	TotalMessages int     `json:"total_messages" yaml:"total_messages"`
	MeanAvgReply  float64 `json:"mean_avg_reply_seconds" yaml:"mean_avg_reply_seconds"`
	MostActive    *Result `json:"most_active,omitempty" yaml:"most_active,omitempty"`
	Fastest       *Result `json:"fastest,omitempty" yaml:"fastest,omitempty"`
}

func Summarize(db *index.DB) (Summary, error) {
	var s Summary
	err := db.Raw().QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(message_count), 0), COALESCE(AVG(avg_reply), 0) FROM contacts",
	).Scan(&s.Contacts, &s.TotalMessages, &s.MeanAvgReply)
	if err != nil {
		return s, fmt.Errorf("summary query: %w", err)
	}
	if s.Contacts == 0 {
		return s, nil
	}

	if s.MostActive, err = first(db, "ORDER BY message_count DESC, position"); err != nil {
		return s, err
	}
	if s.Fastest, err = first(db, "ORDER BY avg_reply, position"); err != nil {
		return s, err
	}
	return s, nil
}

func first(db *index.DB, order string) (*Result, error) {
	rows, err := db.Raw().Query(
		"SELECT position, name, message_count, avg_reply, fastest_reply, longest_reply FROM contacts " + order + " LIMIT 1",
	)
	if err != nil {
		return nil, fmt.Errorf("summary query: %w", err)
	}
	defer rows.Close()

	results, err := scanResults(rows)
	if err != nil || len(results) == 0 {
		return nil, err
	}
	return &results[0], nil
}

// StoryLikes lists story owners by likes, most first. limit <= 0 means all.
func StoryLikes(db *index.DB, limit int) ([]analyze.StoryLikeCount, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Raw().Query("SELECT name, likes FROM story_likes ORDER BY position LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("story likes query: %w", err)
	}
	defer rows.Close()

	likes := []analyze.StoryLikeCount{}
	for rows.Next() {
		var s analyze.StoryLikeCount
		if err := rows.Scan(&s.Name, &s.Likes); err != nil {
			return nil, err
		}
		likes = append(likes, s)
	}
	return likes, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	results := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.Position, &r.Name, &r.MessageCount,
			&r.AvgReply, &r.FastestReply, &r.LongestReply,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
