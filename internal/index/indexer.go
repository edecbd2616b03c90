package index

import (
	"fmt"

	"github.com/Zuo-Peng/igfa/internal/analyze"
)

type Stats struct {
	Contacts   int
	StoryLikes int
}

func (s Stats) String() string {
	return fmt.Sprintf("contacts=%d story_likes=%d", s.Contacts, s.StoryLikes)
}

// Build opens a fresh database and loads report into it.
func Build(report *analyze.Report) (*DB, Stats, error) {
	db, err := Open()
	if err != nil {
		return nil, Stats{}, err
	}
	stats, err := Load(db, report)
	if err != nil {
		db.Close()
		return nil, Stats{}, err
	}
	return db, stats, nil
}

// Load replaces the database contents with report. Contact positions follow
// the table order, starting at 1.
func Load(db *DB, report *analyze.Report) (Stats, error) {
	var stats Stats

	tx, err := db.Raw().Begin()
	if err != nil {
		return stats, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM contacts"); err != nil {
		return stats, fmt.Errorf("clear contacts: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM story_likes"); err != nil {
		return stats, fmt.Errorf("clear story likes: %w", err)
	}

	contactStmt, err := tx.Prepare(
		`INSERT INTO contacts (position, name, message_count, avg_reply, fastest_reply, longest_reply)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return stats, err
	}
	defer contactStmt.Close()

	for i, c := range report.Contacts {
		if _, err := contactStmt.Exec(i+1, c.Name, c.MessageCount, c.AvgReply, c.FastestReply, c.LongestReply); err != nil {
			return stats, fmt.Errorf("insert contact %q: %w", c.Name, err)
		}
		stats.Contacts++
	}

	likeStmt, err := tx.Prepare("INSERT INTO story_likes (position, name, likes) VALUES (?, ?, ?)")
	if err != nil {
		return stats, err
	}
	defer likeStmt.Close()

	for i, s := range report.StoryLikes {
		if _, err := likeStmt.Exec(i+1, s.Name, s.Likes); err != nil {
			return stats, fmt.Errorf("insert story like %q: %w", s.Name, err)
		}
		stats.StoryLikes++
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit: %w", err)
	}
	return stats, nil
}
