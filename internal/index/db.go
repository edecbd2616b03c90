package index

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE contacts (
    position      INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    message_count INTEGER NOT NULL,
    avg_reply     REAL NOT NULL,
    fastest_reply REAL NOT NULL,
    longest_reply REAL NOT NULL
);

CREATE INDEX contacts_by_avg ON contacts (avg_reply, position);

CREATE TABLE story_likes (
    position INTEGER PRIMARY KEY,
    name     TEXT NOT NULL,
    likes    INTEGER NOT NULL
);
`

// DB is a session-scoped SQLite database. It lives in memory and disappears
// on Close.
type DB struct {
	db *sql.DB
}

func Open() (*DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// every pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

func (d *DB) ContactCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM contacts").Scan(&n)
	return n, err
}

func (d *DB) StoryLikeCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM story_likes").Scan(&n)
	return n, err
}
