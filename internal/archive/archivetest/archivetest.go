// Package archivetest builds in-memory export archives for tests.
package archivetest

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
)

// File is one archive entry.
type File struct {
	Name string
	Body string
}

// Zip writes files, in order, into a ZIP archive.
func Zip(t testing.TB, files ...File) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatalf("create %s: %v", f.Name, err)
		}
		if _, err := w.Write([]byte(f.Body)); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// Msg is a message in a generated conversation record.
type Msg struct {
	Sender string
	At     int64
}

// Export lays out entries under an "instagram-<user>-2024-05-01" root.
type Export struct {
	Root  string
	files []File
}

// NewExport starts an export for username.
func NewExport(username string) *Export {
	return &Export{Root: "instagram-" + username + "-2024-05-01"}
}

// Raw adds an entry at path relative to the export root.
func (e *Export) Raw(path, body string) *Export {
	e.files = append(e.files, File{Name: e.Root + "/" + path, Body: body})
	return e
}

// Conversation adds inbox/<folder>/message_1.json with the given participants and messages.
func (e *Export) Conversation(folder string, participants []string, msgs ...Msg) *Export {
	type participant struct {
		Name string `json:"name"`
	}
	type message struct {
		SenderName  string `json:"sender_name"`
		TimestampMs int64  `json:"timestamp_ms"`
		Content     string `json:"content"`
	}
	rec := struct {
		Participants []participant `json:"participants"`
		Messages     []message     `json:"messages"`
	}{
		Participants: []participant{},
		Messages:     []message{},
	}
	for _, p := range participants {
		rec.Participants = append(rec.Participants, participant{Name: p})
	}
	for i, m := range msgs {
		rec.Messages = append(rec.Messages, message{SenderName: m.Sender, TimestampMs: m.At, Content: fmt.Sprintf("m%d", i)})
	}
	body, _ := json.Marshal(rec)
	return e.Raw("your_instagram_activity/messages/inbox/"+folder+"/message_1.json", string(body))
}

// Followers adds followers_1.json holding n entries.
func (e *Export) Followers(n int) *Export {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{"string_list_data": []map[string]any{{"value": fmt.Sprintf("f%d", i)}}}
	}
	body, _ := json.Marshal(items)
	return e.Raw("connections/followers_and_following/followers_1.json", string(body))
}

// Following adds following.json holding n entries.
func (e *Export) Following(n int) *Export {
	return e.keyedList("connections/followers_and_following/following.json", "relationships_following", n)
}

// CloseFriends adds close_friends.json holding n entries.
func (e *Export) CloseFriends(n int) *Export {
	return e.keyedList("connections/followers_and_following/close_friends.json", "relationships_close_friends", n)
}

// StoryLikes adds story_likes.json with one entry per title.
func (e *Export) StoryLikes(titles ...string) *Export {
	items := make([]map[string]any, len(titles))
	for i, t := range titles {
		items[i] = map[string]any{"title": t}
	}
	body, _ := json.Marshal(map[string]any{"story_activities_story_likes": items})
	return e.Raw("your_instagram_activity/story_interactions/story_likes.json", string(body))
}

func (e *Export) keyedList(path, key string, n int) *Export {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{"title": fmt.Sprintf("u%d", i)}
	}
	body, _ := json.Marshal(map[string]any{key: items})
	return e.Raw(path, string(body))
}

// Files returns the entries added so far.
func (e *Export) Files() []File {
	return e.files
}

// Bytes zips the export.
func (e *Export) Bytes(t testing.TB) []byte {
	t.Helper()
	return Zip(t, e.files...)
}
