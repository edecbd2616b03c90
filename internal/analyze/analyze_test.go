package analyze

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/Zuo-Peng/igfa/internal/archive"
	"github.com/Zuo-Peng/igfa/internal/archive/archivetest"
	"github.com/Zuo-Peng/igfa/internal/parse"
)

type Msg = archivetest.Msg

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func analyze(t *testing.T, data []byte) *Report {
	t.Helper()
	r, err := New(testLogger()).Analyze(data)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return r
}

// chat alternates between a contact and the account owner, n messages, one
// second apart.
func chat(contact, owner string, n int) []Msg {
	msgs := make([]Msg, n)
	for i := range msgs {
		sender := contact
		if i%2 == 1 {
			sender = owner
		}
		msgs[i] = Msg{Sender: sender, At: int64(i+1) * 1000}
	}
	return msgs
}

func TestAnalyze_ContactTable(t *testing.T) {
	data := archivetest.NewExport("bob").
		Conversation("alice_1", []string{"Alice", "bob"},
			Msg{Sender: "Alice", At: 1000}, Msg{Sender: "bob", At: 5000}, Msg{Sender: "Alice", At: 6000}).
		Conversation("carol_2", []string{"Carol", "bob"}, chat("Carol", "bob", 5)...).
		Conversation("group_3", []string{"Alice", "Carol", "bob"}, chat("Alice", "bob", 4)...).
		Conversation("iguser_4", []string{"Instagram User", "bob"}, chat("Instagram User", "bob", 9)...).
		Conversation("alice_5", []string{"Alice", "bob"}, chat("Alice", "bob", 20)...).
		Conversation("dan_6", []string{"Dan", "bob"}, Msg{Sender: "Dan", At: 1000}, Msg{Sender: "Dan", At: 2000}).
		Conversation("unknown_7", []string{"Unknown", "bob"}, chat("Unknown", "bob", 7)...).
		Conversation("empty_8", nil, chat("x", "bob", 7)...).
		Raw("your_instagram_activity/messages/inbox/instagramuser_77/photos/1.jpg", "jpg").
		Bytes(t)

	r := analyze(t, data)

	want := []ContactRow{
		{Name: "Carol", MessageCount: 5, AvgReply: 1, FastestReply: 1, LongestReply: 1},
		{Name: "Alice", MessageCount: 3, AvgReply: 2.5, FastestReply: 1, LongestReply: 4},
	}
	if !reflect.DeepEqual(r.Contacts, want) {
		t.Errorf("Contacts = %+v, want %+v", r.Contacts, want)
	}
	if r.GroupChats != 1 {
		t.Errorf("GroupChats = %d, want 1", r.GroupChats)
	}
	if r.DeactivatedAccounts != 1 {
		t.Errorf("DeactivatedAccounts = %d, want 1", r.DeactivatedAccounts)
	}
	if r.ConversationFiles != 8 {
		t.Errorf("ConversationFiles = %d, want 8", r.ConversationFiles)
	}
	if r.Account.Username != "bob" || r.Account.HexUsername != "626f62" {
		t.Errorf("Account = %+v", r.Account)
	}
	if r.SessionID == "" {
		t.Error("SessionID is empty")
	}
	if len(r.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %+v, want none", r.Diagnostics)
	}
}

func TestAnalyze_TiesKeepDiscoveryOrder(t *testing.T) {
	data := archivetest.NewExport("bob").
		Conversation("zed", []string{"Zed", "bob"}, chat("Zed", "bob", 4)...).
		Conversation("amy", []string{"Amy", "bob"}, chat("Amy", "bob", 6)...).
		Conversation("kim", []string{"Kim", "bob"}, chat("Kim", "bob", 4)...).
		Conversation("lea", []string{"Lea", "bob"}, chat("Lea", "bob", 4)...).
		Bytes(t)

	r := analyze(t, data)

	var got []string
	for _, c := range r.Contacts {
		got = append(got, c.Name)
	}
	want := []string{"Amy", "Zed", "Kim", "Lea"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("contact order = %v, want %v", got, want)
	}
}

func TestAnalyze_DecodesNames(t *testing.T) {
	data := archivetest.NewExport("bob").
		Conversation("andre", []string{"AndrÃ©", "bob"}, chat("AndrÃ©", "bob", 2)...).
		Conversation("andre_2", []string{"André", "bob"}, chat("André", "bob", 10)...).
		Bytes(t)

	r := analyze(t, data)

	if len(r.Contacts) != 1 || r.Contacts[0].Name != "André" || r.Contacts[0].MessageCount != 2 {
		t.Errorf("Contacts = %+v, want one André row with 2 messages", r.Contacts)
	}
}

func TestAnalyze_Relationships(t *testing.T) {
	data := archivetest.NewExport("bob").
		Followers(3).
		Following(2).
		CloseFriends(1).
		StoryLikes("yui", "xan", "yui", "Unknown", "abe", "xan").
		Bytes(t)

	r := analyze(t, data)

	if want := (Relationships{Followers: 3, Following: 2, CloseFriends: 1}); r.Relationships != want {
		t.Errorf("Relationships = %+v, want %+v", r.Relationships, want)
	}
	wantLikes := []StoryLikeCount{{"xan", 2}, {"yui", 2}, {"abe", 1}}
	if !reflect.DeepEqual(r.StoryLikes, wantLikes) {
		t.Errorf("StoryLikes = %+v, want %+v", r.StoryLikes, wantLikes)
	}
	if r.Resources.Followers != 1 || r.Resources.StoryLikes != 1 {
		t.Errorf("Resources = %+v", r.Resources)
	}
}

func TestAnalyze_StoryLikeCandidates(t *testing.T) {
	const dir = "your_instagram_activity/story_interactions/"
	tests := []struct {
		name   string
		export *archivetest.Export
		want   []StoryLikeCount
	}{
		{
			name: "invalid candidate falls through",
			export: archivetest.NewExport("bob").
				Raw(dir+"old_story_likes.json", `{"story_activities_story_likes": [`).
				StoryLikes("amy"),
			want: []StoryLikeCount{{"amy", 1}},
		},
		{
			name: "first valid candidate wins",
			export: archivetest.NewExport("bob").
				Raw(dir+"old_story_likes.json", `{"story_activities_story_likes": [{"title": "kim"}]}`).
				StoryLikes("amy"),
			want: []StoryLikeCount{{"kim", 1}},
		},
		{
			name: "wrong shape is retained as empty",
			export: archivetest.NewExport("bob").
				Raw(dir+"old_story_likes.json", `{"likes": []}`).
				StoryLikes("amy"),
			want: []StoryLikeCount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := analyze(t, tt.export.Bytes(t))
			if !reflect.DeepEqual(r.StoryLikes, tt.want) {
				t.Errorf("StoryLikes = %+v, want %+v", r.StoryLikes, tt.want)
			}
		})
	}
}

func TestAnalyze_MalformedEntriesAreIsolated(t *testing.T) {
	const inbox = "your_instagram_activity/messages/inbox/"
	data := archivetest.NewExport("bob").
		Raw(inbox+"broken/message_1.json", `{"participants": [`).
		Raw(inbox+"nomsgs/message_1.json", `{"participants": [{"name": "Zed"}]}`).
		Raw(inbox+"noparts/message_1.json", `{"messages": [{"sender_name": "A", "timestamp_ms": 1}]}`).
		Raw(inbox+"badts/message_1.json",
			`{"participants": [{"name": "Kim"}, {"name": "bob"}], "messages": [
				{"sender_name": "Kim", "timestamp_ms": "soon"},
				{"sender_name": "bob", "timestamp_ms": 2000}]}`).
		Conversation("amy", []string{"Amy", "bob"}, chat("Amy", "bob", 3)...).
		Raw("connections/followers_and_following/followers_1.json", `{"oops": true}`).
		Bytes(t)

	r := analyze(t, data)

	if len(r.Contacts) != 1 || r.Contacts[0].Name != "Amy" {
		t.Errorf("Contacts = %+v, want only Amy", r.Contacts)
	}
	if r.ConversationFiles != 3 {
		t.Errorf("ConversationFiles = %d, want 3", r.ConversationFiles)
	}
	if r.Relationships.Followers != 0 {
		t.Errorf("Followers = %d, want 0", r.Relationships.Followers)
	}

	kinds := make(map[string]DiagnosticKind)
	for _, d := range r.Diagnostics {
		kinds[d.Entry[strings.Index(d.Entry, "/")+1:]] = d.Kind
	}
	want := map[string]DiagnosticKind{
		inbox + "broken/message_1.json":                       KindMalformedEntry,
		inbox + "nomsgs/message_1.json":                       KindMissingField,
		inbox + "noparts/message_1.json":                      KindMissingField,
		"connections/followers_and_following/followers_1.json": KindMissingField,
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("diagnostics = %v, want %v", kinds, want)
	}
}

func TestAnalyze_TerminalErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    func(t *testing.T) []byte
		wantErr error
	}{
		{
			name:    "not a zip",
			data:    func(*testing.T) []byte { return []byte("hello") },
			wantErr: archive.ErrInvalidArchive,
		},
		{
			name:    "no entries",
			data:    func(t *testing.T) []byte { return archivetest.Zip(t) },
			wantErr: archive.ErrEmptyArchive,
		},
		{
			name: "unknown root",
			data: func(t *testing.T) []byte {
				return archivetest.Zip(t, archivetest.File{Name: "facebook-bob/x.json", Body: "{}"})
			},
			wantErr: archive.ErrAccountNotDetected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(testLogger()).Analyze(tt.data(t))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Analyze() error = %v, want %v", err, tt.wantErr)
			}
			if r != nil {
				t.Errorf("Analyze() report = %+v, want nil", r)
			}
		})
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	data := archivetest.NewExport("bob").
		Conversation("amy", []string{"Amy", "bob"}, chat("Amy", "bob", 6)...).
		Conversation("kim", []string{"Kim", "bob"}, Msg{Sender: "Kim", At: 5000}, Msg{Sender: "bob", At: 1000}, Msg{Sender: "Kim", At: 9000}).
		Followers(2).
		StoryLikes("amy", "kim", "amy").
		Bytes(t)

	a := New(testLogger())
	first, err := a.Analyze(data)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	second, err := a.Analyze(data)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if first.SessionID == second.SessionID {
		t.Error("sessions share an ID")
	}
	first.SessionID, second.SessionID = "", ""
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reports differ:\n%+v\n%+v", first, second)
	}
}

func TestAnalyze_EmptyExportMarshalsEmptyLists(t *testing.T) {
	data := archivetest.NewExport("bob").Raw("personal_information/info.json", "{}").Bytes(t)

	r := analyze(t, data)

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, key := range []string{`"contacts":[]`, `"story_likes":[]`, `"diagnostics":[]`} {
		if !strings.Contains(string(b), key) {
			t.Errorf("report JSON %s lacks %s", b, key)
		}
	}
}

func TestAggregate_MissingParticipantsRecorded(t *testing.T) {
	sess := NewSession(testLogger())
	convs := []*parse.Conversation{
		{Entry: "a", Messages: []parse.Message{{}, {}}},
		{Entry: "b", HasParticipants: true, Participants: []parse.Participant{{}, {Name: "bob", HasName: true}}},
	}

	rows, groups := Aggregate(sess, convs)

	if len(rows) != 0 || groups != 0 {
		t.Errorf("Aggregate() = %v, %d; want no rows", rows, groups)
	}
	diags := sess.Diagnostics()
	if len(diags) != 1 || diags[0].Entry != "a" || diags[0].Kind != KindMissingField {
		t.Errorf("Diagnostics = %+v", diags)
	}
}

func TestContactRow_Labels(t *testing.T) {
	tests := []struct {
		row      ContactRow
		style    string
		activity string
	}{
		{ContactRow{AvgReply: 12, MessageCount: 40}, "Quick Responder", "Casual Contact"},
		{ContactRow{AvgReply: 299.9, MessageCount: 500}, "Quick Responder", "Casual Contact"},
		{ContactRow{AvgReply: 300, MessageCount: 501}, "Regular Responder", "Good Chat"},
		{ContactRow{AvgReply: 3599, MessageCount: 1000}, "Regular Responder", "Good Chat"},
		{ContactRow{AvgReply: 3600, MessageCount: 1001}, "Thoughtful Responder", "Very Active"},
	}

	for _, tt := range tests {
		if got := tt.row.ResponderStyle(); got != tt.style {
			t.Errorf("ResponderStyle(%v) = %q, want %q", tt.row.AvgReply, got, tt.style)
		}
		if got := tt.row.ActivityLevel(); got != tt.activity {
			t.Errorf("ActivityLevel(%d) = %q, want %q", tt.row.MessageCount, got, tt.activity)
		}
	}
}

func TestSpeedCategory(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{100, "Super Fast Friend"},
		{80, "Super Fast Friend"},
		{79.9, "Quick Friend"},
		{60, "Quick Friend"},
		{40, "Average Friend"},
		{39.99, "Slow & Steady Friend"},
		{0, "Slow & Steady Friend"},
	}

	for _, tt := range tests {
		if got := SpeedCategory(tt.pct); got != tt.want {
			t.Errorf("SpeedCategory(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestTallyStoryLikes(t *testing.T) {
	got := TallyStoryLikes([]string{"b", "a", "c", "b", "a", "b"})
	want := []StoryLikeCount{{"b", 3}, {"a", 2}, {"c", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TallyStoryLikes() = %+v, want %+v", got, want)
	}
}
