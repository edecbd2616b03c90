package scan

import (
	"sort"
	"strings"
)

// Resource classes an export entry can belong to.
const (
	ClassConversation = "conversation"
	ClassStoryLikes   = "story_likes"
	ClassFollowers    = "followers"
	ClassFollowing    = "following"
	ClassCloseFriends = "close_friends"
)

// deactivatedMarker prefixes inbox folders of accounts that no longer exist.
const deactivatedMarker = "instagramuser_"

type Entry struct {
	Name  string
	Class string
}

// Prefixes are the export paths the selector looks under.
type Prefixes struct {
	Inbox       string
	Stories     string
	Connections string
}

func PrefixesFor(root string) Prefixes {
	return Prefixes{
		Inbox:       root + "/your_instagram_activity/messages/inbox/",
		Stories:     root + "/your_instagram_activity/story_interactions/",
		Connections: root + "/connections/followers_and_following/",
	}
}

// Result groups the relevant entries of one export, each list in archive order.
type Result struct {
	Conversations []Entry
	StoryLikes    []Entry
	Followers     []Entry
	Following     []Entry
	CloseFriends  []Entry

	deactivated map[string]struct{}
}

// Deactivated returns the placeholder folder names, sorted.
func (r Result) Deactivated() []string {
	out := make([]string, 0, len(r.deactivated))
	for k := range r.deactivated {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r Result) DeactivatedCount() int {
	return len(r.deactivated)
}

// Select classifies entry names of the export rooted at root.
func Select(root string, names []string) Result {
	p := PrefixesFor(root)
	res := Result{deactivated: make(map[string]struct{})}

	for _, name := range names {
		switch {
		case strings.HasPrefix(name, p.Inbox):
			parts := strings.Split(name[len(p.Inbox):], "/")
			if len(parts) > 1 && strings.HasPrefix(parts[0], deactivatedMarker) {
				res.deactivated[parts[0]] = struct{}{}
			}
			if strings.HasSuffix(name, "message_1.json") {
				res.Conversations = append(res.Conversations, Entry{Name: name, Class: ClassConversation})
			}

		case strings.HasPrefix(name, p.Stories):
			if strings.HasSuffix(name, "story_likes.json") {
				res.StoryLikes = append(res.StoryLikes, Entry{Name: name, Class: ClassStoryLikes})
			}

		case strings.HasPrefix(name, p.Connections):
			switch {
			case strings.HasSuffix(name, "followers_1.json"):
				res.Followers = append(res.Followers, Entry{Name: name, Class: ClassFollowers})
			case strings.HasSuffix(name, "following.json"):
				res.Following = append(res.Following, Entry{Name: name, Class: ClassFollowing})
			case strings.HasSuffix(name, "close_friends.json"):
				res.CloseFriends = append(res.CloseFriends, Entry{Name: name, Class: ClassCloseFriends})
			}
		}
	}

	return res
}
