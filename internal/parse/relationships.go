package parse

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	followingKey    = "relationships_following"
	closeFriendsKey = "relationships_close_friends"
	storyLikesKey   = "story_activities_story_likes"
)

// unknownTitle marks story likes whose owner could not be resolved.
const unknownTitle = "Unknown"

// CountFollowers counts the entries of a followers_1.json array.
func CountFollowers(entry string, data []byte) (int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return 0, &EntryError{Entry: entry, Op: "parse followers", Err: classify(err, "expected an array")}
	}
	return len(items), nil
}

// CountFollowing counts relationships_following in following.json.
func CountFollowing(entry string, data []byte) (int, error) {
	return countKeyed(entry, data, followingKey, "parse following")
}

// CountCloseFriends counts relationships_close_friends in close_friends.json.
func CountCloseFriends(entry string, data []byte) (int, error) {
	return countKeyed(entry, data, closeFriendsKey, "parse close friends")
}

// countKeyed counts the array stored under key. A missing key counts as empty.
func countKeyed(entry string, data []byte, key, op string) (int, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return 0, &EntryError{Entry: entry, Op: op, Err: err}
	}
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return 0, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, &EntryError{Entry: entry, Op: op, Err: fmt.Errorf("%w: %s is not an array", ErrMissingField, key)}
	}
	return len(items), nil
}

// ParseStoryLikes returns the usable story owner titles of a story_likes.json,
// one per like. Entries without a string title, or titled Unknown, are skipped.
func ParseStoryLikes(entry string, data []byte) ([]string, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return nil, &EntryError{Entry: entry, Op: "parse story likes", Err: err}
	}
	raw, ok := obj[storyLikesKey]
	if !ok || isNull(raw) {
		return nil, &EntryError{Entry: entry, Op: "parse story likes", Err: fmt.Errorf("%w: %s", ErrMissingField, storyLikesKey)}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &EntryError{Entry: entry, Op: "parse story likes", Err: fmt.Errorf("%w: %s is not an array", ErrMissingField, storyLikesKey)}
	}

	titles := make([]string, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			continue
		}
		title, ok := stringField(fields, "title")
		if !ok || title == unknownTitle {
			continue
		}
		titles = append(titles, title)
	}
	return titles, nil
}

func classify(err error, want string) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %s, got %s", ErrMissingField, want, typeErr.Value)
	}
	return fmt.Errorf("%w: %v", ErrMalformedEntry, err)
}
