// Package analyze turns an Instagram data export into a Report: the contact
// table with reply statistics, group chat and deactivated account counts, and
// the relationship and story like tallies.
package analyze

import (
	"github.com/Zuo-Peng/igfa/internal/archive"
)

// ContactRow is one line of the contact table. Reply times are in seconds.
type ContactRow struct {
	Name         string  `json:"name" yaml:"name"`
	MessageCount int     `json:"message_count" yaml:"message_count"`
	AvgReply     float64 `json:"avg_reply_seconds" yaml:"avg_reply_seconds"`
	FastestReply float64 `json:"fastest_reply_seconds" yaml:"fastest_reply_seconds"`
	LongestReply float64 `json:"longest_reply_seconds" yaml:"longest_reply_seconds"`
}

type Relationships struct {
	Followers    int `json:"followers" yaml:"followers"`
	Following    int `json:"following" yaml:"following"`
	CloseFriends int `json:"close_friends" yaml:"close_friends"`
}

// StoryLikeCount is the number of stories liked from one account.
type StoryLikeCount struct {
	Name  string `json:"name" yaml:"name"`
	Likes int    `json:"likes" yaml:"likes"`
}

// ResourceCounts is the number of entries of each class the selector found.
type ResourceCounts struct {
	Conversations int `json:"conversations" yaml:"conversations"`
	StoryLikes    int `json:"story_likes" yaml:"story_likes"`
	Followers     int `json:"followers" yaml:"followers"`
	Following     int `json:"following" yaml:"following"`
	CloseFriends  int `json:"close_friends" yaml:"close_friends"`
}

// Report is the result of analyzing one export.
type Report struct {
	SessionID string           `json:"session_id" yaml:"session_id"`
	Account   archive.Identity `json:"account" yaml:"account"`

	Entries   int            `json:"entries" yaml:"entries"`
	Resources ResourceCounts `json:"resources" yaml:"resources"`

	// Contacts is sorted by MessageCount descending. It is never nil.
	Contacts            []ContactRow `json:"contacts" yaml:"contacts"`
	GroupChats          int          `json:"group_chats" yaml:"group_chats"`
	DeactivatedAccounts int          `json:"deactivated_accounts" yaml:"deactivated_accounts"`

	// ConversationFiles counts records that had a messages array.
	ConversationFiles int `json:"conversation_files" yaml:"conversation_files"`

	Relationships Relationships    `json:"relationships" yaml:"relationships"`
	StoryLikes    []StoryLikeCount `json:"story_likes" yaml:"story_likes"`
	Diagnostics   []Diagnostic     `json:"diagnostics" yaml:"diagnostics"`
}

// TotalMessages sums MessageCount over the contact table.
func (r *Report) TotalMessages() int {
	n := 0
	for _, c := range r.Contacts {
		n += c.MessageCount
	}
	return n
}
