// Package model defines the domain types used across the application.
package model

import "time"

// Reply represents a single reply extracted from a rendered thread snapshot.
type Reply struct {
	AuthorHandle string `json:"author_handle"`
	DisplayName  string `json:"author_display_name"`
	Text         string `json:"body_text"`
	TimeAgo      string `json:"time_ago,omitempty"`
	ReplyCount   int    `json:"reply_count"`
	LikeCount    int    `json:"like_count"`
	ViewCount    int    `json:"view_count"`
	IsQuestion   bool   `json:"is_question"`
}

// Key returns the identity of a reply for deduplication and diffing.
// Two replies with the same key are the same logical reply regardless of
// display name, timestamp, or counter differences. Handles match @\w+ and
// cannot contain a colon, so the join is unambiguous.
func (r Reply) Key() string {
	return r.AuthorHandle + ":" + r.Text
}

// ThreadState holds what the last successful check of one thread saw.
// Every watch cycle replaces it wholesale with the fresh extraction; it is
// not a cumulative union of everything ever seen.
type ThreadState struct {
	Replies     []Reply   `json:"replies"`
	LastChecked time.Time `json:"last_checked"`
}

// StateKey returns the state-mapping key for a tweet ID.
func StateKey(tweetID string) string {
	return "tweet_" + tweetID
}
