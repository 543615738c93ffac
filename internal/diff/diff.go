// Package diff computes which replies are new relative to persisted state.
package diff

import (
	"time"

	"x_monitor/internal/model"
)

// Apply compares replies against the stored state for tweetID, replaces that
// state with the fresh snapshot, and returns the replies whose identity key
// was not present before. A thread with no prior state reports every reply
// as new. Replies that vanished from the page are forgotten, so one that
// later reappears counts as new again.
func Apply(states map[string]model.ThreadState, tweetID string, replies []model.Reply, checkedAt time.Time) []model.Reply {
	key := model.StateKey(tweetID)

	known := make(map[string]struct{})
	for _, r := range states[key].Replies {
		known[r.Key()] = struct{}{}
	}

	fresh := []model.Reply{}
	for _, r := range replies {
		if _, ok := known[r.Key()]; !ok {
			fresh = append(fresh, r)
		}
	}

	states[key] = model.ThreadState{Replies: replies, LastChecked: checkedAt}
	return fresh
}
