// Package monitor runs reply checks end to end: render the thread, extract
// replies, diff against persisted state, and shape the outgoing report.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"x_monitor/internal/diff"
	"x_monitor/internal/extract"
	"x_monitor/internal/model"
	"x_monitor/internal/storage"
	"x_monitor/internal/tweeturl"
)

// fetchFailedMsg is the operator-facing hint reported when the render
// service cannot be reached or the page never produced a snapshot.
const fetchFailedMsg = "Failed to fetch replies (is Camofox running?)"

// SnapshotFetcher renders a page and returns its text snapshot.
type SnapshotFetcher interface {
	Snapshot(ctx context.Context, url, sessionKey string) (string, error)
}

// Notifier pushes newly seen replies somewhere out of band.
type Notifier interface {
	NotifyNewReplies(tweetURL string, replies []model.Reply)
}

// Monitor checks a tweet thread for replies.
type Monitor struct {
	browser  SnapshotFetcher
	store    storage.Store
	notifier Notifier
	log      *slog.Logger
	nitter   string
	now      func() time.Time
}

// New creates a Monitor that renders threads through the given Nitter
// instance.
func New(browser SnapshotFetcher, store storage.Store, nitter string, log *slog.Logger) *Monitor {
	return &Monitor{
		browser: browser,
		store:   store,
		log:     log,
		nitter:  nitter,
		now:     time.Now,
	}
}

// SetNotifier installs an out-of-band notifier for new replies.
func (m *Monitor) SetNotifier(n Notifier) {
	m.notifier = n
}

// SetClock overrides the time source (useful for testing).
func (m *Monitor) SetClock(now func() time.Time) {
	m.now = now
}

// Check fetches the thread behind rawURL once and reports what it found.
// watch selects the only-new report shape and is the only mode that reads
// or persists state. The returned error is reserved for an unusable URL;
// fetch failures are reported inside the payload instead.
func (m *Monitor) Check(ctx context.Context, rawURL string, watch bool) (*Report, error) {
	username, tweetID, err := tweeturl.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	report := &Report{
		TweetURL:  rawURL,
		Username:  username,
		TweetID:   tweetID,
		CheckedAt: m.now().UTC(),
		Watch:     watch,
	}

	threadURL := fmt.Sprintf("https://%s/%s/status/%s", m.nitter, username, tweetID)
	snapshot, err := m.browser.Snapshot(ctx, threadURL, "monitor-"+tweetID)
	if err != nil {
		m.log.Error("fetch snapshot", "tweet_id", tweetID, "error", err)
		report.Err = fetchFailedMsg
		return report, nil
	}

	report.Replies = extract.Replies(snapshot, username)

	if watch {
		states, err := m.store.Load(ctx)
		if err != nil {
			m.log.Warn("load state, starting fresh", "error", err)
		}
		report.NewReplies = diff.Apply(states, tweetID, report.Replies, report.CheckedAt)
		if err := m.store.Save(ctx, states); err != nil {
			m.log.Error("save state", "error", err)
		}

		if m.notifier != nil && len(report.NewReplies) > 0 {
			m.notifier.NotifyNewReplies(rawURL, report.NewReplies)
		}
	}

	m.log.Debug("checked thread",
		"tweet_id", tweetID, "replies", len(report.Replies), "watch", watch)
	return report, nil
}

// Watch re-checks the thread on a fixed interval until ctx is cancelled,
// passing each report to emit. The first check runs immediately.
func (m *Monitor) Watch(ctx context.Context, rawURL string, interval time.Duration, emit func(*Report)) error {
	// Surface URL problems before the first tick.
	if _, _, err := tweeturl.Parse(rawURL); err != nil {
		return err
	}

	check := func() {
		report, err := m.Check(ctx, rawURL, true)
		if err != nil {
			m.log.Error("check thread", "url", rawURL, "error", err)
			return
		}
		emit(report)
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			check()
		}
	}
}

// Report is the outcome of a single check. It serializes into one of three
// payload shapes: a fetch failure, a full listing, or a watch report that
// carries only the replies new since the previous check.
type Report struct {
	TweetURL   string
	Username   string
	TweetID    string
	CheckedAt  time.Time
	Err        string
	Replies    []model.Reply
	NewReplies []model.Reply
	Watch      bool
}

type reportHeader struct {
	TweetURL  string `json:"tweet_url"`
	Username  string `json:"username"`
	TweetID   string `json:"tweet_id"`
	CheckedAt string `json:"checked_at"`
}

// MarshalJSON keeps the payload shapes mutually exclusive: a failure report
// never carries reply fields, and zero counts stay present rather than
// being omitted.
func (r Report) MarshalJSON() ([]byte, error) {
	header := reportHeader{
		TweetURL:  r.TweetURL,
		Username:  r.Username,
		TweetID:   r.TweetID,
		CheckedAt: r.CheckedAt.UTC().Format(time.RFC3339),
	}

	if r.Err != "" {
		return json.Marshal(struct {
			reportHeader
			Error string `json:"error"`
		}{header, r.Err})
	}

	questions := questionsOf(r.Replies)

	if r.Watch {
		return json.Marshal(struct {
			reportHeader
			TotalReplies  int           `json:"total_replies"`
			Questions     []model.Reply `json:"questions"`
			QuestionCount int           `json:"question_count"`
			NewReplies    []model.Reply `json:"new_replies"`
			NewCount      int           `json:"new_count"`
		}{header, len(r.Replies), questions, len(questions), orEmpty(r.NewReplies), len(r.NewReplies)})
	}

	return json.Marshal(struct {
		reportHeader
		TotalReplies  int           `json:"total_replies"`
		Questions     []model.Reply `json:"questions"`
		QuestionCount int           `json:"question_count"`
		Replies       []model.Reply `json:"replies"`
	}{header, len(r.Replies), questions, len(questions), orEmpty(r.Replies)})
}

func questionsOf(replies []model.Reply) []model.Reply {
	questions := []model.Reply{}
	for _, r := range replies {
		if r.IsQuestion {
			questions = append(questions, r)
		}
	}
	return questions
}

func orEmpty(replies []model.Reply) []model.Reply {
	if replies == nil {
		return []model.Reply{}
	}
	return replies
}
