// Package extract reconstructs structured reply records from the flat text
// snapshot produced by rendering a thread on a Nitter mirror.
//
// The snapshot has no schema: every visual element becomes one line, and the
// only reliable anchor is the literal "Replying to" marker that opens each
// reply block. Author metadata sits somewhere in a bounded window above the
// marker; the reply body and its engagement stats sit in a bounded window
// below it. Each field is resolved by an independent windowed scan so the
// rules stay testable one by one against synthetic line slices.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"x_monitor/internal/model"
	"x_monitor/internal/question"
)

const (
	// replyMarker is the line that opens a reply block. Matched against the
	// trimmed line as a whole; the author's mention of the thread owner
	// renders as separate link lines after it.
	replyMarker = "- text: Replying to"
	textPrefix  = "- text:"

	// backWindow bounds the search for author metadata above a marker,
	// forwardWindow the search for the reply's own text below it.
	backWindow    = 15
	forwardWindow = 5
)

// Stat icons are private-use glyphs from the mirror's icon font, rendered
// inline after the reply text in the order comment, retweet, heart, eye.
const (
	iconComment = ''
	iconRetweet = ''
	iconHeart   = ''
	iconEye     = ''
)

var (
	handleLinkRe = regexp.MustCompile(`-\s*link\s+"@(\w+)"`)
	linkLabelRe  = regexp.MustCompile(`-\s*link\s+"([^"]+)"`)
	relTimeRe    = regexp.MustCompile(`^\d+[hmd]$`)

	// statRunRe matches a text line that ends with the full four-icon stat
	// run. The body is everything before the first icon. The retweet count
	// (third group of four) has no field on the record and is dropped.
	statRunRe = regexp.MustCompile(`^(.*?)\s*` + string(iconComment) + `\s*([\d,\.]+[KkMm]?)` +
		`\s*` + string(iconRetweet) + `\s*([\d,\.]+[KkMm]?)` +
		`\s*` + string(iconHeart) + `\s*([\d,\.]+[KkMm]?)` +
		`\s*` + string(iconEye) + `\s*([\d,\.]+[KkMm]?)\s*$`)

	// trailingStatRe strips any trailing icon+count runs when the strict
	// four-icon form does not match. Counts are optional here: the mirror
	// renders zero counters as a bare icon.
	trailingStatRe = regexp.MustCompile(`(?:\s*[\x{E000}-\x{F8FF}](?:\s*[\d,\.]+[KkMm]?)?)+\s*$`)
)

// chromeLabels are link labels produced by the mirror's own navigation
// chrome, never by a reply author.
var chromeLabels = map[string]struct{}{
	"nitter":      {},
	"Home":        {},
	"Search":      {},
	"Load more":   {},
	"Load newest": {},
}

// Replies scans a rendered thread snapshot and reconstructs the replies in
// it, in snapshot order, deduplicated by identity key. ownerHandle is the
// thread author's handle without the @, used to keep the ubiquitous
// "replied to owner" links out of author resolution.
//
// A reply is emitted only when both an author handle and a non-empty body
// were resolved. The display name falls back to the handle; the timestamp
// and counters default to absent and zero. A quoted tweet whose body itself
// contains a nested "Replying to" block can still produce a spurious second
// match; the format gives us nothing to tell the two apart.
func Replies(snapshot, ownerHandle string) []model.Reply {
	lines := strings.Split(snapshot, "\n")
	replies := []model.Reply{}
	seen := make(map[string]struct{})

	for i, line := range lines {
		if strings.TrimSpace(line) != replyMarker {
			continue
		}

		handle := authorBefore(lines, i, ownerHandle)
		raw, ok := textAfter(lines, i)
		if handle == "" || !ok {
			continue
		}

		body, replyCount, likeCount, viewCount := splitStats(raw)
		rec := model.Reply{
			AuthorHandle: handle,
			DisplayName:  nameBefore(lines, i),
			Text:         body,
			TimeAgo:      timeBefore(lines, i),
			ReplyCount:   replyCount,
			LikeCount:    likeCount,
			ViewCount:    viewCount,
			IsQuestion:   question.IsQuestion(body),
		}
		if rec.DisplayName == "" {
			rec.DisplayName = handle
		}

		if _, dup := seen[rec.Key()]; dup {
			continue
		}
		seen[rec.Key()] = struct{}{}
		replies = append(replies, rec)
	}
	return replies
}

// authorBefore resolves the reply author: the nearest handle link above the
// marker whose handle is not the thread owner's (ASCII case-insensitive).
func authorBefore(lines []string, i int, owner string) string {
	for j := i - 1; j >= i-backWindow && j >= 0; j-- {
		m := handleLinkRe.FindStringSubmatch(lines[j])
		if m == nil || strings.EqualFold(m[1], owner) {
			continue
		}
		return "@" + m[1]
	}
	return ""
}

// nameBefore resolves the author display name: the nearest quoted link label
// above the marker that is not a handle, not a relative timestamp, and not
// part of the mirror's navigation chrome.
func nameBefore(lines []string, i int) string {
	for j := i - 1; j >= i-backWindow && j >= 0; j-- {
		m := linkLabelRe.FindStringSubmatch(lines[j])
		if m == nil {
			continue
		}
		label := m[1]
		if strings.HasPrefix(label, "@") || relTimeRe.MatchString(label) {
			continue
		}
		if _, chrome := chromeLabels[label]; chrome {
			continue
		}
		return label
	}
	return ""
}

// timeBefore resolves the relative timestamp: the nearest quoted link label
// above the marker of the digits+h/m/d form.
func timeBefore(lines []string, i int) string {
	for j := i - 1; j >= i-backWindow && j >= 0; j-- {
		m := linkLabelRe.FindStringSubmatch(lines[j])
		if m != nil && relTimeRe.MatchString(m[1]) {
			return m[1]
		}
	}
	return ""
}

// textAfter finds the reply's own text line in the forward window. Handle
// link lines (the restated mention of the thread owner) and further reply
// markers are skipped; the first remaining non-empty text line wins, with
// the prefix stripped but stats still attached.
func textAfter(lines []string, i int) (string, bool) {
	for j := i + 1; j <= i+forwardWindow && j < len(lines); j++ {
		s := strings.TrimSpace(lines[j])
		if s == replyMarker || handleLinkRe.MatchString(s) {
			continue
		}
		if !strings.HasPrefix(s, textPrefix) {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(s, textPrefix))
		if body == "" {
			continue
		}
		return body, true
	}
	return "", false
}

// splitStats separates a raw text line into the reply body and its
// engagement counters. The strict form requires all four icons in render
// order, each followed by a count. Otherwise any trailing icon+count runs
// are stripped generically and the counters stay zero; if stripping leaves
// nothing, the raw line is kept whole rather than emitting an empty body.
func splitStats(raw string) (body string, replyCount, likeCount, viewCount int) {
	if m := statRunRe.FindStringSubmatch(raw); m != nil {
		body = strings.TrimSpace(m[1])
		if body == "" {
			body = raw
		}
		return body, parseCount(m[2]), parseCount(m[4]), parseCount(m[5])
	}
	body = strings.TrimSpace(trailingStatRe.ReplaceAllString(raw, ""))
	if body == "" {
		body = raw
	}
	return body, 0, 0, 0
}

// parseCount converts a rendered stat like "1,234", "1.2K", or "3M" to an
// int. Anything unparseable counts as zero.
func parseCount(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	mult := 1.0
	switch {
	case strings.HasSuffix(strings.ToUpper(s), "K"):
		mult = 1e3
		s = s[:len(s)-1]
	case strings.HasSuffix(strings.ToUpper(s), "M"):
		mult = 1e6
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(v * mult)
}
