// Package tweeturl extracts thread coordinates from X/Twitter status links.
package tweeturl

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidURL is returned when a link does not point at a tweet.
var ErrInvalidURL = errors.New("invalid tweet URL")

var statusRe = regexp.MustCompile(`(?:x\.com|twitter\.com)/(\w+)/status/(\d+)`)

// Parse extracts the author username and numeric tweet ID from an X or
// Twitter status URL. Trailing path segments and query strings are ignored.
func Parse(rawURL string) (username, tweetID string, err error) {
	m := statusRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return m[1], m[2], nil
}
