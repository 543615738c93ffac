// Package update checks GitHub for a newer release and formats an upgrade
// notice. Lookups are cached for a day and every failure is silent: the
// monitor's own output must never depend on GitHub being reachable.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
)

const (
	cacheTTL     = 24 * time.Hour
	checkTimeout = 5 * time.Second
)

var (
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	versionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// Checker looks up the latest released version of a GitHub repository via
// its releases feed.
type Checker struct {
	repo     string // "owner/name"
	http     *resty.Client
	cacheDir string
	now      func() time.Time
}

// New creates a Checker for the given GitHub repository.
func New(repo string) *Checker {
	cacheDir := ""
	if base, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(base, "x-monitor-updates")
	}

	c := resty.New()
	c.SetBaseURL("https://github.com")
	return &Checker{
		repo:     repo,
		http:     c,
		cacheDir: cacheDir,
		now:      time.Now,
	}
}

// Notice returns a formatted upgrade notice when a version newer than
// current has been released, and "" otherwise. It never returns an error.
func (c *Checker) Notice(ctx context.Context, current string) string {
	if current == "" {
		return ""
	}
	remote := c.latest(ctx)
	if remote == "" || remote == current {
		return ""
	}
	return renderNotice(current, remote, c.repo)
}

// latest returns the most recent release version, consulting the cache
// first. A fresh cache entry is authoritative even when it is empty.
func (c *Checker) latest(ctx context.Context) string {
	if v, fresh := c.cached(); fresh {
		return v
	}
	v, err := c.fetch(ctx)
	if err != nil {
		return ""
	}
	c.storeCache(v)
	return v
}

func (c *Checker) fetch(ctx context.Context) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	resp, err := c.http.R().SetContext(callCtx).Get("/" + c.repo + "/releases.atom")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	feed, err := gofeed.NewParser().ParseString(resp.String())
	if err != nil {
		return "", err
	}
	if len(feed.Items) == 0 {
		return "", nil
	}
	return versionFromItem(feed.Items[0]), nil
}

// versionFromItem digs the release tag out of a feed entry. Entry IDs look
// like "tag:github.com,2008:Repository/1234/v1.4.0" and entry links end
// with "/releases/tag/v1.4.0", so the last path segment is the tag either
// way.
func versionFromItem(item *gofeed.Item) string {
	source := item.GUID
	if source == "" {
		source = item.Link
	}
	if i := strings.LastIndex(source, "/"); i >= 0 {
		source = source[i+1:]
	}
	return strings.TrimPrefix(source, "v")
}

type cacheEntry struct {
	CheckedAt     int64  `json:"checked_at"`
	RemoteVersion string `json:"remote_version"`
}

func (c *Checker) cacheFile() string {
	return filepath.Join(c.cacheDir, strings.ReplaceAll(c.repo, "/", "_")+".json")
}

func (c *Checker) cached() (string, bool) {
	if c.cacheDir == "" {
		return "", false
	}
	data, err := os.ReadFile(c.cacheFile())
	if err != nil {
		return "", false
	}
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return "", false
	}
	if c.now().Sub(time.Unix(e.CheckedAt, 0)) >= cacheTTL {
		return "", false
	}
	return e.RemoteVersion, true
}

func (c *Checker) storeCache(version string) {
	if c.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return
	}
	data, err := json.Marshal(cacheEntry{CheckedAt: c.now().Unix(), RemoteVersion: version})
	if err != nil {
		return
	}
	_ = os.WriteFile(c.cacheFile(), data, 0o644)
}

func renderNotice(current, remote, repo string) string {
	var b strings.Builder
	b.WriteString(warnStyle.Render("A new version is available!"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  current: v%s  latest: %s\n", current, versionStyle.Render("v"+remote))
	fmt.Fprintf(&b, "  run %s to update\n", boldStyle.Render("git pull"))
	fmt.Fprintf(&b, "  details: https://github.com/%s/releases\n", repo)
	return b.String()
}
