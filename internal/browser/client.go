// Package browser captures rendered-page text snapshots through a local
// Camofox instance.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// callerID identifies this tool to the render service.
const callerID = "x-monitor"

const (
	createTimeout   = 10 * time.Second
	snapshotTimeout = 15 * time.Second
	closeTimeout    = 5 * time.Second

	// defaultSettle is how long a freshly opened tab gets to finish
	// rendering before the snapshot is taken.
	defaultSettle = 8 * time.Second
)

// Client talks to the Camofox tab API.
type Client struct {
	http   *resty.Client
	log    *slog.Logger
	settle time.Duration
}

// New returns a Client for the Camofox service on the given local port.
func New(port int, log *slog.Logger) *Client {
	c := resty.New()
	c.SetBaseURL(fmt.Sprintf("http://localhost:%d", port))
	return &Client{http: c, log: log, settle: defaultSettle}
}

// SetSettleDelay overrides the render wait before snapshots.
func (c *Client) SetSettleDelay(d time.Duration) {
	c.settle = d
}

type tabResponse struct {
	TabID string `json:"tabId"`
}

type snapshotResponse struct {
	Snapshot string `json:"snapshot"`
}

// Snapshot opens url in a tab keyed by sessionKey, waits for the page to
// settle, and returns the text snapshot. Reusing the same sessionKey reuses
// the tab. The tab is closed on a best-effort basis afterwards.
func (c *Client) Snapshot(ctx context.Context, url, sessionKey string) (string, error) {
	tabID, err := c.openTab(ctx, url, sessionKey)
	if err != nil {
		return "", err
	}
	defer c.closeTab(tabID)

	select {
	case <-time.After(c.settle):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return c.takeSnapshot(ctx, tabID)
}

func (c *Client) openTab(ctx context.Context, url, sessionKey string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()

	var tab tabResponse
	resp, err := c.http.R().
		SetContext(callCtx).
		SetBody(map[string]string{
			"callerId":   callerID,
			"sessionKey": sessionKey,
			"url":        url,
		}).
		SetResult(&tab).
		Post("/tabs")
	if err != nil {
		return "", fmt.Errorf("create tab: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("create tab: unexpected status %d", resp.StatusCode())
	}
	if tab.TabID == "" {
		return "", fmt.Errorf("create tab: no tabId in response")
	}
	return tab.TabID, nil
}

func (c *Client) takeSnapshot(ctx context.Context, tabID string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	var snap snapshotResponse
	resp, err := c.http.R().
		SetContext(callCtx).
		SetQueryParam("userId", callerID).
		SetResult(&snap).
		Get("/tabs/" + tabID + "/snapshot")
	if err != nil {
		return "", fmt.Errorf("fetch snapshot: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("fetch snapshot: unexpected status %d", resp.StatusCode())
	}
	return snap.Snapshot, nil
}

// closeTab releases the tab. The snapshot is already taken by the time this
// runs, so failures are only logged. A fresh context keeps the close attempt
// alive even when the caller's context is already cancelled.
func (c *Client) closeTab(tabID string) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if _, err := c.http.R().SetContext(ctx).Delete("/tabs/" + tabID); err != nil {
		c.log.Warn("close tab", "tab_id", tabID, "error", err)
	}
}
