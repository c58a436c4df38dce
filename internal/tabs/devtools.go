package tabs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/notexe/tab-reminder/internal/host"
)

const defaultDevToolsURL = "http://localhost:9222"

// DevTools reads tabs from a Chromium remote debugging endpoint
// (started with --remote-debugging-port). The endpoint lists targets in
// most-recently-focused order, so the first page target is the active tab.
type DevTools struct {
	client  host.HTTPDoer
	baseURL string
}

var _ host.TabService = (*DevTools)(nil)

// NewDevTools creates a DevTools tab service. A nil client gets a default
// one with the given timeout in seconds.
func NewDevTools(client host.HTTPDoer, baseURL string, timeout int) *DevTools {
	if baseURL == "" {
		baseURL = defaultDevToolsURL
	}
	if timeout <= 0 {
		timeout = 5
	}
	if client == nil {
		client = &http.Client{Timeout: time.Duration(timeout) * time.Second}
	}
	return &DevTools{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type devtoolsTarget struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Query lists page targets. With Active set only the first page is returned.
func (d *DevTools) Query(ctx context.Context, q host.QueryInfo) ([]host.Tab, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/json/list", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create devtools request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("devtools request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("devtools error (status %d): %s", resp.StatusCode, string(body))
	}

	var targets []devtoolsTarget
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, fmt.Errorf("failed to decode devtools targets: %w", err)
	}

	tabs := make([]host.Tab, 0, len(targets))
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		tabs = append(tabs, host.Tab{
			ID:     t.ID,
			Title:  t.Title,
			URL:    t.URL,
			Type:   t.Type,
			Active: len(tabs) == 0,
		})
	}

	if q.Active && len(tabs) > 1 {
		tabs = tabs[:1]
	}
	return tabs, nil
}
