// Package tabs finds the URL of the active browser tab.
package tabs

import (
	"context"
	"errors"
	"fmt"

	"github.com/notexe/tab-reminder/internal/host"
)

var (
	ErrNoActiveTab = errors.New("tabs: no active tab")
	ErrNoTabURL    = errors.New("tabs: active tab has no url")
)

// Lookup resolves the current tab through a TabService.
type Lookup struct {
	tabs host.TabService
}

// NewLookup creates a Lookup.
func NewLookup(tabs host.TabService) *Lookup {
	return &Lookup{tabs: tabs}
}

// CurrentTabURL returns the URL of the active tab in the current window.
func (l *Lookup) CurrentTabURL(ctx context.Context) (string, error) {
	tabs, err := l.tabs.Query(ctx, host.QueryInfo{Active: true, CurrentWindow: true})
	if err != nil {
		return "", fmt.Errorf("tab query failed: %w", err)
	}
	if len(tabs) == 0 {
		return "", ErrNoActiveTab
	}
	if tabs[0].URL == "" {
		return "", ErrNoTabURL
	}
	return tabs[0].URL, nil
}

// GetCurrentTabURL runs CurrentTabURL on its own goroutine and returns
// immediately. Exactly one of callback or onError is invoked, once.
// A nil onError drops the failure.
func (l *Lookup) GetCurrentTabURL(ctx context.Context, callback func(url string), onError func(err error)) {
	go func() {
		url, err := l.CurrentTabURL(ctx)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		callback(url)
	}()
}
