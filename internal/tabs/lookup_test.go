package tabs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/notexe/tab-reminder/internal/host"
)

type staticTabs struct {
	tabs  []host.Tab
	err   error
	query host.QueryInfo
}

func (s *staticTabs) Query(_ context.Context, q host.QueryInfo) ([]host.Tab, error) {
	s.query = q
	return s.tabs, s.err
}

func TestGetCurrentTabURLInvokesCallbackOnce(t *testing.T) {
	svc := &staticTabs{tabs: []host.Tab{{ID: "1", URL: "https://example.com", Active: true}}}
	l := NewLookup(svc)

	var mu sync.Mutex
	var calls []string
	done := make(chan struct{})
	l.GetCurrentTabURL(context.Background(), func(url string) {
		mu.Lock()
		calls = append(calls, url)
		mu.Unlock()
		close(done)
	}, func(err error) {
		t.Errorf("unexpected error: %v", err)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != "https://example.com" {
		t.Fatalf("expected one call with https://example.com, got %v", calls)
	}
	if !svc.query.Active || !svc.query.CurrentWindow {
		t.Fatalf("expected active+currentWindow query, got %+v", svc.query)
	}
}

func TestCurrentTabURLErrors(t *testing.T) {
	tests := []struct {
		name string
		svc  *staticTabs
		want error
	}{
		{name: "no tabs", svc: &staticTabs{}, want: ErrNoActiveTab},
		{name: "empty url", svc: &staticTabs{tabs: []host.Tab{{ID: "1"}}}, want: ErrNoTabURL},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLookup(tc.svc).CurrentTabURL(context.Background())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	queryErr := errors.New("browser gone")
	_, err := NewLookup(&staticTabs{err: queryErr}).CurrentTabURL(context.Background())
	if !errors.Is(err, queryErr) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}

func TestGetCurrentTabURLReportsEmptyResult(t *testing.T) {
	l := NewLookup(&staticTabs{})
	errCh := make(chan error, 1)
	l.GetCurrentTabURL(context.Background(), func(url string) {
		t.Errorf("unexpected callback with %q", url)
	}, func(err error) { errCh <- err })

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrNoActiveTab) {
			t.Fatalf("expected ErrNoActiveTab, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error")
	}
}

func TestDevToolsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/list" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"sw","type":"service_worker","url":"chrome-extension://abc/bg.js"},
			{"id":"A","type":"page","title":"Example","url":"https://example.com"},
			{"id":"B","type":"page","title":"Go","url":"https://go.dev"}
		]`))
	}))
	defer srv.Close()

	d := NewDevTools(srv.Client(), srv.URL+"/", 0)

	all, err := d.Query(context.Background(), host.QueryInfo{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 2 || !all[0].Active || all[1].Active {
		t.Fatalf("unexpected tabs: %+v", all)
	}

	url, err := NewLookup(d).CurrentTabURL(context.Background())
	if err != nil {
		t.Fatalf("current tab: %v", err)
	}
	if url != "https://example.com" {
		t.Fatalf("expected https://example.com, got %q", url)
	}
}

func TestDevToolsQueryStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewDevTools(srv.Client(), srv.URL, 1).Query(context.Background(), host.QueryInfo{}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
