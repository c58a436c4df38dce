package imagesearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "k" || q.Get("cx") != "engine" || q.Get("q") == "" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

type outcome struct {
	url    string
	width  int
	height int
	reason string
}

// lookup calls GetImageURL and waits for its single callback. A second
// callback within a short grace period fails the test.
func lookup(t *testing.T, c *Client, term string) outcome {
	t.Helper()
	results := make(chan outcome, 2)
	c.GetImageURL(context.Background(), term, func(url string, w, h int) {
		results <- outcome{url: url, width: w, height: h}
	}, func(reason string) {
		results <- outcome{reason: reason}
	})

	var got outcome
	select {
	case got = <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for image search callback")
	}

	select {
	case extra := <-results:
		t.Fatalf("second callback: %+v", extra)
	case <-time.After(20 * time.Millisecond):
	}
	return got
}

func TestGetImageURLFound(t *testing.T) {
	srv := newTestServer(t, `{"items":[{"pagemap":{"cse_thumbnail":[{"src":"https://img.example/cat.jpg","width":"100","height":"200"}]}}]}`, http.StatusOK)
	defer srv.Close()

	c := NewClient(srv.Client(), Config{APIKey: "k", EngineID: "engine", BaseURL: srv.URL})

	got := lookup(t, c, "cat")
	if got.reason != "" {
		t.Fatalf("unexpected error callback: %s", got.reason)
	}
	if got.url != "https://img.example/cat.jpg" || got.width != 100 || got.height != 200 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestGetImageURLFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{name: "empty items", body: `{"items":[]}`, status: http.StatusOK, want: ReasonNoResponse},
		{name: "no items key", body: `{}`, status: http.StatusOK, want: ReasonNoResponse},
		{name: "empty body", body: ``, status: http.StatusOK, want: ReasonNoResponse},
		{name: "no thumbnail", body: `{"items":[{"pagemap":{}}]}`, status: http.StatusOK, want: ReasonNoResponse},
		{name: "error status", body: `{"error":{"code":403,"message":"quota"}}`, status: http.StatusForbidden, want: ReasonNoResponse},
		{name: "bad width", body: `{"items":[{"pagemap":{"cse_thumbnail":[{"src":"x","width":"wide","height":"1"}]}}]}`, status: http.StatusOK, want: ReasonUnexpected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.body, tc.status)
			defer srv.Close()

			c := NewClient(srv.Client(), Config{APIKey: "k", EngineID: "engine", BaseURL: srv.URL})

			got := lookup(t, c, "cat")
			if got.reason != tc.want {
				t.Fatalf("expected reason %q, got %+v", tc.want, got)
			}
		})
	}
}

func TestGetImageURLLenientDimensions(t *testing.T) {
	srv := newTestServer(t, `{"items":[{"pagemap":{"cse_thumbnail":[{"src":"https://img.example/dog.png","width":"100px","height":"225.0"}]}}]}`, http.StatusOK)
	defer srv.Close()

	c := NewClient(srv.Client(), Config{APIKey: "k", EngineID: "engine", BaseURL: srv.URL})

	got := lookup(t, c, "dog")
	if got.reason != "" || got.width != 100 || got.height != 225 {
		t.Fatalf("expected 100x225, got %+v", got)
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{in: "150", want: 150, ok: true},
		{in: " 42 ", want: 42, ok: true},
		{in: "100px", want: 100, ok: true},
		{in: "100.9", want: 100, ok: true},
		{in: "-3", want: -3, ok: true},
		{in: "", ok: false},
		{in: "px100", ok: false},
		{in: "+", ok: false},
	}

	for _, tc := range tests {
		got, ok := leadingInt(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("leadingInt(%q) = %d, %v; want %d, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestGetImageURLNetworkError(t *testing.T) {
	c := NewClient(failingDoer{}, Config{APIKey: "k", EngineID: "engine"})

	if got := lookup(t, c, "cat"); got.reason != ReasonNetwork {
		t.Fatalf("expected %q, got %+v", ReasonNetwork, got)
	}

	if _, err := c.Search(context.Background(), "cat"); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

// stalledDoer holds every request until release is closed.
type stalledDoer struct {
	release chan struct{}
}

func (d stalledDoer) Do(*http.Request) (*http.Response, error) {
	<-d.release
	return nil, errors.New("released")
}

func TestGetImageURLDoesNotBlockCaller(t *testing.T) {
	doer := stalledDoer{release: make(chan struct{})}
	c := NewClient(doer, Config{APIKey: "k", EngineID: "engine"})

	reasons := make(chan string, 1)
	returned := make(chan struct{})
	go func() {
		c.GetImageURL(context.Background(), "cat", func(string, int, int) {
			t.Error("success callback must not be called")
		}, func(reason string) { reasons <- reason })
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		close(doer.release)
		t.Fatal("GetImageURL waited for the HTTP request to finish")
	}

	select {
	case r := <-reasons:
		t.Fatalf("callback ran before the request completed: %q", r)
	default:
	}

	close(doer.release)
	select {
	case r := <-reasons:
		if r != ReasonNetwork {
			t.Fatalf("expected %q, got %q", ReasonNetwork, r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error callback")
	}
}
