// Package imagesearch looks up a thumbnail for a search term through the
// Google Custom Search JSON API.
package imagesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/notexe/tab-reminder/internal/host"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// Failure reasons passed to GetImageURL's error callback.
const (
	ReasonNoResponse = "No response from Google Image search!"
	ReasonNetwork    = "Network error."
	ReasonUnexpected = "Unexpected response from the Google Image Search API!"
)

var (
	ErrNoResults  = errors.New("imagesearch: no results")
	ErrNetwork    = errors.New("imagesearch: network error")
	ErrUnexpected = errors.New("imagesearch: unexpected response")
)

// Image is the first result's thumbnail.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Config holds the search credentials and endpoint.
type Config struct {
	APIKey   string
	EngineID string
	BaseURL  string
	Timeout  int // seconds
}

// Client performs image searches.
type Client struct {
	client  host.HTTPDoer
	baseURL string
	apiKey  string
	cx      string
}

// NewClient creates a search client. A nil doer gets a default
// *http.Client using cfg.Timeout.
func NewClient(doer host.HTTPDoer, cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30
	}

	if doer == nil {
		doer = &http.Client{Timeout: time.Duration(timeout) * time.Second}
	}

	return &Client{
		client:  doer,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		cx:      cfg.EngineID,
	}
}

type searchResponse struct {
	Items []struct {
		Pagemap struct {
			Thumbnails []struct {
				Src    string `json:"src"`
				Width  string `json:"width"`
				Height string `json:"height"`
			} `json:"cse_thumbnail"`
		} `json:"pagemap"`
	} `json:"items"`
}

// Search returns the thumbnail of the first result. The HTTP status code is
// not inspected: an error body simply has no items.
func (c *Client) Search(ctx context.Context, term string) (*Image, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("cx", c.cx)
	q.Set("q", term)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoResults, err)
	}
	if len(body.Items) == 0 || len(body.Items[0].Pagemap.Thumbnails) == 0 {
		return nil, ErrNoResults
	}

	thumb := body.Items[0].Pagemap.Thumbnails[0]
	width, wok := leadingInt(thumb.Width)
	height, hok := leadingInt(thumb.Height)
	if thumb.Src == "" || !wok || !hok {
		return nil, fmt.Errorf("%w: src=%q width=%q height=%q", ErrUnexpected, thumb.Src, thumb.Width, thumb.Height)
	}

	return &Image{URL: thumb.Src, Width: width, Height: height}, nil
}

// GetImageURL runs Search on its own goroutine and returns immediately.
// Exactly one of onFound or onError is invoked, once.
func (c *Client) GetImageURL(ctx context.Context, term string, onFound func(url string, width, height int), onError func(reason string)) {
	go func() {
		img, err := c.Search(ctx, term)
		if err != nil {
			onError(Reason(err))
			return
		}
		onFound(img.URL, img.Width, img.Height)
	}()
}

// leadingInt parses the optionally signed decimal prefix of s, so "100px"
// and "100.0" both read as 100. It fails when there are no digits.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Reason maps a Search error to its fixed user-facing string.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNetwork):
		return ReasonNetwork
	case errors.Is(err, ErrUnexpected):
		return ReasonUnexpected
	default:
		return ReasonNoResponse
	}
}
