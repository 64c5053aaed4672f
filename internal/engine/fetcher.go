package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Page is the rendered content of one URL.
type Page struct {
	HTML     string
	FinalURL string
}

// PageFetcher returns rendered HTML for a URL. The default implementation
// is a plain HTTP client; browser-driven fetchers for JavaScript-heavy
// sites satisfy the same interface.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)

	// Rotate resets the fetcher's client identity. Called after a
	// bot-detection or challenge response before the next attempt.
	Rotate()
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// HTTPFetcher fetches pages over plain HTTP with a rotating user agent.
type HTTPFetcher struct {
	client  *http.Client
	uaIndex int
}

// NewHTTPFetcher creates an HTTPFetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the URL and returns its body. Non-2xx responses are
// classified into FetchErrors so the engine can pick a retry strategy.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindUnknown, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgents[f.uaIndex])
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: ClassifyMessage(err.Error(), 0), URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := ClassifyMessage(resp.Status, resp.StatusCode)
		if resp.StatusCode == http.StatusForbidden {
			kind = KindBotDetection
		}
		return nil, &FetchError{
			Kind: kind,
			URL:  url,
			Err:  fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, URL: url, Err: err}
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &Page{HTML: string(body), FinalURL: finalURL}, nil
}

// Rotate switches to the next user agent.
func (f *HTTPFetcher) Rotate() {
	f.uaIndex = (f.uaIndex + 1) % len(userAgents)
}
