// Package resolver turns webpage URLs into downloadable media/document URLs
// by applying platform-specific transforms, then verifying the result
// through an external URLVerifier (yt-dlp or HTTP HEAD based). On terminal
// verification failure the original URL passes through unchanged, keeping
// output index-aligned with input.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/civic-meetings/internal/config"
	"github.com/pfrederiksen/civic-meetings/internal/logger"
	"github.com/pfrederiksen/civic-meetings/internal/pattern"
)

// Item is one URL-resolution request.
type Item struct {
	URL  string `json:"url"`
	Type string `json:"type"` // video, audio, or document
}

// Verifier checks that a URL is live and downloadable for its media type.
// Implementations wrap yt-dlp for media and HTTP HEAD for documents.
type Verifier interface {
	Verify(ctx context.Context, url, mediaType string) (bool, error)
}

// VerifyError is a classified verification failure.
type VerifyError struct {
	Kind string // "timeout" or "unsupported_platform"
	URL  string
	Err  error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("verifying %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

// directPlatforms serve URLs that download as-is; no transform needed.
var directPlatforms = []string{
	"youtube.com", "youtu.be", "vimeo.com", "facebook.com",
	"sharepoint.com", "video.ibm.com",
}

var granicusMP4 = regexp.MustCompile(`https://archive-video\.granicus\.com/[^"'<>\s]+\.mp4`)

// Resolver applies transforms and verification sequentially, in input order.
type Resolver struct {
	cfg      config.ResolverConfig
	client   *http.Client
	verifier Verifier
}

// New creates a Resolver using verifier for liveness checks.
func New(cfg config.ResolverConfig, verifier Verifier) *Resolver {
	return &Resolver{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.VerifyTimeout},
		verifier: verifier,
	}
}

// ResolveAll resolves every item in order. The result is index-aligned with
// the input; entries that fail verification after retries are emitted as
// their original URL (best-effort passthrough).
func (r *Resolver) ResolveAll(ctx context.Context, items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = r.Resolve(ctx, item)
	}
	return out
}

// Resolve returns the downloadable form of one URL, or the original when no
// transform applies or verification keeps failing.
func (r *Resolver) Resolve(ctx context.Context, item Item) string {
	resolved := r.transform(ctx, item.URL)

	if resolved != item.URL && r.verify(ctx, resolved, item.Type) {
		logger.Info("url resolved", logger.Fields{"original": item.URL, "resolved": resolved})
		return resolved
	}
	if r.verify(ctx, item.URL, item.Type) {
		return item.URL
	}

	// Terminal failure: emit the original unchanged rather than dropping
	// the entry.
	logger.Warn("url verification failed, passing through", logger.Fields{
		"url": item.URL, "type": item.Type,
	})
	logger.IncrCounter("resolve.passthrough")
	return item.URL
}

// transform routes URLs to platform-specific resolution. Unknown platforms
// return the input unchanged.
func (r *Resolver) transform(ctx context.Context, rawURL string) string {
	lower := strings.ToLower(rawURL)

	switch {
	case strings.Contains(lower, "swagit.com"):
		if strings.HasSuffix(rawURL, "/download") {
			return rawURL
		}
		return strings.TrimRight(rawURL, "/") + "/download"

	case strings.Contains(lower, "granicus.com"):
		return r.extractGranicus(ctx, rawURL)

	case strings.Contains(lower, "savannahga.gov") && strings.Contains(lower, "/minutes.html"):
		return r.extractFirstPDF(ctx, rawURL)
	}

	for _, p := range directPlatforms {
		if strings.Contains(lower, p) {
			return rawURL
		}
	}
	for _, ext := range pattern.MediaExtensions {
		if strings.Contains(lower, ext) {
			return rawURL
		}
	}
	return rawURL
}

// extractGranicus pulls the archive MP4 URL out of a Granicus player page.
func (r *Resolver) extractGranicus(ctx context.Context, pageURL string) string {
	html, err := r.fetch(ctx, pageURL)
	if err != nil {
		logger.Warn("granicus extraction failed", logger.Fields{"url": pageURL})
		return pageURL
	}
	if m := granicusMP4.FindString(html); m != "" {
		return m
	}
	return pageURL
}

// extractFirstPDF returns the first PDF link on a minutes listing page.
func (r *Resolver) extractFirstPDF(ctx context.Context, pageURL string) string {
	html, err := r.fetch(ctx, pageURL)
	if err != nil {
		return pageURL
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return pageURL
	}
	result := pageURL
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.Contains(strings.ToLower(href), ".pdf") {
			return true
		}
		if resolved := resolveAgainst(pageURL, href); resolved != "" {
			result = resolved
			return false
		}
		return true
	})
	return result
}

func (r *Resolver) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// resolveAgainst makes href absolute relative to base, or "" when either
// side fails to parse.
func resolveAgainst(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	h, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return b.ResolveReference(h).String()
}

// verify runs the external verifier with bounded exponential backoff.
// Unsupported-platform failures are terminal; retrying cannot change them.
func (r *Resolver) verify(ctx context.Context, url, mediaType string) bool {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.InitialBackoff
	maxRetries := uint64(0)
	if r.cfg.MaxVerifyAttempts > 1 {
		maxRetries = uint64(r.cfg.MaxVerifyAttempts - 1)
	}

	verified := false
	operation := func() error {
		ok, err := r.verifier.Verify(ctx, url, mediaType)
		if err != nil {
			var ve *VerifyError
			if errors.As(err, &ve) && ve.Kind == "unsupported_platform" {
				return backoff.Permanent(err)
			}
			return err
		}
		verified = ok
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx)); err != nil {
		return false
	}
	return verified
}
