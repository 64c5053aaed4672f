// Package engine orchestrates the scraping pipeline: it sequences base
// URLs, enforces per-domain rate limits, retries fetches with exponential
// backoff, runs detection, extraction, classification, validation, and
// deduplication per page, and reports each finalized domain for incremental
// persistence. Processing is strictly sequential; the per-domain RateState
// map is the only cross-request state and needs no locking.
package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/civic-meetings/internal/classify"
	"github.com/pfrederiksen/civic-meetings/internal/config"
	"github.com/pfrederiksen/civic-meetings/internal/dedupe"
	"github.com/pfrederiksen/civic-meetings/internal/detect"
	"github.com/pfrederiksen/civic-meetings/internal/extract"
	"github.com/pfrederiksen/civic-meetings/internal/logger"
	"github.com/pfrederiksen/civic-meetings/internal/meeting"
	"github.com/pfrederiksen/civic-meetings/internal/navigate"
	"github.com/pfrederiksen/civic-meetings/internal/sites"
	"github.com/pfrederiksen/civic-meetings/internal/validate"
)

// Request is one scraping invocation: an inclusive date range and the base
// URLs to process, in order.
type Request struct {
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	BaseURLs  []string `json:"base_urls"`
}

// Validate checks the request is well-formed. Failures here are
// configuration errors and abort the run.
func (r Request) Validate() error {
	if t := meeting.ParseFlexible(r.StartDate); t.IsZero() || len(r.StartDate) != 10 {
		return fmt.Errorf("start_date must be YYYY-MM-DD, got %q", r.StartDate)
	}
	if t := meeting.ParseFlexible(r.EndDate); t.IsZero() || len(r.EndDate) != 10 {
		return fmt.Errorf("end_date must be YYYY-MM-DD, got %q", r.EndDate)
	}
	if r.StartDate > r.EndDate {
		return fmt.Errorf("start_date %s is after end_date %s", r.StartDate, r.EndDate)
	}
	if len(r.BaseURLs) == 0 {
		return fmt.Errorf("base_urls must not be empty")
	}
	return nil
}

// RateState is the per-domain rate limiting record.
type RateState struct {
	LastRequest time.Time
	MinInterval time.Duration
}

// OnDomainComplete is invoked after each base URL finalizes, with the
// result and its 1-based position, for incremental persistence.
type OnDomainComplete func(result meeting.DomainResult, index, total int)

// Engine runs the pipeline.
type Engine struct {
	cfg        config.Config
	fetcher    PageFetcher
	registry   *sites.Registry
	detector   *detect.Detector
	classifier *classify.Classifier
	rates      map[string]*RateState
	sleep      func(time.Duration)
	now        func() time.Time
}

// New creates an Engine. registry may be nil to disable site-specific
// handlers.
func New(cfg config.Config, fetcher PageFetcher, registry *sites.Registry) *Engine {
	if registry == nil {
		registry = sites.NewRegistry()
	}
	return &Engine{
		cfg:        cfg,
		fetcher:    fetcher,
		registry:   registry,
		detector:   detect.New(cfg.Detector),
		classifier: classify.New(cfg.Classifier),
		rates:      make(map[string]*RateState),
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// ScrapeMeetings processes every base URL sequentially. A failing domain
// yields an empty DomainResult and the run continues; results preserve
// input order.
func (e *Engine) ScrapeMeetings(ctx context.Context, req Request, onComplete OnDomainComplete) ([]meeting.DomainResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Info("scrape started", logger.Fields{
		"sites":      len(req.BaseURLs),
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
	})

	results := make([]meeting.DomainResult, 0, len(req.BaseURLs))
	for i, baseURL := range req.BaseURLs {
		result := e.scrapeSite(ctx, baseURL, req.StartDate, req.EndDate)
		results = append(results, result)

		logger.Info("domain complete", logger.Fields{
			"base_url": baseURL,
			"meetings": len(result.Medias),
			"progress": fmt.Sprintf("%d/%d", i+1, len(req.BaseURLs)),
		})
		if onComplete != nil {
			onComplete(result, i+1, len(req.BaseURLs))
		}
	}

	total := 0
	for _, r := range results {
		total += len(r.Medias)
	}
	logger.Info("scrape finished", logger.Fields{"sites": len(results), "meetings": total})
	return results, nil
}

// scrapeSite runs the full pipeline for one base URL. Any failure degrades
// to an empty result; it never aborts the run.
func (e *Engine) scrapeSite(ctx context.Context, baseURL, startDate, endDate string) meeting.DomainResult {
	result := meeting.DomainResult{BaseURL: baseURL, Medias: []meeting.Record{}}

	opts := extract.Options{BaseURL: baseURL, StartDate: startDate, EndDate: endDate}
	nav := navigate.New(e.cfg.Engine, yearOf(startDate), yearOf(endDate))

	doc, err := e.fetchDoc(ctx, baseURL)
	if err != nil {
		logger.Error("base url unreachable", logger.Fields{
			"base_url": baseURL, "kind": string(KindOf(err)),
		}, err)
		return result
	}
	nav.MarkVisited(baseURL)

	candidates := e.extractPage(doc, baseURL, opts)

	// Navigation loop: pagination, year filters, then detail descent, each
	// bounded by configuration. Detail pages contribute candidates but do
	// not replace the current listing.
	maxSteps := e.cfg.Engine.MaxPaginationPages + e.cfg.Engine.MaxYearFilters + e.cfg.Engine.MaxDetailPages
	for step := 0; step < maxSteps; step++ {
		action := nav.Next(doc, baseURL)
		if action.Kind == navigate.None {
			break
		}
		nav.MarkVisited(action.URL)

		stepDoc, err := e.fetchDoc(ctx, action.URL)
		if err != nil {
			logger.Warn("navigation fetch failed", logger.Fields{
				"url": action.URL, "kind": string(KindOf(err)),
			})
			continue
		}
		candidates = append(candidates, e.extractPage(stepDoc, baseURL, opts)...)
		if action.Kind != navigate.Detail {
			doc = stepDoc
		}
	}

	validator := validate.New(startDate, endDate)
	var records []meeting.Record
	for _, c := range candidates {
		links := e.classifier.Classify(c.Links, c.Context, c.DatePos)
		res := validator.Validate(c, links)
		if !res.Accepted() {
			logger.IncrCounter("validate.rejected." + string(res.Reason))
			logger.Debug("candidate rejected", logger.Fields{
				"base_url": baseURL,
				"date":     c.Date,
				"reason":   string(res.Reason),
			})
			continue
		}
		records = append(records, res.Record)
	}

	result.Medias = dedupe.Deduplicate(records)
	return result
}

// extractPage detects the page's patterns and runs the matching extractors,
// or the site-specific handler when the domain has one registered.
func (e *Engine) extractPage(doc *goquery.Document, baseURL string, opts extract.Options) []extract.Candidate {
	if handler, ok := e.registry.Lookup(baseURL); ok {
		logger.Debug("site handler matched", logger.Fields{"handler": handler.Name, "base_url": baseURL})
		return handler.Extract(doc, opts)
	}

	patterns := e.detector.Detect(doc)
	candidates := extract.Run(doc, patterns, opts)
	if len(patterns) == 0 && len(candidates) == 0 {
		logger.Info("page unstructured", logger.Fields{"base_url": baseURL})
		logger.IncrCounter("detect.unstructured")
	}
	return candidates
}

// fetchDoc fetches a URL with the per-domain rate limit and the retry
// policy applied, and parses it.
func (e *Engine) fetchDoc(ctx context.Context, pageURL string) (*goquery.Document, error) {
	page, err := e.fetchWithRetry(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %s: %w", pageURL, err)
	}
	return doc, nil
}

// fetchWithRetry applies bounded exponential backoff. Bot-detection
// failures rotate the fetcher's identity before the next attempt;
// non-retriable failures abort immediately.
func (e *Engine) fetchWithRetry(ctx context.Context, pageURL string) (*Page, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.Engine.InitialBackoff
	maxRetries := uint64(0)
	if e.cfg.Engine.MaxFetchAttempts > 1 {
		maxRetries = uint64(e.cfg.Engine.MaxFetchAttempts - 1)
	}

	attempt := 0
	var page *Page
	operation := func() error {
		attempt++
		e.waitTurn(pageURL)

		fetched, err := e.fetcher.Fetch(ctx, pageURL)
		if err == nil {
			page = fetched
			return nil
		}

		kind := KindOf(err)
		logger.IncrCounter("fetch.error." + string(kind))
		if !Retriable(kind) {
			return backoff.Permanent(err)
		}
		if NeedsRotation(kind) {
			logger.Warn("rotating fetcher identity", logger.Fields{
				"url": pageURL, "kind": string(kind), "attempt": attempt,
			})
			e.fetcher.Rotate()
		}
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
	if err != nil {
		return nil, err
	}
	logger.IncrCounter("fetch.ok")
	return page, nil
}

// waitTurn enforces the minimum inter-request interval for the URL's
// domain. Plain read-then-write: execution is single-threaded.
func (e *Engine) waitTurn(pageURL string) {
	domain := domainOf(pageURL)
	rs, ok := e.rates[domain]
	if !ok {
		rs = &RateState{MinInterval: e.cfg.Engine.MinRequestInterval}
		e.rates[domain] = rs
	}
	if wait := rs.MinInterval - e.now().Sub(rs.LastRequest); wait > 0 {
		e.sleep(wait)
	}
	rs.LastRequest = e.now()
}

func domainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.ToLower(u.Host)
}

func yearOf(dateISO string) int {
	t := meeting.ParseFlexible(dateISO)
	if t.IsZero() {
		return 0
	}
	return t.Year()
}
