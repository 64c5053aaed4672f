// Package navigate decides, per site, how to reach the rest of a site's
// meeting data: follow pagination, switch year filters, or descend into
// detail pages. A visited set over normalized URLs prevents loops when a
// site's "next" control wraps around.
package navigate

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/civic-meetings/internal/config"
	"github.com/pfrederiksen/civic-meetings/internal/pattern"
)

// Kind is the type of navigation step to take next.
type Kind int

const (
	// None means the site is exhausted; stop.
	None Kind = iota
	// Page follows a pagination control; the fetched page replaces the
	// current one.
	Page
	// YearFilter selects an unvisited year/period filter; the fetched page
	// replaces the current one.
	YearFilter
	// Detail descends one level into a meeting's own page; extraction runs
	// there and control returns to the current page.
	Detail
)

// Action is one navigation decision.
type Action struct {
	Kind Kind
	URL  string
}

// Controller tracks navigation state for a single base URL.
type Controller struct {
	cfg       config.EngineConfig
	visited   map[string]bool
	pages     int
	years     int
	details   int
	startYear int
	endYear   int
}

// New creates a Controller for one site. startYear/endYear bound which
// year-filter controls are worth following.
func New(cfg config.EngineConfig, startYear, endYear int) *Controller {
	return &Controller{
		cfg:       cfg,
		visited:   make(map[string]bool),
		startYear: startYear,
		endYear:   endYear,
	}
}

// MarkVisited records a URL as processed so it is never offered again.
func (c *Controller) MarkVisited(u string) {
	c.visited[Normalize(u)] = true
}

// Visited reports whether a URL was already processed.
func (c *Controller) Visited(u string) bool {
	return c.visited[Normalize(u)]
}

// Next inspects the page and returns the next step, checking affordances in
// priority order: pagination first, then unvisited year filters, then
// detail links, then termination. Budgets bound each affordance type.
func (c *Controller) Next(doc *goquery.Document, baseURL string) Action {
	if u := c.paginationTarget(doc, baseURL); u != "" && c.pages < c.cfg.MaxPaginationPages {
		c.pages++
		return Action{Kind: Page, URL: u}
	}
	if u := c.yearFilterTarget(doc, baseURL); u != "" && c.years < c.cfg.MaxYearFilters {
		c.years++
		return Action{Kind: YearFilter, URL: u}
	}
	if u := c.detailTarget(doc, baseURL); u != "" && c.details < c.cfg.MaxDetailPages {
		c.details++
		return Action{Kind: Detail, URL: u}
	}
	return Action{Kind: None}
}

func (c *Controller) paginationTarget(doc *goquery.Document, baseURL string) string {
	for _, selector := range pattern.PaginationSelectors {
		target := ""
		doc.Find(selector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			full := resolve(baseURL, href)
			if full == "" || c.Visited(full) || Normalize(full) == Normalize(baseURL) {
				return true
			}
			target = full
			return false
		})
		if target != "" {
			return target
		}
	}
	return ""
}

// yearFilterTarget finds links whose text is a bare year within one year of
// the requested range. Dropdown-based year filters need browser interaction
// and belong to the fetch collaborator.
func (c *Controller) yearFilterTarget(doc *goquery.Document, baseURL string) string {
	target := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.TrimSpace(a.Text())
		if !pattern.YearStrict.MatchString(text) {
			return true
		}
		year := atoi(text)
		if year < c.startYear-1 || year > c.endYear+1 {
			return true
		}
		href, _ := a.Attr("href")
		full := resolve(baseURL, href)
		if full == "" || c.Visited(full) || Normalize(full) == Normalize(baseURL) {
			return true
		}
		target = full
		return false
	})
	return target
}

func (c *Controller) detailTarget(doc *goquery.Document, baseURL string) string {
	target := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		href, _ := a.Attr("href")
		lowerHref := strings.ToLower(href)

		isDetail := false
		for _, kw := range pattern.DetailKeywords {
			if strings.Contains(text, kw) {
				isDetail = true
				break
			}
		}
		if !isDetail && (strings.Contains(lowerHref, "detail") || strings.Contains(lowerHref, "event") ||
			strings.Contains(lowerHref, "meeting")) && pattern.DateAny.MatchString(a.Parent().Text()) {
			isDetail = true
		}
		if !isDetail {
			return true
		}

		full := resolve(baseURL, href)
		if full == "" || c.Visited(full) || Normalize(full) == Normalize(baseURL) {
			return true
		}
		target = full
		return false
	})
	return target
}

// Normalize strips fragments and trailing slashes and lowercases the host so
// trivially different spellings of one URL hit the same visited entry.
func Normalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

func resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(h).String()
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
