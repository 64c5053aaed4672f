// Package extract turns detected page structures into raw candidate meeting
// records. Each structural pattern (table, calendar, list, paragraph) has its
// own extractor; a container scan serves as the fallback when no structural
// pattern matched. Candidates without a recognizable date are dropped here,
// before validation ever sees them.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/civic-meetings/internal/classify"
	"github.com/pfrederiksen/civic-meetings/internal/detect"
	"github.com/pfrederiksen/civic-meetings/internal/meeting"
	"github.com/pfrederiksen/civic-meetings/internal/pattern"
)

// Candidate is an extracted-but-unvalidated meeting: a date, a raw title,
// and the nearby links awaiting classification. Ephemeral, consumed within
// one page's processing.
type Candidate struct {
	Pattern  detect.Pattern
	Date     string // canonical YYYY-MM-DD, always set
	RawTitle string
	Links    []classify.Link
	DatePos  int    // DOM position of the date token among the links
	Context  string // surrounding text, lowercased by the classifier
}

// Options carries the per-request extraction context.
type Options struct {
	BaseURL   string
	StartDate string // YYYY-MM-DD, used for context-year inference
	EndDate   string
}

func (o Options) startYear() int {
	return yearOf(o.StartDate)
}

func (o Options) endYear() int {
	return yearOf(o.EndDate)
}

func yearOf(dateISO string) int {
	t := meeting.ParseFlexible(dateISO)
	if t.IsZero() {
		return 0
	}
	return t.Year()
}

// Run applies every matching pattern extractor and unions the candidates.
// When patterns is empty the container fallback scan runs instead. Ordering
// follows pattern declaration order, then document order within a pattern.
func Run(doc *goquery.Document, patterns []detect.Pattern, opts Options) []Candidate {
	if len(patterns) == 0 {
		return Containers(doc, opts)
	}

	var all []Candidate
	for _, p := range patterns {
		switch p {
		case detect.Table:
			all = append(all, Tables(doc, opts)...)
		case detect.Calendar:
			all = append(all, CalendarEntries(doc, opts)...)
		case detect.List:
			all = append(all, ListItems(doc, opts)...)
		case detect.Paragraph:
			all = append(all, Paragraphs(doc, opts)...)
		case detect.Container:
			all = append(all, Containers(doc, opts)...)
		}
	}
	return all
}

// resolveHref makes href absolute against base. Returns "" for hrefs that
// could never be usable links (fragments, script/mail schemes) so callers
// can skip them before classification.
func resolveHref(base, href string) string {
	if !classify.Usable(href) {
		return ""
	}
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

// collectLinks gathers the anchors within sel as classification input,
// positions numbered in document order starting at startPos.
func collectLinks(sel *goquery.Selection, baseURL string, startPos int) []classify.Link {
	var links []classify.Link
	seen := make(map[string]bool)
	sel.Find("a[href]").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		full := resolveHref(baseURL, href)
		if full == "" || seen[full] {
			return
		}
		seen[full] = true
		links = append(links, classify.Link{
			URL:  full,
			Text: strings.TrimSpace(a.Text()),
			Pos:  startPos + i,
		})
	})
	return links
}

// enhanceLinks appends links found on the parent and adjacent siblings of
// sel, at positions after the candidate's own links so proximity scoring
// still favors the candidate's own anchors.
func enhanceLinks(sel *goquery.Selection, baseURL string, own []classify.Link) []classify.Link {
	seen := make(map[string]bool, len(own))
	for _, l := range own {
		seen[l.URL] = true
	}
	next := len(own) + 1
	appendFrom := func(region *goquery.Selection) {
		if region == nil || region.Length() == 0 {
			return
		}
		for _, l := range collectLinks(region, baseURL, next) {
			if seen[l.URL] {
				continue
			}
			seen[l.URL] = true
			own = append(own, l)
			next = l.Pos + 1
		}
	}
	appendFrom(sel.Prev())
	appendFrom(sel.Next())
	appendFrom(sel.Parent())
	return own
}

// isCancelled reports whether the region's text marks a cancelled or
// postponed meeting.
func isCancelled(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range pattern.CancelledKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// contextYear finds the year the page is displaying: a selected option in a
// year dropdown first, then the first heading mentioning a year. Out-of-range
// years fall back to the request's start year.
func contextYear(doc *goquery.Document, opts Options) int {
	year := 0
	doc.Find("select option[selected]").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		if m := pattern.Year.FindStringSubmatch(opt.Text()); m != nil {
			year = atoi(m[1])
			return false
		}
		return true
	})
	if year == 0 {
		doc.Find("h1, h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
			if m := pattern.Year.FindStringSubmatch(h.Text()); m != nil {
				year = atoi(m[1])
				return false
			}
			return true
		})
	}
	if start, end := opts.startYear(), opts.endYear(); year < start || year > end {
		year = start
	}
	return year
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
