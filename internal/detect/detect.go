// Package detect inspects a fetched page's structure and reports which
// extraction patterns apply. Patterns are independent: a page can match
// several, and every matching extractor runs with the outputs unioned
// before deduplication.
package detect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/civic-meetings/internal/config"
	"github.com/pfrederiksen/civic-meetings/internal/pattern"
)

// Pattern identifies one structural extraction strategy.
type Pattern string

const (
	Table     Pattern = "table"
	Calendar  Pattern = "calendar"
	List      Pattern = "list"
	Paragraph Pattern = "paragraph"

	// Container is the fallback scan over generic meeting-like DOM
	// containers, used when no structural pattern matches.
	Container Pattern = "container"
)

// Detector applies the structural detection rules with configured cutoffs.
type Detector struct {
	cfg config.DetectorConfig
}

// New creates a Detector.
func New(cfg config.DetectorConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect returns every structural pattern the page matches, in declaration
// order. An empty result means the page is unstructured; callers fall back
// to the Container scan and report the page unstructured if that also
// yields nothing.
func (d *Detector) Detect(doc *goquery.Document) []Pattern {
	var patterns []Pattern

	if d.hasLargeTable(doc) {
		patterns = append(patterns, Table)
	}
	if d.hasCalendarHierarchy(doc) {
		patterns = append(patterns, Calendar)
	}
	if d.hasDatedList(doc) {
		patterns = append(patterns, List)
	}
	if d.hasDenseParagraph(doc) {
		patterns = append(patterns, Paragraph)
	}
	return patterns
}

func (d *Detector) hasLargeTable(doc *goquery.Document) bool {
	found := false
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if table.Find("tr").Length() > d.cfg.TableMinRows {
			found = true
			return false
		}
		return true
	})
	return found
}

func (d *Detector) hasCalendarHierarchy(doc *goquery.Document) bool {
	years := 0
	doc.Find("h1, h2, h3").Each(func(_ int, h *goquery.Selection) {
		if pattern.YearStrict.MatchString(h.Text()) {
			years++
		}
	})
	if years == 0 {
		return false
	}
	months := 0
	doc.Find("h3, h4").Each(func(_ int, h *goquery.Selection) {
		if pattern.MonthFull.MatchString(strings.TrimSpace(h.Text())) {
			months++
		}
	})
	return months > 0
}

func (d *Detector) hasDatedList(doc *goquery.Document) bool {
	dated := 0
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if pattern.DateAny.MatchString(li.Text()) {
			dated++
		}
	})
	return dated > d.cfg.ListMinDatedItems
}

func (d *Detector) hasDenseParagraph(doc *goquery.Document) bool {
	found := false
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if p.Find("strong, b").Length() <= d.cfg.ParagraphMinBold {
			return true
		}
		if len(pattern.MonthAny.FindAllString(p.Text(), -1)) > d.cfg.ParagraphMinDates {
			found = true
			return false
		}
		return true
	})
	return found
}
