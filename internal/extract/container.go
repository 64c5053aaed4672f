package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/civic-meetings/internal/detect"
	"github.com/pfrederiksen/civic-meetings/internal/meeting"
	"github.com/pfrederiksen/civic-meetings/internal/pattern"
)

// Containers is the fallback scan for pages no structural pattern matched:
// it collects generic meeting-like DOM containers (rows, list items,
// meeting-classed divs, elements with date attributes, parents of <time>
// and dated anchors) and extracts a candidate from each dated one.
func Containers(doc *goquery.Document, opts Options) []Candidate {
	year := contextYear(doc, opts)
	var candidates []Candidate
	seenDates := make(map[string]map[string]bool) // date -> title set

	for _, sel := range containerRegions(doc) {
		text := normalizeSpace(sel.Text())
		if !looksLikeMeetingContainer(sel, text) {
			continue
		}
		date, ok := containerDate(sel, year)
		if !ok {
			continue
		}
		if isCancelled(text) {
			continue
		}

		title := ExtractTitle(sel)
		if title == "" {
			title = FallbackTitle(date)
		}
		// Nested containers surface the same meeting repeatedly; keep the
		// first, most specific region for each date+title.
		if seenDates[date][strings.ToLower(title)] {
			continue
		}
		if seenDates[date] == nil {
			seenDates[date] = make(map[string]bool)
		}
		seenDates[date][strings.ToLower(title)] = true

		links := collectLinks(sel, opts.BaseURL, 0)
		links = enhanceLinks(sel, opts.BaseURL, links)

		candidates = append(candidates, Candidate{
			Pattern:  detect.Container,
			Date:     date,
			RawTitle: title,
			Links:    links,
			DatePos:  0,
			Context:  text,
		})
	}
	return candidates
}

// containerRegions gathers candidate regions in document order without
// duplicates.
func containerRegions(doc *goquery.Document) []*goquery.Selection {
	var regions []*goquery.Selection
	seenNodes := make(map[interface{}]bool)

	add := func(sel *goquery.Selection) {
		if sel.Length() == 0 {
			return
		}
		node := sel.Get(0)
		if seenNodes[node] {
			return
		}
		seenNodes[node] = true
		regions = append(regions, sel)
	}

	doc.Find("tr, li, article, section").Each(func(_ int, sel *goquery.Selection) { add(sel) })

	doc.Find("div[class], div[id]").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")
		if pattern.MeetingDivRegexp.MatchString(class) || pattern.MeetingDivRegexp.MatchString(id) {
			add(sel)
		}
	})

	doc.Find("[data-date], [data-meeting-date]").Each(func(_ int, sel *goquery.Selection) { add(sel) })

	doc.Find("time").Each(func(_ int, sel *goquery.Selection) { add(sel.Parent()) })

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if pattern.DateAny.MatchString(a.Text()) {
			add(a.Parent())
		}
	})
	return regions
}

// looksLikeMeetingContainer filters regions down to plausible meeting
// entries: a date token is decisive, a meeting keyword with links or enough
// text is suggestive, and a data attribute is trusted.
func looksLikeMeetingContainer(sel *goquery.Selection, text string) bool {
	if len(text) < 3 {
		return false
	}
	lower := strings.ToLower(text)

	if pattern.DateAny.MatchString(lower) {
		return true
	}
	if containsAnyWord(lower, pattern.MeetingKeywords) {
		if sel.Find("a[href]").Length() > 0 || len(text) > 10 {
			return true
		}
	}
	if _, ok := sel.Attr("data-date"); ok {
		return true
	}
	if _, ok := sel.Attr("data-meeting-date"); ok {
		return true
	}
	return false
}

// containerDate prefers machine-readable date attributes over text tokens.
func containerDate(sel *goquery.Selection, year int) (string, bool) {
	for _, attr := range []string{"data-date", "data-meeting-date", "datetime"} {
		if v, ok := sel.Attr(attr); ok {
			if d, ok := attrDate(v, year); ok {
				return d, true
			}
		}
	}
	if dt, ok := sel.Find("time[datetime]").Attr("datetime"); ok {
		if d, ok := attrDate(dt, year); ok {
			return d, true
		}
	}
	return meeting.ExtractDate(sel.Text(), year)
}

// attrDate parses a machine-readable date attribute, dropping any time
// component ("2024-11-20T18:00:00" parses as 2024-11-20).
func attrDate(v string, year int) (string, bool) {
	v = strings.TrimSpace(v)
	if i := strings.IndexAny(v, "T "); i > 0 {
		v = v[:i]
	}
	if t := meeting.ParseFlexible(v); !t.IsZero() {
		return t.Format(meeting.ISODate), true
	}
	return meeting.ExtractDate(v, year)
}
