package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/civic-meetings/internal/detect"
	"github.com/pfrederiksen/civic-meetings/internal/meeting"
	"github.com/pfrederiksen/civic-meetings/internal/pattern"
)

// CalendarEntries walks year heading → month heading → entry hierarchies.
// Each dated entry becomes one candidate; the date is composed from the
// year/month context plus the entry's own day token.
func CalendarEntries(doc *goquery.Document, opts Options) []Candidate {
	var candidates []Candidate

	doc.Find("h1, h2, h3").Each(func(_ int, heading *goquery.Selection) {
		m := pattern.YearStrict.FindStringSubmatch(heading.Text())
		if m == nil {
			return
		}
		year := atoi(m[1])
		currentMonth := ""

		// Siblings up to the next year heading form this year's section.
		heading.NextUntil("h1, h2").Each(func(_ int, elem *goquery.Selection) {
			text := normalizeSpace(elem.Text())

			if elem.Is("h3, h4") {
				if mm := pattern.MonthFull.FindStringSubmatch(text); mm != nil {
					currentMonth = mm[1]
				}
				return
			}
			if currentMonth == "" {
				return
			}
			candidates = append(candidates, monthEntries(elem, currentMonth, year, opts)...)
		})
	})
	return candidates
}

// monthEntries extracts dated anchors within one element of a month section.
func monthEntries(elem *goquery.Selection, month string, year int, opts Options) []Candidate {
	var candidates []Candidate
	seen := make(map[string]bool)

	elem.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		linkText := normalizeSpace(a.Text())
		date, ok := entryDate(linkText, month, year)
		if !ok || seen[date] {
			return
		}
		region := a.Parent()
		if region.Length() == 0 {
			region = elem
		}
		regionText := normalizeSpace(region.Text())
		if isCancelled(regionText) {
			return
		}
		seen[date] = true

		links := collectLinks(region, opts.BaseURL, 0)
		links = enhanceLinks(region, opts.BaseURL, links)

		title := ExtractTitle(region)
		if title == "" {
			title = fmt.Sprintf("%s %d, %d - Board Meeting", month, dayOf(date), year)
		}

		candidates = append(candidates, Candidate{
			Pattern:  detect.Calendar,
			Date:     date,
			RawTitle: title,
			Links:    links,
			DatePos:  0,
			Context:  regionText,
		})
	})
	return candidates
}

// entryDate resolves an entry's text to a date within the section's
// year/month context. A bare day number composes with the context; a full
// token must agree with the context year.
func entryDate(text, month string, year int) (string, bool) {
	if d, ok := meeting.ExtractDate(text, year); ok {
		return d, true
	}
	day := atoi(strings.TrimSpace(text))
	if day == 0 {
		return "", false
	}
	if d, ok := meeting.ExtractDate(fmt.Sprintf("%s %d, %d", month, day, year), 0); ok {
		return d, true
	}
	return "", false
}

func dayOf(dateISO string) int {
	t := meeting.ParseFlexible(dateISO)
	if t.IsZero() {
		return 0
	}
	return t.Day()
}
