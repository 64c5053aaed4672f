package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/civic-meetings/internal/classify"
	"github.com/pfrederiksen/civic-meetings/internal/detect"
	"github.com/pfrederiksen/civic-meetings/internal/meeting"
)

var (
	dateHeaderWords  = []string{"date", "when", "day"}
	titleHeaderWords = []string{"meeting", "title", "name", "event", "description", "type"}
)

// columnMap records which columns the table's header row assigns to the date
// and title. Index -1 means the header gave no assignment and positional
// heuristics apply.
type columnMap struct {
	date  int
	title int
}

// Tables extracts one candidate per data row. Columns are mapped by header
// keywords, falling back to the first date-like cell for the date and the
// longest text cell for the title.
func Tables(doc *goquery.Document, opts Options) []Candidate {
	year := contextYear(doc, opts)
	var candidates []Candidate

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}
		cols := mapColumns(rows.First())

		rows.Each(func(rowIdx int, row *goquery.Selection) {
			if rowIdx == 0 && row.Find("th").Length() > 0 {
				return
			}
			if c, ok := rowCandidate(row, cols, year, opts); ok {
				candidates = append(candidates, c)
			}
		})
	})
	return candidates
}

func mapColumns(header *goquery.Selection) columnMap {
	cols := columnMap{date: -1, title: -1}
	header.Find("th, td").Each(func(i int, cell *goquery.Selection) {
		text := strings.ToLower(normalizeSpace(cell.Text()))
		if cols.date == -1 && containsAnyWord(text, dateHeaderWords) {
			cols.date = i
		}
		if cols.title == -1 && containsAnyWord(text, titleHeaderWords) {
			cols.title = i
		}
	})
	return cols
}

func rowCandidate(row *goquery.Selection, cols columnMap, year int, opts Options) (Candidate, bool) {
	cells := row.Find("td, th")
	if cells.Length() == 0 {
		return Candidate{}, false
	}

	date, datePos := rowDate(cells, cols, year)
	if date == "" {
		return Candidate{}, false
	}
	rowText := normalizeSpace(row.Text())
	if isCancelled(rowText) {
		return Candidate{}, false
	}

	title := rowTitle(cells, cols, row)
	if title == "" {
		title = FallbackTitle(date)
	}
	links := tableLinks(cells, opts.BaseURL)
	links = enhanceLinks(row, opts.BaseURL, links)

	return Candidate{
		Pattern:  detect.Table,
		Date:     date,
		RawTitle: title,
		Links:    links,
		DatePos:  datePos,
		Context:  rowText,
	}, true
}

// rowDate finds the row's date and the cell index it came from: the header
// assigned column first, then the first date-like cell.
func rowDate(cells *goquery.Selection, cols columnMap, year int) (string, int) {
	if cols.date >= 0 && cols.date < cells.Length() {
		if d, ok := meeting.ExtractDate(cells.Eq(cols.date).Text(), year); ok {
			return d, cols.date
		}
	}
	date := ""
	pos := 0
	cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
		if d, ok := meeting.ExtractDate(cell.Text(), year); ok {
			date = d
			pos = i
			return false
		}
		return true
	})
	return date, pos
}

// rowTitle prefers the header-assigned title column, then an anchor-derived
// or keyword-bearing line, then the longest text cell.
func rowTitle(cells *goquery.Selection, cols columnMap, row *goquery.Selection) string {
	if cols.title >= 0 && cols.title < cells.Length() {
		if t := normalizeSpace(cells.Eq(cols.title).Text()); t != "" {
			return t
		}
	}
	if t := ExtractTitle(row); t != "" {
		return t
	}
	longest := ""
	cells.Each(func(_ int, cell *goquery.Selection) {
		if t := normalizeSpace(cell.Text()); len(t) > len(longest) {
			longest = t
		}
	})
	return longest
}

// tableLinks gathers anchors per cell so each link's position is its cell
// index, keeping proximity scoring aligned with the date cell.
func tableLinks(cells *goquery.Selection, baseURL string) []classify.Link {
	var links []classify.Link
	seen := make(map[string]bool)
	cells.Each(func(i int, cell *goquery.Selection) {
		cell.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			full := resolveHref(baseURL, href)
			if full == "" || seen[full] {
				return
			}
			seen[full] = true
			links = append(links, classify.Link{
				URL:  full,
				Text: strings.TrimSpace(a.Text()),
				Pos:  i,
			})
		})
	})
	return links
}
