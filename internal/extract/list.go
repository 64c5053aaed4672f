package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/civic-meetings/internal/detect"
	"github.com/pfrederiksen/civic-meetings/internal/meeting"
)

// ListItems extracts one candidate per dated list item. The item's primary
// text becomes the title and all anchors within the item become the
// candidate's links.
func ListItems(doc *goquery.Document, opts Options) []Candidate {
	year := contextYear(doc, opts)
	var candidates []Candidate

	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		// Skip wrapper items whose date belongs to a nested list.
		if li.Find("li").Length() > 0 {
			return
		}
		date, ok := meeting.ExtractDate(li.Text(), year)
		if !ok {
			return
		}
		text := normalizeSpace(li.Text())
		if isCancelled(text) {
			return
		}

		links := collectLinks(li, opts.BaseURL, 0)
		links = enhanceLinks(li, opts.BaseURL, links)

		title := ExtractTitle(li)
		if title == "" {
			title = FallbackTitle(date)
		}

		candidates = append(candidates, Candidate{
			Pattern:  detect.List,
			Date:     date,
			RawTitle: title,
			Links:    links,
			DatePos:  0,
			Context:  text,
		})
	})
	return candidates
}
