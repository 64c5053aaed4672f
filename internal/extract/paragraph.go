package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/civic-meetings/internal/classify"
	"github.com/pfrederiksen/civic-meetings/internal/detect"
	"github.com/pfrederiksen/civic-meetings/internal/meeting"
	"github.com/pfrederiksen/civic-meetings/internal/pattern"
)

// Paragraphs segments dense text blocks into per-date candidates. Bold date
// tokens act as segment boundaries: each segment spans from one date token
// to the next (or to the paragraph's end), and a segment's links are the
// anchors physically inside its span.
func Paragraphs(doc *goquery.Document, opts Options) []Candidate {
	year := contextYear(doc, opts)
	var candidates []Candidate

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if !pattern.DateAny.MatchString(p.Text()) {
			return
		}
		segments := splitSegments(p)
		if len(segments) == 0 {
			// No bold date boundaries: the whole paragraph is one span.
			segments = []span{{text: p.Text(), anchors: anchorsOf(p)}}
		}
		for _, seg := range segments {
			if c, ok := segmentCandidate(seg, year, opts); ok {
				candidates = append(candidates, c)
			}
		}
	})
	return candidates
}

// span is one date-delimited slice of a paragraph.
type span struct {
	heading string // the bold date token that opened the span
	text    string
	anchors []anchor
}

type anchor struct {
	href string
	text string
}

// splitSegments walks the paragraph's child nodes, opening a new span at
// every bold run that starts with a month token. Returns nil when fewer than
// two boundaries exist.
func splitSegments(p *goquery.Selection) []span {
	var spans []span
	var current *span
	boundaries := 0

	p.Contents().Each(func(_ int, node *goquery.Selection) {
		if node.Is("strong, b") {
			text := strings.TrimSpace(node.Text())
			if pattern.MonthAbbr.MatchString(text) || pattern.DateSimple.MatchString(text) {
				boundaries++
				spans = append(spans, span{heading: text})
				current = &spans[len(spans)-1]
				return
			}
		}
		if current == nil {
			return
		}
		current.text += " " + node.Text()
		current.anchors = append(current.anchors, anchorsOf(node)...)
	})

	if boundaries < 2 {
		return nil
	}
	return spans
}

func anchorsOf(node *goquery.Selection) []anchor {
	var anchors []anchor
	if node.Is("a") {
		if href, ok := node.Attr("href"); ok {
			anchors = append(anchors, anchor{href: href, text: strings.TrimSpace(node.Text())})
		}
		return anchors
	}
	node.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		anchors = append(anchors, anchor{href: href, text: strings.TrimSpace(a.Text())})
	})
	return anchors
}

func segmentCandidate(seg span, year int, opts Options) (Candidate, bool) {
	full := normalizeSpace(seg.heading + " " + seg.text)
	date, ok := meeting.ExtractDate(full, year)
	if !ok {
		return Candidate{}, false
	}
	if isCancelled(full) {
		return Candidate{}, false
	}

	var links []classify.Link
	seen := make(map[string]bool)
	for i, a := range seg.anchors {
		resolved := resolveHref(opts.BaseURL, a.href)
		if resolved == "" || seen[resolved] {
			continue
		}
		seen[resolved] = true
		links = append(links, classify.Link{URL: resolved, Text: a.text, Pos: i + 1})
	}

	title := segmentTitle(full, date)

	return Candidate{
		Pattern:  detect.Paragraph,
		Date:     date,
		RawTitle: title,
		Links:    links,
		DatePos:  0,
		Context:  full,
	}, true
}

// segmentTitle takes the first prose run of the segment that carries a
// meeting keyword, falling back to the leading text.
func segmentTitle(text, date string) string {
	for _, part := range strings.Split(text, " - ") {
		part = strings.TrimSpace(part)
		lower := strings.ToLower(part)
		if len(part) >= 8 && len(part) <= 150 && containsAnyWord(lower, pattern.MeetingKeywords) {
			return part
		}
	}
	if len(text) > 120 {
		text = text[:120]
	}
	return strings.TrimSpace(text)
}
