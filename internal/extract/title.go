package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/civic-meetings/internal/pattern"
)

var buttonWords = []string{"download", "view pdf", "click", "select", "filter", "previous version"}

// ExtractTitle pulls the most plausible meeting title out of a candidate's
// region. Preference order: a meeting-describing anchor, a text line carrying
// a meeting keyword, any early line that is mostly prose. The empty string
// means nothing usable was found; callers fall back to "Meeting on <date>".
func ExtractTitle(sel *goquery.Selection) string {
	title := titleFromAnchors(sel)
	if title != "" {
		return title
	}

	lines := textLines(sel)
	for _, line := range lines {
		if len(line) < 8 || len(line) > 150 {
			continue
		}
		lower := strings.ToLower(line)
		if containsAnyWord(lower, buttonWords) || lower == "view" {
			continue
		}
		if isNumericOnly(line) {
			continue
		}
		if containsAnyWord(lower, pattern.MeetingKeywords) {
			return line
		}
	}

	limit := len(lines)
	if limit > 5 {
		limit = 5
	}
	for _, line := range lines[:limit] {
		if len(line) < 10 || len(line) > 100 {
			continue
		}
		lower := strings.ToLower(line)
		if containsAnyWord(lower, []string{"download", "view", "click"}) {
			continue
		}
		if digitRatio(line) < 0.4 {
			return line
		}
	}
	return ""
}

// FallbackTitle is the last-resort title for a dated candidate.
func FallbackTitle(date string) string {
	return "Meeting on " + date
}

func titleFromAnchors(sel *goquery.Selection) string {
	title := ""
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		lowerHref := strings.ToLower(href)
		if !strings.Contains(lowerHref, "agenda") && !strings.Contains(lowerHref, "viewfile") &&
			!strings.Contains(lowerHref, "meeting") {
			return true
		}
		text := normalizeSpace(a.Text())
		if len(text) < 10 || len(text) > 150 {
			return true
		}
		lower := strings.ToLower(text)
		if !containsAnyWord(lower, pattern.MeetingKeywords) || containsAnyWord(lower, buttonWords) {
			return true
		}
		title = text
		return false
	})
	return title
}

func textLines(sel *goquery.Selection) []string {
	var lines []string
	for _, raw := range strings.Split(sel.Text(), "\n") {
		line := normalizeSpace(raw)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func containsAnyWord(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func isNumericOnly(s string) bool {
	stripped := strings.NewReplacer("/", "", "-", "", " ", "", ",", "", ".", "").Replace(s)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func digitRatio(s string) float64 {
	if s == "" {
		return 1
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len(s))
}
