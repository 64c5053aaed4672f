// Package meeting defines the canonical meeting record produced by the
// extraction pipeline, along with the title and date normalization shared by
// every extractor.
package meeting

import (
	"regexp"
	"strings"
)

// Record is a single validated meeting. Dates are canonical YYYY-MM-DD with
// no time component. At least one of the URL fields is populated once a
// record has passed validation.
type Record struct {
	MeetingURL string `json:"meeting_url,omitempty"`
	AgendaURL  string `json:"agenda_url,omitempty"`
	MinutesURL string `json:"minutes_url,omitempty"`
	Title      string `json:"title"`
	Date       string `json:"date"`
}

// DomainResult holds all meetings extracted for one base URL, in discovery
// order. One DomainResult is appended to the output per input URL.
type DomainResult struct {
	BaseURL string   `json:"base_url"`
	Medias  []Record `json:"medias"`
}

// Key returns the deduplication grouping key: date plus the
// lowercase-trimmed title.
func (r Record) Key() string {
	return r.Date + "|" + strings.ToLower(strings.TrimSpace(r.Title))
}

// URLs returns the non-empty link fields in field order.
func (r Record) URLs() []string {
	urls := make([]string, 0, 3)
	for _, u := range []string{r.MeetingURL, r.AgendaURL, r.MinutesURL} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// HasLink reports whether any link field is populated.
func (r Record) HasLink() bool {
	return r.MeetingURL != "" || r.AgendaURL != "" || r.MinutesURL != ""
}

var (
	postedPattern = regexp.MustCompile(`(?i)Posted\s+\w+\s+\d{1,2},?\s+\d{4}\s+\d{1,2}:\d{2}\s+[AP]M`)

	datePrefixes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\s*[-—–]?\s*`),
		regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*[-—–]?\s*`),
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s*[-—–]?\s*`),
	}

	whitespacePattern = regexp.MustCompile(`\s+`)
	edgeDashPattern   = regexp.MustCompile(`^[-—–\s]+|[-—–\s]+$`)
)

// CleanTitle normalizes a scraped title: strips non-ASCII artifacts,
// "Posted ..." timestamps, and redundant leading date tokens, then collapses
// whitespace. Returns "" when nothing usable remains.
func CleanTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r < 128:
			b.WriteRune(r)
		case r == ' ' || r == ' ' || r == '​':
			b.WriteByte(' ')
		case r == '–' || r == '—':
			b.WriteByte('-')
		}
	}
	cleaned := postedPattern.ReplaceAllString(b.String(), "")
	for _, p := range datePrefixes {
		cleaned = p.ReplaceAllString(cleaned, "")
	}
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = edgeDashPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) > 200 {
		cleaned = cleaned[:197] + "..."
	}
	if len(cleaned) < 3 {
		return ""
	}
	return cleaned
}
