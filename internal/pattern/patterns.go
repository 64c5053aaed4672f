// Package pattern centralizes the regular expressions, keyword tables, and
// platform lookups shared by the detection, extraction, and classification
// stages. Keeping them in one place keeps the heuristics tunable and the
// extractors free of inline magic strings.
package pattern

import "regexp"

// Date regexes. The "WithYear" set resolves to a full calendar date on its
// own; the "WithoutYear" set needs a context year supplied by the page.
var (
	DateISO      = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	DateUS       = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	DateDashed   = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`)
	DateLongName = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})\b`)
	DateAbbrName = regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2}),?\s+(\d{4})\b`)

	DateLongNameNoYear = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2})\b`)
	DateAbbrNameNoYear = regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2})\b`)

	// DateSimple matches numeric slash/dash dates, used for cheap "does this
	// element mention a date at all" checks during detection.
	DateSimple = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)

	// DateAny is the combined quick-detection pattern covering numeric and
	// month-name forms.
	DateAny = regexp.MustCompile(`(?i)\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2}|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}`)

	// DateValidation enforces the canonical YYYY-MM-DD output form.
	DateValidation = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Year and month regexes for calendar-hierarchy walking.
var (
	Year       = regexp.MustCompile(`\b(20\d{2})\b`)
	YearStrict = regexp.MustCompile(`^\s*(20\d{2})\s*$`)
	MonthFull  = regexp.MustCompile(`(?i)^(January|February|March|April|May|June|July|August|September|October|November|December)`)
	MonthAbbr  = regexp.MustCompile(`(?i)^(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`)
	MonthAny   = regexp.MustCompile(`(?i)(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`)
)

// MeetingKeywords mark text that is likely describing a meeting; used by
// container detection and title extraction.
var MeetingKeywords = []string{
	"meeting", "agenda", "minutes", "board", "council",
	"session", "hearing", "commission", "committee",
}

// Role keywords for link classification.
var (
	AgendaKeywords = []string{
		"agenda", "packet", "notice", "proposed", "docs",
		"document", "board book", "material",
	}
	MinutesKeywords = []string{
		"minutes", "summary", "transcript", "notes", "action", "record",
	}
	VideoKeywords = []string{
		"video", "watch", "recording", "stream", "media",
		"play", "live", "broadcast",
	}
)

// VideoPlatforms are hosting domains that imply the video role regardless of
// anchor text. Fixed lookup, extended deliberately rather than guessed.
var VideoPlatforms = []string{
	"youtube", "vimeo", "swagit", "granicus", "civicclerk",
	"champds", "viebit", "sharepoint",
}

// DocumentPlatforms are agenda/minutes hosting services.
var DocumentPlatforms = []string{
	"boarddocs", "legistar", "eboardsolutions", "civicweb", "iqm2",
}

// File extensions mapped to role expectations.
var (
	DocumentExtensions = []string{".pdf", ".doc", ".docx"}
	MediaExtensions    = []string{".mp4", ".m3u8", ".webm", ".mp3", ".wav", ".m4v", ".mov"}
)

// MeetingDivPatterns are class/id fragments that mark likely meeting
// containers during the fallback container scan.
var MeetingDivPatterns = []string{
	"meeting", "agenda", "item", "event", "row", "card", "calendar", "session", "board",
}

// MeetingDivRegexp matches any of MeetingDivPatterns case-insensitively.
var MeetingDivRegexp = regexp.MustCompile(`(?i)meeting|agenda|item|event|card|calendar|session|board`)

// PaginationSelectors locate "next page" affordances, checked in order.
var PaginationSelectors = []string{
	`a[rel="next"]`,
	`a.next`,
	`a.pagination-next`,
	`li.next a`,
	`a[aria-label*="next"]`,
}

// DetailKeywords mark links that lead from a listing entry to a dedicated
// meeting page.
var DetailKeywords = []string{"detail", "view", "full", "more info", "read more"}

// CancelledKeywords mark meetings that were cancelled or postponed; rows
// containing them are skipped at extraction.
var CancelledKeywords = []string{"cancel", "cancelled", "postponed"}

// Title and year sanity bounds.
const (
	TitleMinLength = 5
	TitleMaxLength = 300
	YearMin        = 2010
	YearMax        = 2030
)
