package meeting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/civic-meetings/internal/pattern"
)

// ISODate is the canonical date layout used across the pipeline.
const ISODate = "2006-01-02"

// dateFormats are tried in order by ParseFlexible. Month-day-year numeric
// forms take precedence over day-month-year, matching the US government
// sites these scrapers target.
var dateFormats = []string{
	"2006-01-02",
	"1/2/2006",
	"2006/1/2",
	"1-2-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Jan. 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006.1.2",
	"1.2.2006",
}

// ParseFlexible parses a date string in any of the supported formats.
// Returns the zero time when nothing matches.
func ParseFlexible(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

func monthFromName(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	if len(name) < 3 {
		return 0, false
	}
	m, ok := monthsByPrefix[name[:3]]
	return m, ok
}

// makeDate builds a canonical date string, rejecting impossible component
// combinations (month 13, day 40) by round-tripping through time.Date.
func makeDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	if year < pattern.YearMin || year > pattern.YearMax {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ExtractDate finds the first recognizable date token in text and returns it
// in canonical YYYY-MM-DD form. Tokens without a year are resolved against
// contextYear; when contextYear is zero those tokens are ignored.
func ExtractDate(text string, contextYear int) (string, bool) {
	if m := pattern.DateISO.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return d, true
		}
	}
	if m := pattern.DateUS.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(atoi(m[3]), atoi(m[1]), atoi(m[2])); ok {
			return d, true
		}
	}
	if m := pattern.DateDashed.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(atoi(m[3]), atoi(m[1]), atoi(m[2])); ok {
			return d, true
		}
	}
	for _, re := range []interface{ FindStringSubmatch(string) []string }{pattern.DateLongName, pattern.DateAbbrName} {
		if m := re.FindStringSubmatch(text); m != nil {
			if month, ok := monthFromName(m[1]); ok {
				if d, ok := makeDate(atoi(m[3]), int(month), atoi(m[2])); ok {
					return d, true
				}
			}
		}
	}
	if contextYear != 0 {
		for _, re := range []interface{ FindStringSubmatch(string) []string }{pattern.DateLongNameNoYear, pattern.DateAbbrNameNoYear} {
			if m := re.FindStringSubmatch(text); m != nil {
				if month, ok := monthFromName(m[1]); ok {
					if d, ok := makeDate(contextYear, int(month), atoi(m[2])); ok {
						return d, true
					}
				}
			}
		}
	}
	return "", false
}

// InRange reports whether dateISO falls within [start, end] inclusive.
// All three arguments must be canonical YYYY-MM-DD strings.
func InRange(dateISO, start, end string) bool {
	d, err := time.Parse(ISODate, dateISO)
	if err != nil {
		return false
	}
	s, err := time.Parse(ISODate, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(ISODate, end)
	if err != nil {
		return false
	}
	return !d.Before(s) && !d.After(e)
}
