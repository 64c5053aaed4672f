package extract

import (
	"strings"
	"testing"
)

const calendarPage = `<html><body>
<h2>2024</h2>
<h3>November</h3>
<ul>
	<li><a href="/meetings/nov5">November 5</a> - Regular Board Meeting <a href="/agendas/nov5.pdf">Agenda</a></li>
</ul>
<h3>December</h3>
<ul>
	<li><a href="/meetings/dec3">3</a></li>
</ul>
<h2>2023</h2>
<h3>December</h3>
<ul>
	<li><a href="/meetings/2023dec">December 12</a> - Year End Session</li>
</ul>
</body></html>`

func TestCalendarEntries(t *testing.T) {
	opts := Options{
		BaseURL:   "https://example.gov/calendar",
		StartDate: "2023-01-01",
		EndDate:   "2024-12-31",
	}
	got := CalendarEntries(parseHTML(t, calendarPage), opts)

	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}

	if got[0].Date != "2024-11-05" {
		t.Errorf("first.Date = %q", got[0].Date)
	}
	if !strings.Contains(got[0].RawTitle, "Board Meeting") {
		t.Errorf("first.RawTitle = %q", got[0].RawTitle)
	}
	if len(got[0].Links) < 2 {
		t.Fatalf("first entry links = %+v, want the meeting and agenda anchors", got[0].Links)
	}

	// Bare day number composes with the month and year headings.
	if got[1].Date != "2024-12-03" {
		t.Errorf("second.Date = %q", got[1].Date)
	}
	if got[1].RawTitle != "December 3, 2024 - Board Meeting" {
		t.Errorf("second.RawTitle = %q, want the composed fallback", got[1].RawTitle)
	}

	// A later year heading switches the year context.
	if got[2].Date != "2023-12-12" {
		t.Errorf("third.Date = %q", got[2].Date)
	}
}

func TestCalendarEntriesSkipsCancelled(t *testing.T) {
	html := `<html><body>
		<h2>2024</h2>
		<h3>November</h3>
		<ul><li><a href="/m/nov5">November 5</a> - Board Meeting - CANCELLED</li></ul>
	</body></html>`

	if got := CalendarEntries(parseHTML(t, html), testOpts()); len(got) != 0 {
		t.Errorf("got %d candidates, want cancelled entries skipped", len(got))
	}
}

func TestCalendarEntriesIgnoresPagesWithoutYearHeadings(t *testing.T) {
	html := `<html><body><h3>November</h3><ul><li><a href="/m">November 5</a></li></ul></body></html>`
	if got := CalendarEntries(parseHTML(t, html), testOpts()); len(got) != 0 {
		t.Errorf("got %d candidates, want none without a year heading", len(got))
	}
}
