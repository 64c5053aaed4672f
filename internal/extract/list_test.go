package extract

import (
	"strings"
	"testing"
)

func TestListItems(t *testing.T) {
	html := `<html><body><ul>
		<li>November 5, 2024 - City Council Meeting <a href="/agendas/1105.pdf">Agenda</a></li>
		<li>November 19, 2024 - Planning Commission <a href="/agendas/1119.pdf">Agenda</a> <a href="/minutes/1119.pdf">Minutes</a></li>
		<li>December 3, 2024 - Budget Hearing (CANCELLED)</li>
		<li>Subscribe to our newsletter</li>
	</ul></body></html>`

	got := ListItems(parseHTML(t, html), testOpts())
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}

	if got[0].Date != "2024-11-05" {
		t.Errorf("first.Date = %q", got[0].Date)
	}
	if !strings.Contains(got[0].RawTitle, "City Council Meeting") {
		t.Errorf("first.RawTitle = %q", got[0].RawTitle)
	}
	if len(got[0].Links) == 0 || got[0].Links[0].URL != "https://example.gov/agendas/1105.pdf" {
		t.Errorf("first links = %+v", got[0].Links)
	}

	if got[1].Date != "2024-11-19" {
		t.Errorf("second.Date = %q", got[1].Date)
	}
	if len(got[1].Links) < 2 {
		t.Errorf("second row should carry both its links, got %+v", got[1].Links)
	}
}

func TestListItemsSkipsNestedWrappers(t *testing.T) {
	html := `<html><body><ul>
		<li>November 2024
			<ul>
				<li>November 5, 2024 - Council Meeting <a href="/a.pdf">Agenda</a></li>
			</ul>
		</li>
	</ul></body></html>`

	got := ListItems(parseHTML(t, html), testOpts())
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want only the leaf item", len(got))
	}
	if got[0].Date != "2024-11-05" {
		t.Errorf("Date = %q", got[0].Date)
	}
}

func TestListItemsFallbackTitle(t *testing.T) {
	html := `<html><body><ul>
		<li><a href="/docs/110524.pdf">11/05/2024</a></li>
	</ul></body></html>`

	got := ListItems(parseHTML(t, html), testOpts())
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].RawTitle != "Meeting on 2024-11-05" {
		t.Errorf("RawTitle = %q, want the dated fallback", got[0].RawTitle)
	}
}

func TestListItemsContextYear(t *testing.T) {
	html := `<html><body>
		<h2>2024 Meetings</h2>
		<ul><li>November 5 - City Council Meeting <a href="/a.pdf">Agenda</a></li></ul>
	</body></html>`

	got := ListItems(parseHTML(t, html), testOpts())
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Date != "2024-11-05" {
		t.Errorf("Date = %q, want year inferred from the page heading", got[0].Date)
	}
}
