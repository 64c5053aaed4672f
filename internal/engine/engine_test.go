package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pfrederiksen/civic-meetings/internal/config"
	"github.com/pfrederiksen/civic-meetings/internal/meeting"
)

// fakeFetcher serves canned HTML per URL, optionally failing with queued
// errors first.
type fakeFetcher struct {
	pages     map[string]string
	errs      map[string][]error
	calls     []string
	rotations int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	f.calls = append(f.calls, url)
	if queued := f.errs[url]; len(queued) > 0 {
		err := queued[0]
		f.errs[url] = queued[1:]
		return nil, err
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, &FetchError{Kind: KindNetwork, URL: url, Err: errors.New("no such host")}
	}
	return &Page{HTML: html, FinalURL: url}, nil
}

func (f *fakeFetcher) Rotate() { f.rotations++ }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Engine.MinRequestInterval = 0
	cfg.Engine.InitialBackoff = time.Millisecond
	return cfg
}

func newTestEngine(fetcher PageFetcher, cfg config.Config) *Engine {
	e := New(cfg, fetcher, nil)
	e.now = func() time.Time { return time.Unix(1700000000, 0) }
	return e
}

const baseURL = "https://example.gov/meetings"

const schedulePage = `<html><body>
<h2>2024 Meeting Schedule</h2>
<table>
	<tr><th>Date</th><th>Meeting</th><th>Agenda</th><th>Minutes</th></tr>
	<tr>
		<td>11/05/2024</td>
		<td>City Council Regular Meeting</td>
		<td><a href="/agendas/1105.pdf">Agenda</a></td>
		<td><a href="/minutes/1105.pdf">Minutes</a></td>
	</tr>
	<tr>
		<td>11/19/2024</td>
		<td>Planning Commission</td>
		<td><a href="/agendas/1119.pdf">Agenda</a></td>
		<td></td>
	</tr>
	<tr>
		<td>10/01/2023</td>
		<td>Old Business Meeting</td>
		<td><a href="/agendas/old.pdf">Agenda</a></td>
		<td></td>
	</tr>
</table>
</body></html>`

func testRequest() Request {
	return Request{StartDate: "2024-01-01", EndDate: "2024-12-31", BaseURLs: []string{baseURL}}
}

func TestScrapeMeetingsTableSite(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{baseURL: schedulePage}}
	e := newTestEngine(fetcher, testConfig())

	results, err := e.ScrapeMeetings(context.Background(), testRequest(), nil)
	if err != nil {
		t.Fatalf("ScrapeMeetings: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].BaseURL != baseURL {
		t.Errorf("BaseURL = %q", results[0].BaseURL)
	}

	medias := results[0].Medias
	if len(medias) != 2 {
		t.Fatalf("got %d records, want 2 (out-of-range row rejected): %+v", len(medias), medias)
	}

	first := medias[0]
	if first.Date != "2024-11-05" {
		t.Errorf("first.Date = %q", first.Date)
	}
	if first.Title != "City Council Regular Meeting" {
		t.Errorf("first.Title = %q", first.Title)
	}
	if first.AgendaURL != "https://example.gov/agendas/1105.pdf" {
		t.Errorf("first.AgendaURL = %q", first.AgendaURL)
	}
	if first.MinutesURL != "https://example.gov/minutes/1105.pdf" {
		t.Errorf("first.MinutesURL = %q", first.MinutesURL)
	}

	second := medias[1]
	if second.Date != "2024-11-19" {
		t.Errorf("second.Date = %q", second.Date)
	}
	if second.AgendaURL != "https://example.gov/agendas/1119.pdf" {
		t.Errorf("second.AgendaURL = %q", second.AgendaURL)
	}
}

func TestScrapeMeetingsFollowsPagination(t *testing.T) {
	page2 := baseURL + "?page=2"
	basePage := `<html><body>
		<table>
			<tr><th>Date</th><th>Meeting</th></tr>
			<tr><td>11/05/2024</td><td>Council Meeting <a href="/agendas/1105.pdf">Agenda</a></td></tr>
			<tr><td>11/12/2024</td><td>Work Session <a href="/agendas/1112.pdf">Agenda</a></td></tr>
			<tr><td>11/19/2024</td><td>Commission <a href="/agendas/1119.pdf">Agenda</a></td></tr>
		</table>
		<a href="/meetings?page=2" rel="next">Next</a>
	</body></html>`
	secondPage := `<html><body>
		<table>
			<tr><th>Date</th><th>Meeting</th></tr>
			<tr><td>12/10/2024</td><td>Budget Meeting <a href="/agendas/1210.pdf">Agenda</a></td></tr>
			<tr><td>12/17/2024</td><td>Council Meeting <a href="/agendas/1217.pdf">Agenda</a></td></tr>
			<tr><td>12/19/2024</td><td>Work Session <a href="/agendas/1219.pdf">Agenda</a></td></tr>
		</table>
	</body></html>`

	fetcher := &fakeFetcher{pages: map[string]string{baseURL: basePage, page2: secondPage}}
	e := newTestEngine(fetcher, testConfig())

	results, err := e.ScrapeMeetings(context.Background(), testRequest(), nil)
	if err != nil {
		t.Fatalf("ScrapeMeetings: %v", err)
	}
	if got := fetcher.calls; len(got) != 2 || got[0] != baseURL || got[1] != page2 {
		t.Fatalf("fetch calls = %v, want base then page 2", got)
	}

	dates := make(map[string]bool)
	for _, m := range results[0].Medias {
		dates[m.Date] = true
	}
	if !dates["2024-11-05"] || !dates["2024-12-10"] {
		t.Errorf("records should span both pages, got dates %v", dates)
	}
}

func TestScrapeMeetingsUnreachableSiteYieldsEmptyResult(t *testing.T) {
	fetcher := &fakeFetcher{
		errs: map[string][]error{
			baseURL: {&FetchError{Kind: KindUnknown, URL: baseURL, Err: errors.New("boom")}},
		},
	}
	e := newTestEngine(fetcher, testConfig())

	results, err := e.ScrapeMeetings(context.Background(), testRequest(), nil)
	if err != nil {
		t.Fatalf("a failing domain must not abort the run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if len(results[0].Medias) != 0 {
		t.Errorf("Medias = %+v, want empty", results[0].Medias)
	}
	if results[0].Medias == nil {
		t.Error("Medias must be an empty slice, not nil, so JSON emits []")
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("non-retriable failure fetched %d times, want 1", len(fetcher.calls))
	}
}

func TestScrapeMeetingsIncrementalCompletion(t *testing.T) {
	second := "https://other.gov/calendar"
	fetcher := &fakeFetcher{pages: map[string]string{
		baseURL: schedulePage,
		second:  `<html><body><p>nothing here</p></body></html>`,
	}}
	e := newTestEngine(fetcher, testConfig())

	req := testRequest()
	req.BaseURLs = []string{baseURL, second}

	var gotIndex []int
	var gotTotal []int
	var gotURLs []string
	onComplete := func(result meeting.DomainResult, index, total int) {
		gotIndex = append(gotIndex, index)
		gotTotal = append(gotTotal, total)
		gotURLs = append(gotURLs, result.BaseURL)
	}

	if _, err := e.ScrapeMeetings(context.Background(), req, onComplete); err != nil {
		t.Fatalf("ScrapeMeetings: %v", err)
	}
	if len(gotIndex) != 2 || gotIndex[0] != 1 || gotIndex[1] != 2 {
		t.Errorf("indexes = %v, want [1 2]", gotIndex)
	}
	if gotTotal[0] != 2 || gotTotal[1] != 2 {
		t.Errorf("totals = %v, want [2 2]", gotTotal)
	}
	if gotURLs[0] != baseURL || gotURLs[1] != second {
		t.Errorf("completion order = %v, want input order", gotURLs)
	}
}

func TestScrapeMeetingsInvalidRequest(t *testing.T) {
	e := newTestEngine(&fakeFetcher{}, testConfig())
	_, err := e.ScrapeMeetings(context.Background(), Request{StartDate: "2024-01-01"}, nil)
	if err == nil {
		t.Fatal("expected validation error for a request without end date and URLs")
	}
}

func TestRequestValidate(t *testing.T) {
	valid := Request{StartDate: "2024-01-01", EndDate: "2024-12-31", BaseURLs: []string{baseURL}}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	tests := []struct {
		name string
		req  Request
	}{
		{"bad start", Request{StartDate: "01/01/2024", EndDate: "2024-12-31", BaseURLs: []string{baseURL}}},
		{"bad end", Request{StartDate: "2024-01-01", EndDate: "soon", BaseURLs: []string{baseURL}}},
		{"reversed range", Request{StartDate: "2024-12-31", EndDate: "2024-01-01", BaseURLs: []string{baseURL}}},
		{"no urls", Request{StartDate: "2024-01-01", EndDate: "2024-12-31"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{baseURL: "<html></html>"},
		errs: map[string][]error{
			baseURL: {
				&FetchError{Kind: KindServerError, URL: baseURL, Err: errors.New("status 503")},
				&FetchError{Kind: KindServerError, URL: baseURL, Err: errors.New("status 503")},
			},
		},
	}
	e := newTestEngine(fetcher, testConfig())

	if _, err := e.fetchWithRetry(context.Background(), baseURL); err != nil {
		t.Fatalf("fetchWithRetry: %v", err)
	}
	if len(fetcher.calls) != 3 {
		t.Errorf("fetched %d times, want 3 (two failures then success)", len(fetcher.calls))
	}
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	serverErr := func() error {
		return &FetchError{Kind: KindServerError, URL: baseURL, Err: errors.New("status 503")}
	}
	fetcher := &fakeFetcher{
		pages: map[string]string{baseURL: "<html></html>"},
		errs:  map[string][]error{baseURL: {serverErr(), serverErr(), serverErr(), serverErr()}},
	}
	cfg := testConfig()
	cfg.Engine.MaxFetchAttempts = 3
	e := newTestEngine(fetcher, cfg)

	if _, err := e.fetchWithRetry(context.Background(), baseURL); err == nil {
		t.Fatal("expected failure once attempts are exhausted")
	}
	if len(fetcher.calls) != 3 {
		t.Errorf("fetched %d times, want exactly MaxFetchAttempts", len(fetcher.calls))
	}
}

func TestFetchRotatesOnBotDetection(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{baseURL: "<html></html>"},
		errs: map[string][]error{
			baseURL: {&FetchError{Kind: KindBotDetection, URL: baseURL, Err: errors.New("403 forbidden")}},
		},
	}
	e := newTestEngine(fetcher, testConfig())

	if _, err := e.fetchWithRetry(context.Background(), baseURL); err != nil {
		t.Fatalf("fetchWithRetry: %v", err)
	}
	if fetcher.rotations != 1 {
		t.Errorf("rotations = %d, want 1", fetcher.rotations)
	}
}

func TestWaitTurnEnforcesPerDomainInterval(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.MinRequestInterval = 100 * time.Millisecond
	e := newTestEngine(&fakeFetcher{}, cfg)

	clock := time.Unix(1700000000, 0)
	var slept []time.Duration
	e.now = func() time.Time { return clock }
	e.sleep = func(d time.Duration) {
		slept = append(slept, d)
		clock = clock.Add(d)
	}

	e.waitTurn("https://example.gov/a")
	e.waitTurn("https://example.gov/b") // same domain, immediately after
	e.waitTurn("https://other.gov/c")   // different domain

	if len(slept) != 1 {
		t.Fatalf("slept %d times, want once for the same-domain repeat: %v", len(slept), slept)
	}
	if slept[0] != 100*time.Millisecond {
		t.Errorf("slept %v, want the full interval", slept[0])
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://Example.GOV/meetings?page=2", "example.gov"},
		{"https://sub.example.gov/x", "sub.example.gov"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		if got := domainOf(tt.in); got != tt.want {
			t.Errorf("domainOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
