package meeting

import (
	"strings"
	"testing"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain title unchanged", "City Council Regular Meeting", "City Council Regular Meeting"},
		{"whitespace collapsed", "City   Council\t\tMeeting", "City Council Meeting"},
		{"posted timestamp stripped", "Board Meeting Posted Nov 20, 2024 5:30 PM", "Board Meeting"},
		{"leading ISO date stripped", "2024-11-20 - Council Meeting", "Council Meeting"},
		{"leading US date stripped", "11/20/2024 - Council Meeting", "Council Meeting"},
		{"leading month name stripped", "November 20, 2024 - Planning Commission", "Planning Commission"},
		{"unicode dash normalized", "Budget Hearing — Final", "Budget Hearing - Final"},
		{"non-ascii dropped", "Council Meeting ✓", "Council Meeting"},
		{"too short after cleaning", "20", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTitle(tt.input); got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanTitleClampsLength(t *testing.T) {
	long := strings.Repeat("Planning Commission ", 20) // 400 chars
	got := CleanTitle(long)
	if len(got) > 200 {
		t.Errorf("CleanTitle left %d chars, want at most 200", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("clamped title %q should end with ellipsis", got)
	}
}

func TestRecordKey(t *testing.T) {
	a := Record{Date: "2024-11-20", Title: "Council Meeting"}
	b := Record{Date: "2024-11-20", Title: "  COUNCIL MEETING "}
	if a.Key() != b.Key() {
		t.Errorf("keys differ for same meeting: %q vs %q", a.Key(), b.Key())
	}
	c := Record{Date: "2024-11-21", Title: "Council Meeting"}
	if a.Key() == c.Key() {
		t.Error("different dates produced the same key")
	}
}

func TestRecordLinks(t *testing.T) {
	r := Record{AgendaURL: "https://example.gov/agenda.pdf"}
	if !r.HasLink() {
		t.Error("record with agenda URL should report a link")
	}
	if got := r.URLs(); len(got) != 1 || got[0] != r.AgendaURL {
		t.Errorf("URLs() = %v", got)
	}
	if (Record{Title: "x", Date: "2024-01-01"}).HasLink() {
		t.Error("record without URLs should not report a link")
	}
}
