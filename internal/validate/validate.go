// Package validate enforces structural and semantic correctness of candidate
// meeting records. Validation is a short-circuiting state machine over a
// single candidate; every rejection records the failing rule and is never
// retried. Accepted candidates become meeting.Records.
package validate

import (
	"net/url"
	"strings"

	"github.com/pfrederiksen/civic-meetings/internal/classify"
	"github.com/pfrederiksen/civic-meetings/internal/extract"
	"github.com/pfrederiksen/civic-meetings/internal/meeting"
	"github.com/pfrederiksen/civic-meetings/internal/pattern"
)

// State is a position in the validation sequence.
type State string

const (
	StateRaw          State = "raw"
	StateDateChecked  State = "date_checked"
	StateRangeChecked State = "range_checked"
	StateTitleChecked State = "title_checked"
	StateLinkChecked  State = "link_checked"
	StateAccepted     State = "accepted"
	StateRejected     State = "rejected"
)

// Reason names the rule a rejected candidate failed.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnparseableDate Reason = "unparseable_date"
	ReasonDateOutOfRange  Reason = "date_out_of_range"
	ReasonEmptyTitle      Reason = "empty_title"
	ReasonNoUsableLink    Reason = "no_usable_link"
)

// Result is the outcome of validating one candidate. Record is only
// meaningful when State is StateAccepted.
type Result struct {
	State  State
	Reason Reason
	Record meeting.Record
}

// Accepted reports whether the candidate passed every rule.
func (r Result) Accepted() bool {
	return r.State == StateAccepted
}

// Validator checks candidates against a fixed inclusive date range.
type Validator struct {
	startDate string
	endDate   string
}

// New creates a Validator for [startDate, endDate], both YYYY-MM-DD.
func New(startDate, endDate string) *Validator {
	return &Validator{startDate: startDate, endDate: endDate}
}

// Validate runs the candidate through the rule sequence. Each transition is
// a pure predicate; the first failure short-circuits to StateRejected with
// the failing rule recorded.
func (v *Validator) Validate(c extract.Candidate, links map[classify.Role]classify.Classified) Result {
	// Raw -> DateChecked: the date must already be canonical and parseable.
	if !pattern.DateValidation.MatchString(c.Date) || meeting.ParseFlexible(c.Date).IsZero() {
		return Result{State: StateRejected, Reason: ReasonUnparseableDate}
	}

	// DateChecked -> RangeChecked: inclusive range membership.
	if !meeting.InRange(c.Date, v.startDate, v.endDate) {
		return Result{State: StateRejected, Reason: ReasonDateOutOfRange}
	}

	// RangeChecked -> TitleChecked: a usable title must remain after
	// cleaning.
	title := meeting.CleanTitle(c.RawTitle)
	if title == "" {
		return Result{State: StateRejected, Reason: ReasonEmptyTitle}
	}

	// TitleChecked -> LinkChecked: at least one classified link must be a
	// well-formed absolute http(s) URL.
	record := meeting.Record{Date: c.Date, Title: title}
	if l, ok := links[classify.RoleVideo]; ok && usableAbsolute(l.URL) {
		record.MeetingURL = l.URL
	}
	if l, ok := links[classify.RoleAgenda]; ok && usableAbsolute(l.URL) {
		record.AgendaURL = l.URL
	}
	if l, ok := links[classify.RoleMinutes]; ok && usableAbsolute(l.URL) {
		record.MinutesURL = l.URL
	}
	if !record.HasLink() {
		return Result{State: StateRejected, Reason: ReasonNoUsableLink}
	}

	return Result{State: StateAccepted, Record: record}
}

// usableAbsolute reports whether raw is an absolute http(s) URL with a host,
// not a pure fragment, and not a mail/script scheme.
func usableAbsolute(raw string) bool {
	if !classify.Usable(raw) {
		return false
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
