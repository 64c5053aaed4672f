// Package dedupe merges duplicate meeting records within one base URL's
// results. Records collide when they share a date and a normalized title;
// colliding records merge when their links agree or complement each other,
// and stay separate when they point at conflicting sources (same-day,
// same-title meetings with materially different links are distinct events).
package dedupe

import "github.com/pfrederiksen/civic-meetings/internal/meeting"

// Deduplicate merges partial duplicates and returns records in first-seen
// order. The operation is idempotent: running it on its own output returns
// the same records.
func Deduplicate(records []meeting.Record) []meeting.Record {
	out := make([]meeting.Record, 0, len(records))
	byKey := make(map[string][]int) // key -> indexes into out

	for _, r := range records {
		key := r.Key()
		merged := false
		for _, idx := range byKey[key] {
			if mergeable(out[idx], r) {
				out[idx] = merge(out[idx], r)
				merged = true
				break
			}
		}
		if !merged {
			byKey[key] = append(byKey[key], len(out))
			out = append(out, r)
		}
	}
	return out
}

// mergeable decides whether two same-key records describe one meeting.
// Sharing any URL means they do. With fully disjoint URL sets they merge
// only when their populated fields complement each other; a field populated
// differently on both sides marks two distinct meetings.
func mergeable(a, b meeting.Record) bool {
	if sharesURL(a, b) {
		return true
	}
	return !fieldConflict(a.MeetingURL, b.MeetingURL) &&
		!fieldConflict(a.AgendaURL, b.AgendaURL) &&
		!fieldConflict(a.MinutesURL, b.MinutesURL)
}

func sharesURL(a, b meeting.Record) bool {
	urls := make(map[string]bool)
	for _, u := range a.URLs() {
		urls[u] = true
	}
	for _, u := range b.URLs() {
		if urls[u] {
			return true
		}
	}
	return false
}

func fieldConflict(a, b string) bool {
	return a != "" && b != "" && a != b
}

// merge unions the link fields; the first-seen value wins when both sides
// populated the same field.
func merge(first, second meeting.Record) meeting.Record {
	if first.MeetingURL == "" {
		first.MeetingURL = second.MeetingURL
	}
	if first.AgendaURL == "" {
		first.AgendaURL = second.AgendaURL
	}
	if first.MinutesURL == "" {
		first.MinutesURL = second.MinutesURL
	}
	return first
}
