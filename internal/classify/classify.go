// Package classify scores candidate links against semantic roles (agenda,
// minutes, video) using weighted keyword, domain, position, and extension
// signals. Each link receives at most one role, each role at most one link.
package classify

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/civic-meetings/internal/config"
	"github.com/pfrederiksen/civic-meetings/internal/pattern"
)

// Role is the semantic category a link is classified into.
type Role string

const (
	RoleAgenda  Role = "agenda"
	RoleMinutes Role = "minutes"
	RoleVideo   Role = "video"
	RoleUnknown Role = "unknown"
)

// roles in assignment priority order; ties on score resolve to the earlier
// role.
var roles = []Role{RoleAgenda, RoleMinutes, RoleVideo}

// Link is one candidate link with its anchor text and DOM position within
// the candidate (ordinal index of the anchor in the candidate's region).
type Link struct {
	URL  string
	Text string
	Pos  int
}

// Classified is a link that scored into a role, with the signal names that
// contributed.
type Classified struct {
	URL     string
	Role    Role
	Score   float64
	Signals []string
}

// Classifier applies the configured signal weights.
type Classifier struct {
	cfg config.ClassifierConfig
}

// New creates a Classifier.
func New(cfg config.ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

type scored struct {
	link    Link
	order   int
	role    Role
	score   float64
	signals []string
}

// Classify assigns roles to links. contextText is the candidate's
// surrounding text, datePos the DOM position of its date token (used for
// proximity tie-breaking). Links that clear the minimum score for no role
// are left unknown and excluded from the result.
func (c *Classifier) Classify(links []Link, contextText string, datePos int) map[Role]Classified {
	var candidates []scored
	for i, link := range links {
		if !Usable(link.URL) {
			continue
		}
		role, score, signals := c.scoreLink(link, contextText, datePos)
		if role == RoleUnknown || score < c.cfg.MinScore {
			continue
		}
		candidates = append(candidates, scored{link: link, order: i, role: role, score: score, signals: signals})
	}

	// Per role: highest score wins, then closest to the date token, then
	// first occurrence. A URL never serves two roles, even when it appears
	// as two separate anchors.
	result := make(map[Role]Classified)
	usedURLs := make(map[string]bool)
	for _, role := range roles {
		var best *scored
		for i := range candidates {
			s := &candidates[i]
			if s.role != role || usedURLs[s.link.URL] {
				continue
			}
			if best == nil || betterThan(s, best, datePos) {
				best = s
			}
		}
		if best != nil {
			usedURLs[best.link.URL] = true
			result[role] = Classified{
				URL:     best.link.URL,
				Role:    role,
				Score:   best.score,
				Signals: best.signals,
			}
		}
	}
	return result
}

func betterThan(a, b *scored, datePos int) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	da, db := distance(a.link.Pos, datePos), distance(b.link.Pos, datePos)
	if da != db {
		return da < db
	}
	return a.order < b.order
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// scoreLink computes the link's score for every role and returns its single
// best role. Ties between roles resolve in agenda, minutes, video order.
func (c *Classifier) scoreLink(link Link, contextText string, datePos int) (Role, float64, []string) {
	combined := strings.ToLower(link.Text + " " + contextText)
	href := strings.ToLower(link.URL)

	scores := map[Role]float64{}
	signals := map[Role][]string{}
	add := func(role Role, w float64, signal string) {
		if w <= 0 {
			return
		}
		scores[role] += w
		signals[role] = append(signals[role], signal)
	}

	// Keyword signal: role-indicative words in anchor text or context.
	add(RoleAgenda, float64(countKeywords(combined, pattern.AgendaKeywords))*c.cfg.KeywordWeight, "keyword")
	add(RoleMinutes, float64(countKeywords(combined, pattern.MinutesKeywords))*c.cfg.KeywordWeight, "keyword")
	add(RoleVideo, float64(countKeywords(combined, pattern.VideoKeywords))*c.cfg.KeywordWeight, "keyword")

	// Keyword signal in the URL path itself is a stronger hint.
	if containsAny(href, pattern.AgendaKeywords) {
		add(RoleAgenda, c.cfg.URLKeywordWeight, "url-keyword")
	}
	if containsAny(href, pattern.MinutesKeywords) {
		add(RoleMinutes, c.cfg.URLKeywordWeight, "url-keyword")
	}
	if containsAny(href, pattern.VideoKeywords) {
		add(RoleVideo, c.cfg.URLKeywordWeight, "url-keyword")
	}

	// Domain signal: known hosting platforms.
	add(RoleVideo, float64(countKeywords(href, pattern.VideoPlatforms))*c.cfg.PlatformWeight, "platform")
	if containsAny(href, pattern.DocumentPlatforms) {
		add(RoleAgenda, c.cfg.PlatformWeight, "platform")
		add(RoleMinutes, c.cfg.PlatformWeight, "platform")
	}

	// Extension signal. Keyed on the link's own text and URL, not the shared
	// context: a row mentioning both "Agenda" and "Minutes" must not push its
	// minutes document toward the agenda role.
	own := strings.ToLower(link.Text + " " + link.URL)
	if containsAny(href, pattern.DocumentExtensions) {
		switch {
		case containsAny(own, pattern.MinutesKeywords):
			add(RoleMinutes, c.cfg.DocExtWeight, "doc-ext")
		case containsAny(own, pattern.AgendaKeywords):
			add(RoleAgenda, c.cfg.DocExtWeight, "doc-ext")
		default:
			add(RoleAgenda, c.cfg.DocExtNeutral, "doc-ext")
		}
	}
	if containsAny(href, pattern.MediaExtensions) {
		add(RoleVideo, c.cfg.MediaExtWeight, "media-ext")
	}

	// Position signal: inverse DOM distance to the date token, applied to
	// whichever roles already have evidence so proximity never invents one.
	posScore := c.cfg.PositionWeight / float64(1+distance(link.Pos, datePos))
	for role, s := range scores {
		if s > 0 {
			scores[role] += posScore
			signals[role] = append(signals[role], "position")
		}
	}

	best := RoleUnknown
	bestScore := 0.0
	for _, role := range roles {
		if scores[role] > bestScore {
			best = role
			bestScore = scores[role]
		}
	}
	if best == RoleUnknown {
		return RoleUnknown, 0, nil
	}
	sort.Strings(signals[best])
	return best, bestScore, dedupSignals(signals[best])
}

func countKeywords(s string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			n++
		}
	}
	return n
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func dedupSignals(signals []string) []string {
	out := signals[:0]
	var prev string
	for _, s := range signals {
		if s != prev {
			out = append(out, s)
		}
		prev = s
	}
	return out
}

// Usable reports whether a href can ever be attached to a role: pure
// fragments and mailto/javascript/tel schemes never qualify.
func Usable(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"mailto:", "javascript:", "tel:"} {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return true
}
