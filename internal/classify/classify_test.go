package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/civic-meetings/internal/config"
)

func newClassifier() *Classifier {
	return New(config.Default().Classifier)
}

func TestClassifyRolesFromAnchorText(t *testing.T) {
	links := []Link{
		{URL: "https://example.gov/docs/1234.pdf", Text: "Agenda", Pos: 1},
		{URL: "https://example.gov/docs/5678.pdf", Text: "Minutes", Pos: 2},
		{URL: "https://youtube.com/watch?v=abc", Text: "Watch Video", Pos: 3},
	}

	result := newClassifier().Classify(links, "City Council Meeting November 20, 2024", 0)

	require.Contains(t, result, RoleAgenda)
	require.Contains(t, result, RoleMinutes)
	require.Contains(t, result, RoleVideo)
	assert.Equal(t, "https://example.gov/docs/1234.pdf", result[RoleAgenda].URL)
	assert.Equal(t, "https://example.gov/docs/5678.pdf", result[RoleMinutes].URL)
	assert.Equal(t, "https://youtube.com/watch?v=abc", result[RoleVideo].URL)
}

func TestClassifyURLKeywordOutweighsText(t *testing.T) {
	links := []Link{
		{URL: "https://example.gov/files/agenda-2024-11-20.pdf", Text: "Download", Pos: 1},
	}
	result := newClassifier().Classify(links, "", 0)

	require.Contains(t, result, RoleAgenda)
	assert.Contains(t, result[RoleAgenda].Signals, "url-keyword")
}

func TestClassifyVideoPlatform(t *testing.T) {
	links := []Link{
		{URL: "https://cityofexample.granicus.com/MediaPlayer.php?view_id=2", Text: "", Pos: 1},
	}
	result := newClassifier().Classify(links, "", 0)

	require.Contains(t, result, RoleVideo)
	assert.Contains(t, result[RoleVideo].Signals, "platform")
}

func TestClassifyFragmentHrefIgnored(t *testing.T) {
	links := []Link{
		{URL: "#top", Text: "Agenda", Pos: 1},
		{URL: "mailto:clerk@example.gov", Text: "Minutes", Pos: 2},
		{URL: "javascript:void(0)", Text: "Watch Video", Pos: 3},
	}
	result := newClassifier().Classify(links, "", 0)
	assert.Empty(t, result, "unusable hrefs must never take a role")
}

func TestClassifyOneURLOneRole(t *testing.T) {
	// The same document linked twice with different anchor text must not
	// occupy two roles.
	links := []Link{
		{URL: "https://example.gov/packet.pdf", Text: "Agenda", Pos: 1},
		{URL: "https://example.gov/packet.pdf", Text: "Minutes", Pos: 2},
	}
	result := newClassifier().Classify(links, "", 0)

	urls := make(map[string]int)
	for _, c := range result {
		urls[c.URL]++
	}
	for u, n := range urls {
		assert.Equalf(t, 1, n, "URL %s assigned to %d roles", u, n)
	}
}

func TestClassifyHighestScoreWinsPerRole(t *testing.T) {
	links := []Link{
		{URL: "https://example.gov/related", Text: "agenda", Pos: 5},
		{URL: "https://example.gov/agenda-packet.pdf", Text: "Meeting Agenda", Pos: 1},
	}
	result := newClassifier().Classify(links, "", 1)

	require.Contains(t, result, RoleAgenda)
	assert.Equal(t, "https://example.gov/agenda-packet.pdf", result[RoleAgenda].URL,
		"stronger multi-signal link should take the agenda role")
}

func TestClassifyProximityBreaksTies(t *testing.T) {
	// Identical signals; the link closer to the date token wins.
	links := []Link{
		{URL: "https://example.gov/a/minutes", Text: "Minutes", Pos: 9},
		{URL: "https://example.gov/b/minutes", Text: "Minutes", Pos: 3},
	}
	result := newClassifier().Classify(links, "", 2)

	require.Contains(t, result, RoleMinutes)
	assert.Equal(t, "https://example.gov/b/minutes", result[RoleMinutes].URL)
}

func TestClassifyBelowMinScoreUnclassified(t *testing.T) {
	links := []Link{
		{URL: "https://example.gov/contact", Text: "Contact Us", Pos: 1},
	}
	result := newClassifier().Classify(links, "", 0)
	assert.Empty(t, result)
}

func TestUsable(t *testing.T) {
	assert.True(t, Usable("https://example.gov/a.pdf"))
	assert.True(t, Usable("/relative/path"))
	assert.False(t, Usable(""))
	assert.False(t, Usable("#section"))
	assert.False(t, Usable("mailto:x@y.gov"))
	assert.False(t, Usable("JavaScript:void(0)"))
	assert.False(t, Usable("tel:+15551234567"))
}
