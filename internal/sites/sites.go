// Package sites routes base URLs to site-specific extractors when one is
// registered for the domain, falling back to the universal pipeline
// otherwise. Registration order decides precedence.
package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/civic-meetings/internal/extract"
)

// ExtractFunc produces candidates from a rendered page the way the
// universal extractors do, but with site-specific knowledge baked in.
type ExtractFunc func(doc *goquery.Document, opts extract.Options) []extract.Candidate

// Handler pairs a URL predicate with its bespoke extractor.
type Handler struct {
	Name    string
	Match   func(baseURL string) bool
	Extract ExtractFunc
}

// Registry holds handlers in registration order.
type Registry struct {
	handlers []Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a handler. Earlier registrations win when multiple match.
func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Lookup returns the first handler matching baseURL.
func (r *Registry) Lookup(baseURL string) (Handler, bool) {
	for _, h := range r.handlers {
		if h.Match(baseURL) {
			return h, true
		}
	}
	return Handler{}, false
}

// Default returns the registry with the built-in site handlers.
func Default() *Registry {
	r := NewRegistry()
	r.Register(Handler{
		Name:  "granicus",
		Match: domainMatcher("granicus.com"),
		// Granicus ViewPublisher pages are archive tables; the generic
		// table extractor handles them once pointed straight at them.
		Extract: func(doc *goquery.Document, opts extract.Options) []extract.Candidate {
			return extract.Tables(doc, opts)
		},
	})
	return r
}

func domainMatcher(domain string) func(string) bool {
	return func(baseURL string) bool {
		return strings.Contains(strings.ToLower(baseURL), domain)
	}
}
