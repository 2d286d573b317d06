package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans untrusted markup. It is safe for concurrent use.
type Sanitizer struct {
	strict *bluemonday.Policy
	safe   *bluemonday.Policy
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithSafePolicy replaces the policy used by SanitizeHTML.
func WithSafePolicy(p *bluemonday.Policy) Option {
	return func(s *Sanitizer) {
		if p != nil {
			s.safe = p
		}
	}
}

// New creates a Sanitizer with a strict policy that strips every tag and a
// safe policy that keeps basic formatting and nofollow links.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{
		strict: bluemonday.StrictPolicy(),
		safe:   safePolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func safePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements(
		"p", "br",
		"strong", "b", "em", "i",
		"ul", "ol", "li",
		"code", "pre", "blockquote",
	)
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	return p
}

// StripHTML removes all markup and returns the unescaped plain text, trimmed.
func (s *Sanitizer) StripHTML(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(in)))
}

// SanitizeHTML keeps safe formatting tags and drops scripts, event handlers
// and javascript: URLs.
func (s *Sanitizer) SanitizeHTML(in string) string {
	return s.safe.Sanitize(in)
}

var (
	defaultSanitizer *Sanitizer
	defaultOnce      sync.Once
)

func std() *Sanitizer {
	defaultOnce.Do(func() { defaultSanitizer = New() })
	return defaultSanitizer
}

// StripHTML strips all markup using the default sanitizer.
func StripHTML(s string) string { return std().StripHTML(s) }

// SanitizeHTML sanitizes s using the default sanitizer.
func SanitizeHTML(s string) string { return std().SanitizeHTML(s) }

// SanitizeHTMLCustom applies a custom bluemonday policy.
// Returns input unchanged if policy is nil.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
