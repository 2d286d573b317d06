package internal

import (
	"strings"
)

// ExtractorSource extracts a value from the request.
// Returns the value and true if found, or ("", false) if not present.
type ExtractorSource = func(*Request) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract iterates sources in order and returns the first non-empty value.
// Returns ("", false) if all sources miss.
func (e Extractor) Extract(r *Request) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, src := range e.sources {
		if v, ok := src(r); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func present(v string) (string, bool) { return v, v != "" }

// FromHeader returns a source that reads from a request header.
func FromHeader(name string) ExtractorSource {
	return func(r *Request) (string, bool) {
		return present(r.Header(name))
	}
}

// FromQuery returns a source that reads from a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(r *Request) (string, bool) {
		return present(r.Query.Get(name))
	}
}

// FromCookie returns a source that reads from a plain cookie.
func FromCookie(name string) ExtractorSource {
	return func(r *Request) (string, bool) {
		v, _ := r.Cookie(name)
		return present(v)
	}
}

// FromData returns a source that reads from a parsed body field.
func FromData(name string) ExtractorSource {
	return func(r *Request) (string, bool) {
		return present(r.DataString(name))
	}
}

// FromBearerToken returns a source that reads a Bearer token from the Authorization header.
// Uses case-insensitive comparison on the "Bearer " prefix.
func FromBearerToken() ExtractorSource {
	return func(r *Request) (string, bool) {
		auth := r.Header("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		return present(auth[7:])
	}
}
