package slug

import (
	"crypto/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSuffixLength is the random suffix size used by Unique.
const DefaultSuffixLength = 6

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

type config struct {
	separator string
	maxLength int
	lowercase bool
}

// Option configures Make.
type Option func(*config)

// Separator sets the string placed between words. Default "-".
func Separator(sep string) Option {
	return func(c *config) {
		c.separator = sep
	}
}

// MaxLength caps the slug at n runes, cutting at a word boundary when one
// exists. Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxLength = n
		}
	}
}

// Lowercase toggles case folding. Default true.
func Lowercase(on bool) Option {
	return func(c *config) {
		c.lowercase = on
	}
}

// Make builds a slug from s. It returns "" when s has no letters or digits.
func Make(s string, opts ...Option) string {
	cfg := config{separator: "-", lowercase: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	if cfg.lowercase {
		folded = strings.ToLower(folded)
	}

	words := strings.FieldsFunc(folded, func(r rune) bool {
		return r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	out := strings.Join(words, cfg.separator)
	if cfg.maxLength > 0 {
		out = truncate(out, cfg.separator, cfg.maxLength)
	}
	return out
}

// Unique returns Make(s, opts...) with a random suffix appended.
func Unique(s string, opts ...Option) string {
	cfg := config{separator: "-"}
	for _, opt := range opts {
		opt(&cfg)
	}
	base := Make(s, opts...)
	suffix := randomSuffix(DefaultSuffixLength)
	if base == "" {
		return suffix
	}
	return base + cfg.separator + suffix
}

func truncate(s, sep string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if sep != "" && strings.HasPrefix(string(r[n:]), sep) {
		return cut
	}
	if i := strings.LastIndex(cut, sep); sep != "" && i > 0 {
		return cut[:i]
	}
	return strings.TrimSuffix(cut, sep)
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = suffixAlphabet[int(b[i])%len(suffixAlphabet)]
	}
	return string(b)
}
