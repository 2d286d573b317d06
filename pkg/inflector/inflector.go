package inflector

import (
	"regexp"
	"strings"
	"sync"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

func rules(pairs ...string) []rule {
	out := make([]rule, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, rule{re: regexp.MustCompile("(?i)" + pairs[i]), repl: pairs[i+1]})
	}
	return out
}

// Checked in order, first match wins.
var singularRules = rules(
	`(quiz)zes$`, "${1}",
	`(matr|vert|ind)ices$`, "${1}ix",
	`^(ox)en$`, "${1}",
	`(alias|status|campus|bus)es$`, "${1}",
	`(octop|vir)i$`, "${1}us",
	`(cris|ax|test)es$`, "${1}is",
	`(shoe)s$`, "${1}",
	`(o)es$`, "${1}",
	`(x|ch|ss|sh|zz)es$`, "${1}",
	`([^aeiouy]|qu)ies$`, "${1}y",
	`([lr])ves$`, "${1}f",
	`([^f])ves$`, "${1}fe",
	`(analy|ba|diagno|parenthe|progno|synop|the)ses$`, "${1}sis",
	`([ti])a$`, "${1}um",
	`(ss|us|is)$`, "${1}",
	`s$`, "",
)

var pluralRules = rules(
	`(quiz)$`, "${1}zes",
	`(matr|vert|ind)(ix|ex)$`, "${1}ices",
	`^(ox)$`, "${1}en",
	`(alias|status|campus|bus)$`, "${1}es",
	`(octop|vir)us$`, "${1}i",
	`(cris|ax|test)is$`, "${1}es",
	`(x|ch|ss|sh|zz)$`, "${1}es",
	`([^aeiouy]|qu)y$`, "${1}ies",
	`(?:([^f])fe|([lr])f)$`, "${1}${2}ves",
	`sis$`, "ses",
	`([ti])um$`, "${1}a",
	`(buffal|tomat|potat|her)o$`, "${1}oes",
	`s$`, "s",
	`$`, "s",
)

var irregular = map[string]string{
	"person": "people",
	"man":    "men",
	"woman":  "women",
	"child":  "children",
	"tooth":  "teeth",
	"foot":   "feet",
	"mouse":  "mice",
	"goose":  "geese",
	"move":   "moves",
	"leaf":   "leaves",
}

var uncountable = map[string]struct{}{
	"equipment":   {},
	"information": {},
	"rice":        {},
	"money":       {},
	"species":     {},
	"series":      {},
	"fish":        {},
	"sheep":       {},
	"news":        {},
	"data":        {},
	"metadata":    {},
	"media":       {},
	"software":    {},
	"feedback":    {},
	"content":     {},
}

var singularOf = func() map[string]string {
	m := make(map[string]string, len(irregular))
	for s, p := range irregular {
		m[p] = s
	}
	return m
}()

var (
	singularCache sync.Map
	pluralCache   sync.Map
)

// Singularize returns the singular form of word.
func Singularize(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return ""
	}
	if v, ok := singularCache.Load(w); ok {
		return v.(string)
	}
	out := singularize(w)
	singularCache.Store(w, out)
	return out
}

// Pluralize returns the plural form of word.
func Pluralize(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return ""
	}
	if v, ok := pluralCache.Load(w); ok {
		return v.(string)
	}
	out := pluralize(w)
	pluralCache.Store(w, out)
	return out
}

// IsSingular reports whether word is already singular.
// Uncountable words are both singular and plural.
func IsSingular(word string) bool {
	w := strings.ToLower(strings.TrimSpace(word))
	return w != "" && Singularize(w) == w
}

// IsPlural reports whether word is in plural form. Uncountable words are not.
func IsPlural(word string) bool {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return false
	}
	if _, ok := uncountable[lastWord(w)]; ok {
		return false
	}
	return Singularize(w) != w
}

func singularize(w string) string {
	head, last := splitLast(w)
	if _, ok := uncountable[last]; ok {
		return w
	}
	if s, ok := singularOf[last]; ok {
		return head + s
	}
	if _, ok := irregular[last]; ok {
		return w
	}
	return head + apply(singularRules, last)
}

func pluralize(w string) string {
	head, last := splitLast(w)
	if _, ok := uncountable[last]; ok {
		return w
	}
	if p, ok := irregular[last]; ok {
		return head + p
	}
	if _, ok := singularOf[last]; ok {
		return w
	}
	return head + apply(pluralRules, last)
}

func apply(rs []rule, w string) string {
	for _, r := range rs {
		if r.re.MatchString(w) {
			return r.re.ReplaceAllString(w, r.repl)
		}
	}
	return w
}

// splitLast splits snake_case compounds so only the last word is inflected.
func splitLast(w string) (string, string) {
	if i := strings.LastIndexByte(w, '_'); i >= 0 {
		return w[:i+1], w[i+1:]
	}
	return "", w
}

func lastWord(w string) string {
	_, last := splitLast(w)
	return last
}
