package slug_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/dispatch/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{"simple text", "Hello World", nil, "hello-world"},
		{"punctuation", "Hello, World!", nil, "hello-world"},
		{"numbers", "Product 123", nil, "product-123"},
		{"multiple spaces", "Too    Many     Spaces", nil, "too-many-spaces"},
		{"trimmed", "  Trim Me  ", nil, "trim-me"},
		{"special characters", "Price: $99.99", nil, "price-99-99"},
		{"empty", "", nil, ""},
		{"only symbols", "!@#$%^&*()", nil, ""},
		{"diacritics", "Café résumé naïve", nil, "cafe-resume-naive"},
		{"spanish", "Ñoño español", nil, "nono-espanol"},
		{"non latin dropped", "hello мир world", nil, "hello-world"},
		{"keep case", "Hello World", []slug.Option{slug.Lowercase(false)}, "Hello-World"},
		{"custom separator", "Hello World", []slug.Option{slug.Separator("_")}, "hello_world"},
		{"max length at boundary", "Long Article Title", []slug.Option{slug.MaxLength(12)}, "long-article"},
		{"max length inside a word", "Long Article Title", []slug.Option{slug.MaxLength(10)}, "long"},
		{"max length single word", "Supercalifragilistic", []slug.Option{slug.MaxLength(5)}, "super"},
		{"max length not reached", "short", []slug.Option{slug.MaxLength(50)}, "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}

func TestUnique(t *testing.T) {
	t.Parallel()

	a := slug.Unique("Hello World")
	b := slug.Unique("Hello World")
	assert.Regexp(t, regexp.MustCompile(`^hello-world-[a-z0-9]{6}$`), a)
	assert.NotEqual(t, a, b)

	assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]{6}$`), slug.Unique("!!!"))
	assert.Regexp(t, regexp.MustCompile(`^hello_[a-z0-9]{6}$`), slug.Unique("hello", slug.Separator("_")))
}
