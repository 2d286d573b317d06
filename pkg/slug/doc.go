// Package slug turns arbitrary text into URL-safe identifiers.
//
// Latin diacritics are folded to ASCII through Unicode decomposition; runs of
// anything that is not a letter or digit collapse into one separator.
//
//	slug.Make("Café & Restaurant")                 // "cafe-restaurant"
//	slug.Make("Product Name", slug.Separator("_"))  // "product_name"
//	slug.Make("Long Article Title", slug.MaxLength(12)) // "long-article"
//
// Unique appends a short random suffix, for slugs that must not collide:
//
//	slug.Unique("Hello")  // "hello-k3x9qa"
package slug
