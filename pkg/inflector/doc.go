// Package inflector converts English nouns between singular and plural form.
//
// It covers the common regular suffix rules plus a table of irregular and
// uncountable words, which is enough for resource and controller names:
//
//	inflector.Singularize("notes")   // "note"
//	inflector.Singularize("people")  // "person"
//	inflector.Pluralize("category")  // "categories"
//	inflector.IsPlural("news")       // false, uncountable
//
// Names are matched case-insensitively and results are lower-case.
// Results are cached; all functions are safe for concurrent use.
package inflector
