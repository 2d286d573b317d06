// Package sanitizer cleans untrusted markup with bluemonday policies.
//
// StripHTML returns plain text and is used for messages echoed into error
// pages. SanitizeHTML keeps basic formatting for user-generated content:
//
//	s := sanitizer.New()
//	s.StripHTML(`<b>Not</b> found<script>x()</script>`) // "Not found"
//	s.SanitizeHTML(`<p onclick="x()">hi</p>`)         // "<p>hi</p>"
package sanitizer
