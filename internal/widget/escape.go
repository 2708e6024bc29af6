package widget

import (
	"regexp"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// EscapeHTML escapes the five HTML-significant characters.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Format turns **x** into <strong>x</strong> and newlines into <br>.
// The input is expected to be escaped already.
func Format(s string) string {
	s = boldPattern.ReplaceAllString(s, "<strong>$1</strong>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
