package translate

import (
	"regexp"
	"strings"
)

// htmlEscaper covers the five HTML-significant characters.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// textEscaper additionally encodes the placeholder sentinels so organic
// input can never be mistaken for a protected span reference.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	string(sentinelOpen), "&#xE000;",
	string(sentinelClose), "&#xE001;",
)

// EscapeHTML escapes & < > " and ' for safe inclusion in markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// escapeSequence matches a backslash followed by one of * _ ~ ` [ ] ( ).
var escapeSequence = regexp.MustCompile("\\\\([*_~`\\[\\]()])")

// protectEscapes HTML-escapes input while replacing each backslash escape
// with an escape placeholder holding the bare character.
func protectEscapes(input string, spans *spanTable) string {
	matches := escapeSequence.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return textEscaper.Replace(input)
	}

	var b strings.Builder
	b.Grow(len(input) + len(matches)*4)
	last := 0
	for _, m := range matches {
		b.WriteString(textEscaper.Replace(input[last:m[0]]))
		b.WriteString(spans.add(spanEscape, input[m[2]:m[3]]))
		last = m[1]
	}
	b.WriteString(textEscaper.Replace(input[last:]))
	return b.String()
}
