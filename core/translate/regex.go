package translate

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// replaceSubmatches is ReplaceAllStringFunc with access to capture groups.
// Unmatched optional groups are passed as empty strings.
func replaceSubmatches(re *regexp.Regexp, s string, fn func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = s[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(fn(groups))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// replaceLookahead applies a regexp2 substitution. regexp2 only fails on
// match timeouts, which are not configured, so the input is kept on error.
func replaceLookahead(re *regexp2.Regexp, s, replacement string) string {
	out, err := re.Replace(s, replacement, -1, -1)
	if err != nil {
		return s
	}
	return out
}
