// Package translate implements the chat-text Translator.
//
// Translate runs a fixed sequence of substitutions over one string:
//
//  1. opt-out check ({{{ anywhere disables everything)
//  2. backslash escape protection
//  3. HTML escaping
//  4. fenced code block extraction
//  5. inline code extraction
//  6. headings, unordered lists, ordered lists, checkboxes
//  7. emphasis, strikethrough, links
//  8. newline conversion and span restoration
//
// The order matters: every later pass only sees text that earlier passes
// left unprotected. Code and escaped characters are parked in a per-call
// span table and only restored at the very end.
package translate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// OptOutMarker disables transformation for the whole input.
const OptOutMarker = "{{{"

// Checkbox glyphs.
const (
	CheckedGlyph   = "☑"
	UncheckedGlyph = "☐"
)

var (
	fencedBlock = regexp.MustCompile("```([\\s\\S]*?)```")
	inlineCode  = regexp.MustCompile("`([^`\\n]+)`")

	headingLine   = regexp.MustCompile(`(?m)^(#{1,3})[ \t]+(.+)$`)
	unorderedList = regexp.MustCompile(`(^|\n)((?:[ \t]*[-*][ \t]+[^\n]+\n?)+)`)
	unorderedItem = regexp.MustCompile(`^[ \t]*[-*][ \t]+`)
	orderedList   = regexp.MustCompile(`(^|\n)((?:[ \t]*\d+\.[ \t]+[^\n]+\n?)+)`)
	orderedItem   = regexp.MustCompile(`^[ \t]*\d+\.[ \t]+`)
	checkboxLine  = regexp.MustCompile(`(^|\n)\[([ xX])\][ \t]+([^\n]+)`)

	boldItalicStar  = regexp.MustCompile(`\*\*\*([^*][\s\S]*?)\*\*\*`)
	boldItalicUnder = regexp.MustCompile(`___([^_][\s\S]*?)___`)
	boldStar        = regexp.MustCompile(`\*\*([^*][\s\S]*?)\*\*`)
	boldUnder       = regexp.MustCompile(`__([^_][\s\S]*?)__`)
	strike          = regexp.MustCompile(`~~([^~\n]+)~~`)
	link            = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\s)]+)\)`)

	// Single markers must be followed by whitespace, closing punctuation or
	// the end of input. RE2 has no lookahead, hence regexp2.
	italicStar  = regexp2.MustCompile(`(^|[\s(])\*([^*\n]+)\*(?=[\s).,!?;:]|$)`, regexp2.None)
	italicUnder = regexp2.MustCompile(`(^|[\s(])_([^_\n]+)_(?=[\s).,!?;:]|$)`, regexp2.None)
)

// Translator converts chat text to markup. The zero value is ready to use
// and safe for concurrent use; it holds no state between calls.
type Translator struct{}

// New creates a Translator.
func New() *Translator {
	return &Translator{}
}

var std = New()

// Translate converts input using a shared Translator.
func Translate(input string) string {
	return std.Translate(input)
}

// Translate returns input rendered as markup. Empty input is returned as
// is. Input containing OptOutMarker is only HTML-escaped, with newlines
// turned into <br>. Unmatched syntax passes through as literal text.
// Invalid UTF-8 sequences are replaced with U+FFFD.
func (t *Translator) Translate(input string) string {
	if input == "" {
		return input
	}
	input = strings.ToValidUTF8(input, "\uFFFD")
	if strings.Contains(input, OptOutMarker) {
		return strings.ReplaceAll(EscapeHTML(input), "\n", "<br>")
	}

	spans := newSpanTable()
	text := protectEscapes(input, spans)

	text = replaceSubmatches(fencedBlock, text, func(m []string) string {
		return spans.add(spanBlock, "<pre><code>"+m[1]+"</code></pre>")
	})
	text = replaceSubmatches(inlineCode, text, func(m []string) string {
		return spans.add(spanInline, "<code>"+m[1]+"</code>")
	})

	text = renderBlocks(text)
	text = renderInline(text)

	text = strings.ReplaceAll(text, "\n", "<br>")
	return spans.restoreAll(text)
}

func renderBlocks(text string) string {
	text = replaceSubmatches(headingLine, text, func(m []string) string {
		return fmt.Sprintf(`<div class="otto-h%d">%s</div>`, len(m[1]), m[2])
	})
	text = replaceSubmatches(unorderedList, text, func(m []string) string {
		return m[1] + renderList("ul", m[2], unorderedItem)
	})
	text = replaceSubmatches(orderedList, text, func(m []string) string {
		return m[1] + renderList("ol", m[2], orderedItem)
	})
	return replaceSubmatches(checkboxLine, text, func(m []string) string {
		box := UncheckedGlyph
		if strings.TrimSpace(m[2]) != "" {
			box = CheckedGlyph
		}
		return m[1] + `<span class="otto-checkbox">` + box + "</span> " + m[3]
	})
}

// renderList turns a block of marker lines into one list container.
func renderList(tag, block string, marker *regexp.Regexp) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<%s class="otto-%s">`, tag, tag)
	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		item := strings.TrimSpace(marker.ReplaceAllString(line, ""))
		b.WriteString("<li>" + item + "</li>")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

func renderInline(text string) string {
	text = boldItalicStar.ReplaceAllString(text, "<strong><em>$1</em></strong>")
	text = boldItalicUnder.ReplaceAllString(text, "<strong><em>$1</em></strong>")
	text = boldStar.ReplaceAllString(text, "<strong>$1</strong>")
	text = boldUnder.ReplaceAllString(text, "<strong>$1</strong>")
	text = replaceLookahead(italicStar, text, "$1<em>$2</em>")
	text = replaceLookahead(italicUnder, text, "$1<em>$2</em>")
	text = strike.ReplaceAllString(text, "<del>$1</del>")
	return link.ReplaceAllString(text, `<a href="$2" target="_blank" rel="noopener noreferrer">$1</a>`)
}
