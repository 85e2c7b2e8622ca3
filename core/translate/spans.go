package translate

import (
	"regexp"
	"strconv"
)

// Placeholders are written as U+E000 kind index U+E001. Both sentinels are
// private-use runes that the text escaper always encodes, so the only
// sentinels left in the working string are the ones added here.
const (
	sentinelOpen  = '\uE000'
	sentinelClose = '\uE001'
)

// spanKind tags a protected span.
type spanKind byte

const (
	spanEscape spanKind = 'e'
	spanBlock  spanKind = 'b'
	spanInline spanKind = 'i'
)

// restoreOrder resolves inline code first, then fenced blocks (which may
// have been captured inside an inline span), then escaped characters
// (which may sit inside either).
var restoreOrder = []spanKind{spanInline, spanBlock, spanEscape}

var placeholderPattern = regexp.MustCompile(`\x{E000}([ebi])([0-9]+)\x{E001}`)

// spanTable holds the protected spans of a single Translate call, one
// append-only list per kind.
type spanTable struct {
	lists map[spanKind][]string
}

func newSpanTable() *spanTable {
	return &spanTable{lists: make(map[spanKind][]string, 3)}
}

// add records content and returns the placeholder that refers to it.
func (t *spanTable) add(kind spanKind, content string) string {
	idx := len(t.lists[kind])
	t.lists[kind] = append(t.lists[kind], content)
	return string(sentinelOpen) + string(rune(kind)) + strconv.Itoa(idx) + string(sentinelClose)
}

// restore substitutes placeholders of one kind with their recorded content.
func (t *spanTable) restore(text string, kind spanKind) string {
	list := t.lists[kind]
	if len(list) == 0 {
		return text
	}
	return replaceSubmatches(placeholderPattern, text, func(m []string) string {
		if spanKind(m[1][0]) != kind {
			return m[0]
		}
		idx, err := strconv.Atoi(m[2])
		if err != nil || idx >= len(list) {
			return m[0]
		}
		return list[idx]
	})
}

// restoreAll resolves every kind in dependency order.
func (t *spanTable) restoreAll(text string) string {
	for _, kind := range restoreOrder {
		text = t.restore(text, kind)
	}
	return text
}
