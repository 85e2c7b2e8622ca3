// Package report builds the JSON summary of a scan: where the document
// came from, what the Applier did, and which parts of the markup
// vocabulary the transformations produced.
package report

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/chatmd/core"
)

// Extension is the file extension for reports.
const Extension = ".report.json"

// Summary holds the counters of a scan.
type Summary struct {
	Enabled      bool `json:"enabled"`
	Roots        int  `json:"roots"`
	SkippedRoots int  `json:"skipped_roots"`
	Candidates   int  `json:"candidates"`
	Unchanged    int  `json:"unchanged"`
	Transformed  int  `json:"transformed"`
}

// Report is the complete JSON output for one document.
type Report struct {
	Metadata        core.DocumentMetadata `json:"metadata"`
	Summary         Summary               `json:"summary"`
	Vocabulary      map[string]int        `json:"vocabulary"`
	Transformations []core.Transformation `json:"transformations"`
}

// Metadata describes a document loaded from source.
func Metadata(source, document string, enabled bool) core.DocumentMetadata {
	return core.DocumentMetadata{
		Source:    source,
		Title:     extractTitle(document),
		Enabled:   enabled,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// Build assembles the report for a scan result.
func Build(meta core.DocumentMetadata, result core.ApplyResult) Report {
	transformations := result.Transformations
	if transformations == nil {
		transformations = []core.Transformation{}
	}
	return Report{
		Metadata: meta,
		Summary: Summary{
			Enabled:      result.Enabled,
			Roots:        result.Roots,
			SkippedRoots: result.SkippedRoots,
			Candidates:   result.Candidates,
			Unchanged:    result.Unchanged,
			Transformed:  len(result.Transformations),
		},
		Vocabulary:      countVocabulary(result.Transformations),
		Transformations: transformations,
	}
}

// Render marshals the report for a scan result.
func Render(meta core.DocumentMetadata, result core.ApplyResult) ([]byte, error) {
	data, err := json.MarshalIndent(Build(meta, result), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return data, nil
}

func extractTitle(document string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// vocabulary maps report keys to the opening tags that count toward them.
var vocabulary = map[string]*regexp.Regexp{
	"bold_italic":   regexp.MustCompile(`<strong><em>`),
	"bold":          regexp.MustCompile(`<strong>`),
	"italic":        regexp.MustCompile(`<em>`),
	"strikethrough": regexp.MustCompile(`<del>`),
	"inline_code":   regexp.MustCompile(`<code>`),
	"code_block":    regexp.MustCompile(`<pre>`),
	"link":          regexp.MustCompile(`<a href=`),
	"heading":       regexp.MustCompile(`<div class="otto-h[1-3]">`),
	"list":          regexp.MustCompile(`<[uo]l class="otto-[uo]l">`),
	"list_item":     regexp.MustCompile(`<li>`),
	"checkbox":      regexp.MustCompile(`<span class="otto-checkbox">`),
}

// countVocabulary counts markup constructs across transformations. Inline
// code inside a code block is counted once, as a code block, and
// bold+italic is counted as neither bold nor italic.
func countVocabulary(ts []core.Transformation) map[string]int {
	counts := make(map[string]int, len(vocabulary))
	for key := range vocabulary {
		counts[key] = 0
	}
	for _, t := range ts {
		for key, re := range vocabulary {
			counts[key] += len(re.FindAllStringIndex(t.Markup, -1))
		}
	}
	counts["inline_code"] -= counts["code_block"]
	counts["bold"] -= counts["bold_italic"]
	counts["italic"] -= counts["bold_italic"]
	return counts
}
