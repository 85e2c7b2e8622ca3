// Package apply implements the Applier: it finds user-authored messages in
// an HTML document and replaces the content of their leaf text elements
// with translated markup.
//
// Processed elements carry data-otto-md="1" and processed message roots
// carry data-otto-md-root="1", so rescanning the same document is a no-op.
package apply

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gaurav-prasanna/chatmd/config"
	"github.com/gaurav-prasanna/chatmd/core"
	"github.com/gaurav-prasanna/chatmd/core/metrics"
	"github.com/gaurav-prasanna/chatmd/logfields"
)

// Marker attributes.
const (
	AttrProcessed     = "data-otto-md"
	AttrRootProcessed = "data-otto-md-root"
)

// Options selects message roots and candidate elements.
type Options struct {
	// RootSelector matches message roots directly.
	RootSelector string
	// ParentRootSelector matches elements whose parent is also a root.
	ParentRootSelector string
	// CandidateSelector matches descendants of a root eligible for rewriting.
	CandidateSelector string
	// ExcludeSelector rejects candidates that are, or sit inside, a match.
	ExcludeSelector string
}

// DefaultOptions returns the selectors for chat user messages.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Selectors)
}

// OptionsFromConfig maps the selector configuration onto Options.
func OptionsFromConfig(s config.Selectors) Options {
	return Options{
		RootSelector:       s.Roots,
		ParentRootSelector: s.ParentRoots,
		CandidateSelector:  s.Candidates,
		ExcludeSelector:    s.Exclude,
	}
}

// DocumentApplier rewrites HTML documents using a Translator.
type DocumentApplier struct {
	translator core.Translator
	toggle     core.Toggle
	opts       Options
	recorder   metrics.Recorder
}

// New creates a DocumentApplier. The toggle is read before every scan and
// every message root.
func New(translator core.Translator, toggle core.Toggle, opts Options) *DocumentApplier {
	return &DocumentApplier{
		translator: translator,
		toggle:     toggle,
		opts:       opts,
		recorder:   metrics.NoopRecorder{},
	}
}

// WithRecorder sets the metrics recorder.
func (a *DocumentApplier) WithRecorder(r metrics.Recorder) *DocumentApplier {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	a.recorder = r
	return a
}

// Apply parses document, scans it and renders it back. The style sheet is
// injected only when at least one element changed; an untouched document
// is returned exactly as given.
func (a *DocumentApplier) Apply(document string) (string, core.ApplyResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", core.ApplyResult{}, fmt.Errorf("parsing HTML: %w", err)
	}

	result := a.Scan(doc)
	if !result.Touched() {
		return document, result, nil
	}

	InjectStyles(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Nodes[0]); err != nil {
		return "", result, fmt.Errorf("rendering HTML: %w", err)
	}
	return buf.String(), result, nil
}

// Roots returns every message root of doc without duplicates.
func (a *DocumentApplier) Roots(doc *goquery.Document) *goquery.Selection {
	roots := doc.Find(a.opts.RootSelector)
	if a.opts.ParentRootSelector != "" {
		roots = roots.AddSelection(doc.Find(a.opts.ParentRootSelector).Parent())
	}
	return roots
}

// Scan enhances every message root in doc.
func (a *DocumentApplier) Scan(doc *goquery.Document) core.ApplyResult {
	start := time.Now()
	result := core.ApplyResult{Enabled: a.toggle.Enabled()}
	if !result.Enabled {
		a.recorder.IncSkipped(metrics.SkipDisabled)
		return result
	}

	a.Roots(doc).Each(func(i int, root *goquery.Selection) {
		result.Merge(a.EnhanceRoot(root, i))
	})

	a.recorder.ObserveScan(time.Since(start), result.Roots)
	a.recorder.IncTransformed(len(result.Transformations))
	slog.Debug("Scanned document",
		logfields.Roots(result.Roots),
		logfields.Candidates(result.Candidates),
		logfields.Transformed(len(result.Transformations)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return result
}

// EnhanceRoot rewrites the eligible leaf elements of one message root.
// index identifies the root in the returned transformations.
func (a *DocumentApplier) EnhanceRoot(root *goquery.Selection, index int) core.ApplyResult {
	result := core.ApplyResult{Enabled: a.toggle.Enabled(), Roots: 1}
	if !result.Enabled {
		result.SkippedRoots++
		a.recorder.IncSkipped(metrics.SkipDisabled)
		return result
	}
	if _, done := root.Attr(AttrRootProcessed); done {
		result.SkippedRoots++
		a.recorder.IncSkipped(metrics.SkipProcessed)
		return result
	}

	for _, el := range a.candidates(root) {
		result.Candidates++
		raw := el.Text()
		markup := a.translator.Translate(raw)
		if markup == "" || markup == raw {
			result.Unchanged++
			a.recorder.IncSkipped(metrics.SkipUnchanged)
			continue
		}
		if goquery.NodeName(el) == "p" && blockMarkup.MatchString(markup) {
			retag(el, atom.Div)
		}
		el.SetHtml(markup)
		el.SetAttr(AttrProcessed, "1")
		result.Transformations = append(result.Transformations, core.Transformation{
			Root:   index,
			Text:   raw,
			Markup: markup,
		})
	}

	if result.Touched() {
		root.SetAttr(AttrRootProcessed, "1")
	}
	return result
}

// blockMarkup matches translator output that may not sit inside a <p>.
var blockMarkup = regexp.MustCompile(`<(?:div|ul|ol|pre)[ >]`)

// retag renames the element in place, keeping its attributes and position.
func retag(el *goquery.Selection, tag atom.Atom) {
	for _, n := range el.Nodes {
		n.DataAtom = tag
		n.Data = tag.String()
	}
}

// candidates collects leaf text elements of root that have not been
// processed and are outside code or editable regions.
func (a *DocumentApplier) candidates(root *goquery.Selection) []*goquery.Selection {
	var out []*goquery.Selection
	root.Find(a.opts.CandidateSelector).Each(func(_ int, el *goquery.Selection) {
		if _, done := el.Attr(AttrProcessed); done {
			return
		}
		if a.opts.ExcludeSelector != "" && el.Closest(a.opts.ExcludeSelector).Length() > 0 {
			return
		}
		if el.AttrOr("role", "") == "button" {
			return
		}
		if el.Children().Length() > 0 {
			return
		}
		if strings.TrimSpace(el.Text()) == "" {
			return
		}
		out = append(out, el)
	})
	return out
}
