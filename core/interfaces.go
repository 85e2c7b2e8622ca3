// Package core defines the interfaces shared by chatmd's components.
// The Translator knows nothing about documents; the Applier knows nothing
// about Markdown syntax. The enabled flag is the only state they share.
package core

import "context"

// FetchResult holds the raw HTML of a loaded document.
type FetchResult struct {
	Source     string
	StatusCode int
	HTML       string
}

// DocumentMetadata describes where a processed document came from.
type DocumentMetadata struct {
	Source    string `json:"source"`
	Title     string `json:"title"`
	Enabled   bool   `json:"enabled"`
	FetchedAt string `json:"fetched_at"` // ISO8601
}

// Transformation records one element whose content was replaced.
type Transformation struct {
	Root   int    `json:"root"`
	Text   string `json:"text"`
	Markup string `json:"markup"`
}

// ApplyResult summarizes a single scan of a document.
type ApplyResult struct {
	Enabled         bool             `json:"enabled"`
	Roots           int              `json:"roots"`
	SkippedRoots    int              `json:"skipped_roots"`
	Candidates      int              `json:"candidates"`
	Unchanged       int              `json:"unchanged"`
	Transformations []Transformation `json:"transformations"`
}

// Touched reports whether the scan changed the document.
func (r ApplyResult) Touched() bool {
	return len(r.Transformations) > 0
}

// Merge folds other into r. Root indexes of other are kept as-is.
func (r *ApplyResult) Merge(other ApplyResult) {
	r.Roots += other.Roots
	r.SkippedRoots += other.SkippedRoots
	r.Candidates += other.Candidates
	r.Unchanged += other.Unchanged
	r.Transformations = append(r.Transformations, other.Transformations...)
}

// Translator converts chat text into safe inline markup.
type Translator interface {
	Translate(input string) string
}

// Applier rewrites the user messages of an HTML document in place.
type Applier interface {
	Apply(html string) (string, ApplyResult, error)
}

// Toggle is the process-wide enabled flag.
type Toggle interface {
	Enabled() bool
	Set(enabled bool) error
	Toggle() (bool, error)
}

// Fetcher loads an HTML document from a URL or path.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*FetchResult, error)
}
