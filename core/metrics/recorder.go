// Package metrics exposes scan and transformation counters.
package metrics

import "time"

// SkipReason labels why a root or candidate was left alone.
type SkipReason string

const (
	SkipDisabled  SkipReason = "disabled"
	SkipProcessed SkipReason = "processed"
	SkipUnchanged SkipReason = "unchanged"
)

// Recorder receives observations from the Applier.
type Recorder interface {
	ObserveScan(d time.Duration, roots int)
	IncTransformed(n int)
	IncSkipped(reason SkipReason)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveScan(time.Duration, int) {}
func (NoopRecorder) IncTransformed(int)             {}
func (NoopRecorder) IncSkipped(SkipReason)          {}
