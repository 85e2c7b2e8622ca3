// Package logfields holds the canonical slog attribute keys used across chatmd.
package logfields

import "log/slog"

const (
	KeySource      = "source"
	KeyPath        = "path"
	KeyRoots       = "roots"
	KeyCandidates  = "candidates"
	KeyTransformed = "transformed"
	KeyEnabled     = "enabled"
	KeyDurationMS  = "duration_ms"
	KeyAddr        = "addr"
	KeyEvent       = "event"
	KeyError       = "error"
)

func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Roots(n int) slog.Attr           { return slog.Int(KeyRoots, n) }
func Candidates(n int) slog.Attr      { return slog.Int(KeyCandidates, n) }
func Transformed(n int) slog.Attr     { return slog.Int(KeyTransformed, n) }
func Enabled(v bool) slog.Attr        { return slog.Bool(KeyEnabled, v) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Event(e string) slog.Attr        { return slog.String(KeyEvent, e) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
