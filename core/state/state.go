// Package state holds the process-wide enabled flag.
//
// A Flag is either memory-only or backed by a small YAML file. The file
// form mirrors a browser's local storage entry: it is created with the
// default (enabled) on first open and rewritten on every change.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrInvalidValue is returned when a textual flag value cannot be parsed.
var ErrInvalidValue = errors.New("invalid flag value")

// document is the on-disk form of the flag.
type document struct {
	Enabled bool `yaml:"enabled"`
}

// Flag is a concurrency-safe boolean toggle.
type Flag struct {
	mu      sync.RWMutex
	enabled bool
	path    string
}

// NewMemory returns a Flag that is never persisted.
func NewMemory(enabled bool) *Flag {
	return &Flag{enabled: enabled}
}

// Open loads the flag stored at path, creating it enabled when absent.
func Open(path string) (*Flag, error) {
	f := &Flag{enabled: true, path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := f.persist(); err != nil {
			return nil, err
		}
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", path, err)
	}
	f.enabled = doc.Enabled
	return f, nil
}

// Enabled reports the current value.
func (f *Flag) Enabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.enabled
}

// Set stores v. The in-memory value is only changed once persisted.
func (f *Flag) Set(v bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setLocked(v)
}

// Toggle flips the flag and returns the new value.
func (f *Flag) Toggle() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := !f.enabled
	if err := f.setLocked(next); err != nil {
		return f.enabled, err
	}
	return next, nil
}

// Reload re-reads the backing file, picking up changes made by other
// processes. A missing file leaves the current value in place.
func (f *Flag) Reload() error {
	if f.path == "" {
		return nil
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading state file: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing state file %s: %w", f.path, err)
	}

	f.mu.Lock()
	f.enabled = doc.Enabled
	f.mu.Unlock()
	return nil
}

// Path returns the backing file, or "" for memory-only flags.
func (f *Flag) Path() string {
	return f.path
}

func (f *Flag) setLocked(v bool) error {
	prev := f.enabled
	f.enabled = v
	if err := f.persist(); err != nil {
		f.enabled = prev
		return err
	}
	return nil
}

func (f *Flag) persist() error {
	if f.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := yaml.Marshal(document{Enabled: f.enabled})
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("writing state file %s: %w", f.path, err)
	}
	return nil
}

// Label renders the flag the way the on-page badge shows it.
func Label(enabled bool) string {
	if enabled {
		return "MD ON"
	}
	return "MD OFF"
}

// ParseValue accepts on/off, true/false and 1/0.
func ParseValue(s string) (bool, error) {
	switch s {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q (want on or off)", ErrInvalidValue, s)
	}
}
