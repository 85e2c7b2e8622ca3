// Package output handles file naming and writing for processed documents.
// URL sources are named after host and path (e.g. chatgpt_com_c_42.html);
// file sources keep their base name.
package output

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write stores data under a name derived from source with the given
// extension and returns the written path.
func (w *Writer) Write(source string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, Name(source)+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// WriteIfChanged is Write, except that nothing is written when the file
// already holds exactly data. It reports whether the file was written.
func (w *Writer) WriteIfChanged(source string, data []byte, ext string) (string, bool, error) {
	path := filepath.Join(w.OutputDir, Name(source)+ext)
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return path, false, nil
	}
	if _, err := w.Write(source, data, ext); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// WriteInPlace replaces the file at path, keeping its permissions.
func WriteInPlace(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

// Name converts a source into a flat file name without extension.
// Example: https://chatgpt.com/c/42 → chatgpt_com_c_42
// Example: ./exports/chat.html → chat
func Name(source string) string {
	parsed, err := url.Parse(source)
	if err != nil || parsed.Host == "" {
		base := filepath.Base(source)
		return sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
	}

	parts := []string{sanitize(parsed.Host)}
	path := strings.Trim(parsed.Path, "/")
	if path != "" {
		for _, seg := range strings.Split(path, "/") {
			parts = append(parts, sanitize(seg))
		}
	}
	return strings.Join(parts, "_")
}

// sanitize replaces non-alphanumeric characters with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
