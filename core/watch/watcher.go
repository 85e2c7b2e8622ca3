// Package watch re-applies the Applier as documents change.
//
// A Watcher turns filesystem notifications into debounced per-document
// callbacks. A Rescanner runs a task on a fixed interval, catching any
// change the notifications missed.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gaurav-prasanna/chatmd/logfields"
)

// Handler is invoked with the absolute path of a changed document.
type Handler func(ctx context.Context, path string)

// IsDocument reports whether path names an HTML document.
func IsDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}

// Watcher monitors documents and directories of documents.
type Watcher struct {
	watcher  *fsnotify.Watcher
	handler  Handler
	debounce time.Duration

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]bool
	pending map[string]*time.Timer
}

// New creates a Watcher that calls handler once a document has been quiet
// for debounce.
func New(debounce time.Duration, handler Handler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		watcher:  fw,
		handler:  handler,
		debounce: debounce,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Add watches a document or every document directly inside a directory.
// Single files are watched through their parent directory so that
// editors replacing the file atomically are still seen.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	dir := abs
	w.mu.Lock()
	if info.IsDir() {
		w.dirs[abs] = true
	} else {
		w.files[abs] = true
		dir = filepath.Dir(abs)
	}
	w.mu.Unlock()

	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	return nil
}

// Documents lists every document currently covered by the watch set.
func (w *Watcher) Documents() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]bool)
	for f := range w.files {
		seen[f] = true
	}
	for dir := range w.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			slog.Warn("Listing watched directory failed", logfields.Path(dir), logfields.Error(err))
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && IsDocument(e.Name()) {
				seen[filepath.Join(dir, e.Name())] = true
			}
		}
	}

	docs := make([]string, 0, len(seen))
	for d := range seen {
		docs = append(docs, d)
	}
	sort.Strings(docs)
	return docs
}

// Run delivers events until ctx is cancelled, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			slog.Debug("Document change detected", logfields.Path(event.Name), logfields.Event(event.Op.String()))
			w.schedule(ctx, filepath.Clean(event.Name))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Document watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) matches(name string) bool {
	name = filepath.Clean(name)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[name] {
		return true
	}
	return w.dirs[filepath.Dir(name)] && IsDocument(name)
}

// schedule (re)arms the debounce timer of path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.handler(ctx, path)
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		slog.Error("Closing document watcher failed", logfields.Error(err))
	}
}
