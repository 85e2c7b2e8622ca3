package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calls struct {
	mu    sync.Mutex
	paths []string
}

func (c *calls) handle(_ context.Context, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
}

func (c *calls) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func realPath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

func TestIsDocument(t *testing.T) {
	assert.True(t, IsDocument("a/chat.html"))
	assert.True(t, IsDocument("CHAT.HTM"))
	assert.False(t, IsDocument("notes.txt"))
}

func TestWatcher_DirectoryChangeTriggersHandler(t *testing.T) {
	dir := realPath(t, t.TempDir())
	c := &calls{}
	w, err := New(20*time.Millisecond, c.handle)
	require.NoError(t, err)
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	doc := filepath.Join(dir, "chat.html")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(doc, []byte("<p>*x*</p>"), 0o644))

	require.Eventually(t, func() bool {
		return len(c.snapshot()) > 0
	}, 3*time.Second, 10*time.Millisecond)
	for _, p := range c.snapshot() {
		assert.Equal(t, doc, p)
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_SingleFileIgnoresSiblings(t *testing.T) {
	dir := realPath(t, t.TempDir())
	target := filepath.Join(dir, "target.html")
	sibling := filepath.Join(dir, "sibling.html")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))

	c := &calls{}
	w, err := New(10*time.Millisecond, c.handle)
	require.NoError(t, err)
	require.NoError(t, w.Add(target))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(sibling, []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("c"), 0o644))

	require.Eventually(t, func() bool {
		return len(c.snapshot()) > 0
	}, 3*time.Second, 10*time.Millisecond)
	assert.NotContains(t, c.snapshot(), sibling)
}

func TestWatcher_Documents(t *testing.T) {
	dir := realPath(t, t.TempDir())
	other := realPath(t, t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644))
	single := filepath.Join(other, "c.htm")
	require.NoError(t, os.WriteFile(single, nil, 0o644))

	w, err := New(time.Millisecond, func(context.Context, string) {})
	require.NoError(t, err)
	defer w.close()
	require.NoError(t, w.Add(dir))
	require.NoError(t, w.Add(single))

	docs := w.Documents()
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.html"), single}, docs)
}

func TestWatcher_AddMissingPath(t *testing.T) {
	w, err := New(time.Millisecond, func(context.Context, string) {})
	require.NoError(t, err)
	defer w.close()
	require.Error(t, w.Add(filepath.Join(t.TempDir(), "absent")))
}

func TestRescanner_RunsPeriodically(t *testing.T) {
	var n atomic.Int32
	r, err := NewRescanner(20*time.Millisecond, func() { n.Add(1) })
	require.NoError(t, err)

	r.Start()
	require.Eventually(t, func() bool { return n.Load() >= 2 }, 3*time.Second, 5*time.Millisecond)
	require.NoError(t, r.Stop())
}
