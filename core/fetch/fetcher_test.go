package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "chatmd")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<p>hi</p>"))
	}))
	defer srv.Close()

	res, err := New().Fetch(context.Background(), srv.URL+"/chat")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "<p>hi</p>", res.HTML)
}

func TestFetch_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New().Fetch(context.Background(), srv.URL)
	require.ErrorContains(t, err, "unexpected status 404")
}

func TestFetch_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.html")
	require.NoError(t, os.WriteFile(path, []byte("<div>x</div>"), 0o644))

	res, err := New().Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Source)
	assert.Equal(t, "<div>x</div>", res.HTML)

	res, err = New().Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, "<div>x</div>", res.HTML)
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	_, err := New().Fetch(context.Background(), "ftp://example.com/chat.html")
	require.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://chatgpt.com/c/1"))
	assert.False(t, IsURL("./chat.html"))
	assert.False(t, IsURL("http://"))
}
