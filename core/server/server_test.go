package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/chatmd/core/apply"
	"github.com/gaurav-prasanna/chatmd/core/metrics"
	"github.com/gaurav-prasanna/chatmd/core/state"
	"github.com/gaurav-prasanna/chatmd/core/translate"
)

func newTestServer(enabled bool) (*httptest.Server, *state.Flag) {
	flag := state.NewMemory(enabled)
	tr := translate.New()
	reg := prom.NewRegistry()
	applier := apply.New(tr, flag, apply.DefaultOptions()).WithRecorder(metrics.NewPrometheusRecorder(reg))
	srv := New(tr, applier, flag, metrics.HTTPHandler(reg))
	return httptest.NewServer(srv.Handler()), flag
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestTranslateEndpoint(t *testing.T) {
	ts, flag := newTestServer(true)
	defer ts.Close()

	resp := post(t, ts.URL+"/translate", "**hi**")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "<strong>hi</strong>", readAll(t, resp))

	require.NoError(t, flag.Set(false))
	resp = post(t, ts.URL+"/translate", "**hi**")
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Equal(t, "**hi**", readAll(t, resp))
}

func TestTranslateEndpoint_MethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(true)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/translate")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
}

func TestApplyEndpoint(t *testing.T) {
	ts, _ := newTestServer(true)
	defer ts.Close()

	doc := `<html><head></head><body><div data-message-author-role="user"><span>~~x~~</span></div></body></html>`
	resp := post(t, ts.URL+"/apply", doc)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(HeaderTransformed))
	assert.Contains(t, readAll(t, resp), `<span data-otto-md="1"><del>x</del></span>`)

	metricsResp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Contains(t, readAll(t, metricsResp), "chatmd_elements_transformed_total 1")
}

func TestStateEndpoints(t *testing.T) {
	ts, flag := newTestServer(true)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	var st StateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, StateResponse{Enabled: true, Label: "MD ON"}, st)

	resp = post(t, ts.URL+"/toggle", "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, StateResponse{Enabled: false, Label: "MD OFF"}, st)
	assert.False(t, flag.Enabled())

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/state", strings.NewReader(`{"enabled": true}`))
	require.NoError(t, err)
	putResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)
	assert.True(t, flag.Enabled())
}

func TestStateEndpoint_BadBody(t *testing.T) {
	ts, _ := newTestServer(true)
	defer ts.Close()

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/state", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type failingToggle struct{ state.Flag }

func (f *failingToggle) Toggle() (bool, error) { return false, errors.New("disk full") }

func TestToggleEndpoint_PersistFailure(t *testing.T) {
	flag := &failingToggle{}
	srv := New(translate.New(), nil, flag, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := post(t, ts.URL+"/toggle", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(false)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
