package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chatmd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultRootSelector, cfg.Selectors.Roots)
	assert.Equal(t, DefaultCandidateSelector, cfg.Selectors.Candidates)
	assert.Equal(t, time.Second, cfg.Watch.RescanInterval)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	t.Setenv("CHATMD_TEST_DIR", "/tmp/chatmd")
	path := writeConfig(t, `
state_file: ${CHATMD_TEST_DIR}/state.yaml
selectors:
  roots: "article.user"
watch:
  debounce: 100ms
  rescan_interval: 5s
logging:
  level: DEBUG
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/chatmd/state.yaml", cfg.StateFile)
	assert.Equal(t, "article.user", cfg.Selectors.Roots)
	assert.Equal(t, DefaultExcludeSelector, cfg.Selectors.Exclude)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 5*time.Second, cfg.Watch.RescanInterval)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvStateFile, "/var/lib/chatmd/state.yaml")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvAddr, "127.0.0.1:9999")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/chatmd/state.yaml", cfg.StateFile)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
}

func TestLoad_InvalidSelector(t *testing.T) {
	path := writeConfig(t, `
selectors:
  candidates: "p[[["
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selectors.candidates")
}

func TestLoad_NegativeDuration(t *testing.T) {
	path := writeConfig(t, `
watch:
  debounce: -1s
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "watch.debounce")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, NormalizeLogLevel(" Error "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
}
