// Package config loads chatmd configuration from YAML, .env files and the
// process environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvStateFile = "CHATMD_STATE_FILE"
	EnvLogLevel  = "CHATMD_LOG_LEVEL"
	EnvLogFormat = "CHATMD_LOG_FORMAT"
	EnvAddr      = "CHATMD_ADDR"
)

// Default selectors target user-authored chat messages.
const (
	DefaultRootSelector       = `[data-message-author-role="user"], [data-testid="user-message"]`
	DefaultParentRootSelector = `div > div[data-message-author-role="user"]`
	DefaultCandidateSelector  = `.whitespace-pre-wrap, .text-base, .break-words, .text-token-text-primary, p, span, div`
	DefaultExcludeSelector    = `pre, code, [contenteditable="true"]`
)

// Config is the top-level configuration document.
type Config struct {
	StateFile string    `yaml:"state_file"`
	Selectors Selectors `yaml:"selectors"`
	Watch     Watch     `yaml:"watch"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

// Selectors controls which elements the Applier considers.
type Selectors struct {
	Roots       string `yaml:"roots"`
	ParentRoots string `yaml:"parent_roots"`
	Candidates  string `yaml:"candidates"`
	Exclude     string `yaml:"exclude"`
}

// Watch configures the document watcher.
type Watch struct {
	Debounce       time.Duration `yaml:"debounce"`
	RescanInterval time.Duration `yaml:"rescan_interval"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr string `yaml:"addr"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration at path. An empty path yields Default().
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	loadEnvFile()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyDefaults(cfg)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks selectors and durations.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Selectors.Roots) == "" {
		return fmt.Errorf("config: selectors.roots must not be empty")
	}
	if strings.TrimSpace(c.Selectors.Candidates) == "" {
		return fmt.Errorf("config: selectors.candidates must not be empty")
	}
	for name, sel := range map[string]string{
		"roots":        c.Selectors.Roots,
		"parent_roots": c.Selectors.ParentRoots,
		"candidates":   c.Selectors.Candidates,
		"exclude":      c.Selectors.Exclude,
	} {
		if sel == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(sel); err != nil {
			return fmt.Errorf("config: selectors.%s: %w", name, err)
		}
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("config: watch.debounce must be positive")
	}
	if c.Watch.RescanInterval <= 0 {
		return fmt.Errorf("config: watch.rescan_interval must be positive")
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.StateFile == "" {
		c.StateFile = defaultStateFile()
	}
	if c.Selectors.Roots == "" {
		c.Selectors.Roots = DefaultRootSelector
	}
	if c.Selectors.ParentRoots == "" {
		c.Selectors.ParentRoots = DefaultParentRootSelector
	}
	if c.Selectors.Candidates == "" {
		c.Selectors.Candidates = DefaultCandidateSelector
	}
	if c.Selectors.Exclude == "" {
		c.Selectors.Exclude = DefaultExcludeSelector
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 250 * time.Millisecond
	}
	if c.Watch.RescanInterval == 0 {
		c.Watch.RescanInterval = time.Second
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

func applyEnv(c *Config) {
	if v := os.Getenv(EnvStateFile); v != "" {
		c.StateFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = NormalizeLogLevel(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = NormalizeLogFormat(v)
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".chatmd-state.yaml"
	}
	return filepath.Join(dir, "chatmd", "state.yaml")
}

// loadEnvFile loads the first of .env or .env.local that exists. Variables
// already present in the environment win.
func loadEnvFile() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err == nil {
			return
		}
	}
}
