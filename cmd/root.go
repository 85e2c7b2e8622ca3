// Package cmd implements the CLI commands for chatmd using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/chatmd/config"
	"github.com/gaurav-prasanna/chatmd/core/state"
)

// Persistent flag variables.
var (
	flagConfig  string
	flagVerbose bool
	flagState   string
)

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "chatmd",
	Short: "chatmd: render Markdown-like chat text as inline HTML",
	Long: `chatmd converts the lightweight Markdown used in chat messages
(*italic*, **bold**, ~~strike~~, code, links, headings, lists, checkboxes)
into safe inline HTML, and rewrites user messages inside HTML documents.

Usage:
  chatmd translate [file]
  chatmd apply <url|file> [flags]
  chatmd watch <path>... [flags]
  chatmd serve [flags]
  chatmd toggle [on|off]`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagState, "state", "", "State file holding the on/off flag (overrides config)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagState != "" {
		loaded.StateFile = flagState
	}
	cfg = loaded

	level := cfg.Logging.Level.SlogLevel()
	if flagVerbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	if cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// openFlag opens the persisted enabled flag.
func openFlag() (*state.Flag, error) {
	flag, err := state.Open(cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}
	return flag, nil
}
