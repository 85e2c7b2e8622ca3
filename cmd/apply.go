// Package cmd: apply command.
// Orchestrates one pass over a document:
// fetch → apply → write (→ report).
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/chatmd/core"
	"github.com/gaurav-prasanna/chatmd/core/apply"
	"github.com/gaurav-prasanna/chatmd/core/fetch"
	"github.com/gaurav-prasanna/chatmd/core/output"
	"github.com/gaurav-prasanna/chatmd/core/report"
	"github.com/gaurav-prasanna/chatmd/core/translate"
	"github.com/gaurav-prasanna/chatmd/logfields"
)

// Flag variables.
var (
	flagOutputDir string
	flagReport    bool
	flagInPlace   bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <url|file>",
	Short: "Render the user messages of an HTML document",
	Long: `Apply loads an HTML document, rewrites the text of every user message
as markup and writes the result next to --output_dir (or back to the file
with --in-place).

Examples:
  chatmd apply export.html --output_dir ./out
  chatmd apply export.html --in-place
  chatmd apply https://example.com/chat --report`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
	applyCmd.Flags().BoolVar(&flagReport, "report", false, "Also write a JSON report of the scan")
	applyCmd.Flags().BoolVar(&flagInPlace, "in-place", false, "Overwrite the source file")
}

func runApply(cmd *cobra.Command, args []string) error {
	source := args[0]
	if flagInPlace && fetch.IsURL(source) {
		return fmt.Errorf("--in-place needs a file source, got %s", source)
	}

	flag, err := openFlag()
	if err != nil {
		return err
	}
	applier := apply.New(translate.New(), flag, apply.OptionsFromConfig(cfg.Selectors))

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	p := &processor{
		fetcher: fetch.New(),
		applier: applier,
		toggle:  flag,
		writer:  writer,
		inPlace: flagInPlace,
		report:  flagReport,
	}
	result, err := p.process(cmd.Context(), source)
	if err != nil {
		return err
	}
	if !result.Enabled {
		fmt.Fprintf(cmd.OutOrStdout(), "MD OFF: %s left untouched\n", source)
	}
	return nil
}

// processor runs a document through fetch → apply → write.
type processor struct {
	fetcher core.Fetcher
	applier core.Applier
	toggle  core.Toggle
	writer  *output.Writer
	inPlace bool
	report  bool
}

// process handles one source. In-place writes are skipped when nothing
// changed and output writes when the output is already current, which
// keeps rescans of processed documents side-effect free.
func (p *processor) process(ctx context.Context, source string) (core.ApplyResult, error) {
	fetched, err := p.fetcher.Fetch(ctx, source)
	if err != nil {
		return core.ApplyResult{}, fmt.Errorf("fetch: %w", err)
	}

	rendered, result, err := p.applier.Apply(fetched.HTML)
	if err != nil {
		return result, fmt.Errorf("apply: %w", err)
	}

	switch {
	case p.inPlace && result.Touched():
		if err := output.WriteInPlace(source, []byte(rendered)); err != nil {
			return result, err
		}
		slog.Info("Rewrote document", logfields.Path(source), logfields.Transformed(len(result.Transformations)))
	case !p.inPlace:
		// An output already holding the rendered bytes is left alone, so
		// rescans never produce write events of their own.
		path, written, err := p.writer.WriteIfChanged(source, []byte(rendered), ".html")
		if err != nil {
			return result, err
		}
		if written {
			slog.Info("Wrote document", logfields.Source(source), logfields.Path(path), logfields.Transformed(len(result.Transformations)))
		}
	}

	if p.report {
		meta := report.Metadata(source, fetched.HTML, p.toggle.Enabled())
		data, err := report.Render(meta, result)
		if err != nil {
			return result, err
		}
		path, err := p.writer.Write(source, data, report.Extension)
		if err != nil {
			return result, err
		}
		slog.Info("Wrote report", logfields.Path(path))
	}
	return result, nil
}
