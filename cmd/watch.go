package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/chatmd/core/apply"
	"github.com/gaurav-prasanna/chatmd/core/fetch"
	"github.com/gaurav-prasanna/chatmd/core/output"
	"github.com/gaurav-prasanna/chatmd/core/translate"
	"github.com/gaurav-prasanna/chatmd/core/watch"
	"github.com/gaurav-prasanna/chatmd/logfields"
)

var (
	flagInterval string
	flagDebounce string
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>...",
	Short: "Re-render documents whenever they change",
	Long: `Watch observes HTML files (or directories of them) and re-applies the
renderer each time one changes, plus on a fixed rescan interval. Documents
are rewritten in place unless --output_dir is given. Already processed
messages are skipped, so rescans are cheap.

Examples:
  chatmd watch ./exports
  chatmd watch chat.html --interval 5s`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Write results here instead of in place")
	watchCmd.Flags().StringVar(&flagInterval, "interval", "", "Rescan interval (default from config, 1s)")
	watchCmd.Flags().StringVar(&flagDebounce, "debounce", "", "Quiet period before a changed file is processed")
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval, err := durationFlag(flagInterval, cfg.Watch.RescanInterval)
	if err != nil {
		return fmt.Errorf("--interval: %w", err)
	}
	debounce, err := durationFlag(flagDebounce, cfg.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("--debounce: %w", err)
	}

	flag, err := openFlag()
	if err != nil {
		return err
	}
	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	p := &processor{
		fetcher: fetch.New(),
		applier: apply.New(translate.New(), flag, apply.OptionsFromConfig(cfg.Selectors)),
		toggle:  flag,
		writer:  writer,
		inPlace: flagOutputDir == "",
	}

	// Watcher callbacks and rescans run one document at a time.
	var mu sync.Mutex
	handle := func(ctx context.Context, path string) {
		mu.Lock()
		defer mu.Unlock()
		if _, err := p.process(ctx, path); err != nil {
			slog.Error("Processing document failed", logfields.Path(path), logfields.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(debounce, handle)
	if err != nil {
		return err
	}
	for _, path := range args {
		if err := w.Add(path); err != nil {
			return err
		}
	}

	rescanner, err := watch.NewRescanner(interval, func() {
		// Pick up a toggle made from another process.
		if err := flag.Reload(); err != nil {
			slog.Warn("Reloading flag failed", logfields.Error(err))
		}
		if !flag.Enabled() {
			return
		}
		for _, doc := range w.Documents() {
			handle(ctx, doc)
		}
	})
	if err != nil {
		return err
	}
	rescanner.Start()
	defer func() {
		if err := rescanner.Stop(); err != nil {
			slog.Error("Stopping rescanner failed", logfields.Error(err))
		}
	}()

	slog.Info("Watching documents", slog.Any("paths", args), slog.Duration("interval", interval))
	return w.Run(ctx)
}
