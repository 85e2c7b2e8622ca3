package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/chatmd/core/apply"
	"github.com/gaurav-prasanna/chatmd/core/metrics"
	"github.com/gaurav-prasanna/chatmd/core/server"
	"github.com/gaurav-prasanna/chatmd/core/translate"
	"github.com/gaurav-prasanna/chatmd/logfields"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve translate, apply and toggle over HTTP",
	Long: `Serve exposes the renderer over HTTP:

  POST /translate   text in, markup out
  POST /apply       HTML document in, rendered document out
  GET|PUT /state    read or set the on/off flag
  POST /toggle      flip the flag
  GET /metrics      Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := cfg.Server.Addr
	if flagAddr != "" {
		addr = flagAddr
	}

	flag, err := openFlag()
	if err != nil {
		return err
	}

	reg := prom.NewRegistry()
	tr := translate.New()
	applier := apply.New(tr, flag, apply.OptionsFromConfig(cfg.Selectors)).
		WithRecorder(metrics.NewPrometheusRecorder(reg))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.New(tr, applier, flag, metrics.HTTPHandler(reg)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", logfields.Addr(addr), logfields.Enabled(flag.Enabled()))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
