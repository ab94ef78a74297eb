package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ff-events/internal/api"
	"github.com/pfrederiksen/ff-events/internal/logger"
	"github.com/pfrederiksen/ff-events/internal/metrics"
	"github.com/pfrederiksen/ff-events/internal/refresh"
	"github.com/pfrederiksen/ff-events/internal/storage"
)

var _ api.DocumentSource = (*storage.FileStore)(nil)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the snapshot over HTTP and refresh it weekly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	a, err := newApp(os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	n, err := a.newNotifier()
	if err != nil {
		return err
	}
	sc, err := a.newScraper("")
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	m := metrics.New()
	svc := refresh.NewService(sc, store, n, m)

	scheduler, err := refresh.NewScheduler(refresh.ServiceRefresher(svc), cfg.Schedule.Cron, loc)
	if err != nil {
		return err
	}
	scheduler.Start(ctx)

	if !cfg.Schedule.SkipInitialRun {
		go func() {
			if _, err := svc.EnsureSnapshot(ctx, refresh.TriggerStartup); err != nil {
				logger.Warn("Initial scrape failed, next trigger will retry", logger.Fields{"error": err.Error()})
			}
		}()
	}

	opts := api.Options{
		Schedule: fmt.Sprintf("%s (%s)", cfg.Schedule.Cron, loc),
		Metrics:  m.Handler(),
	}
	if doc, ok := store.(api.DocumentSource); ok {
		opts.Document = doc
	}
	handler := api.New(svc, opts)
	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddress,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server starting", logger.Fields{"addr": cfg.Server.ListenAddress})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received", nil)
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", nil, err)
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("Scheduler did not stop in time", logger.Fields{"error": err.Error()})
	}

	if serveErr != nil {
		return fmt.Errorf("serving http: %w", serveErr)
	}
	return nil
}
