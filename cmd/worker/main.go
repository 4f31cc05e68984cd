package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/huson-app/huson/internal/bootstrap"
	"github.com/huson-app/huson/internal/config"
	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/observability/logging"
	"github.com/huson-app/huson/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, workerMetrics.Breakers.Set)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err.Error())
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
		return app.Queue.SubscribeDonationSubmitted(groupCtx, func(_ context.Context, event domain.DonationSubmittedEvent) error {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(event.CreatedAt))
			slog.Info("donation_submitted",
				"donation_id", event.DonationID,
				"donor_id", event.DonorID,
				"item_type", event.ItemType,
				"has_image", event.HasImage,
			)
			workerMetrics.RecordEvent(serviceName, event, nil)
			return nil
		})
	})

	group.Go(func() error {
		runSweeper(groupCtx, app, workerMetrics, time.Duration(cfg.SweepIntervalMinutes)*time.Minute)
		return nil
	})

	if err := group.Wait(); err != nil {
		slog.Error("worker_failed", "error", err.Error())
		os.Exit(1)
	}
}

// runSweeper removes uploads that never got a donation row. A non-positive
// interval disables it.
func runSweeper(ctx context.Context, app *bootstrap.App, workerMetrics *metrics.WorkerMetrics, interval time.Duration) {
	if interval <= 0 {
		slog.Info("orphan_sweeper_disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			workerMetrics.StartSweep()
			start := time.Now()
			report, err := app.SweepUC.Sweep(ctx)
			workerMetrics.FinishSweep(serviceName, time.Since(start), report, err)
			if err != nil {
				slog.Error("orphan_sweep_failed", "error", err.Error())
				continue
			}
			slog.Info("orphan_sweep_finished",
				"scanned", report.Scanned,
				"deleted", report.Deleted,
				"kept", report.Kept,
				"failed", report.Failed,
			)
		}
	}
}
