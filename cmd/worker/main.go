package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/byroteam/byro/internal/bootstrap"
	"github.com/byroteam/byro/internal/config"
	"github.com/byroteam/byro/internal/core/domain"
	"github.com/byroteam/byro/internal/observability/logging"
	"github.com/byroteam/byro/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeIntakeReceived(ctx, func(handlerCtx context.Context, event domain.IntakeReceived) error {
		runCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.ObserveQueueLag("worker", time.Since(event.UploadedAt))
		workerMetrics.StartPipeline()
		start := time.Now()

		status := app.ProcessUC.Run(runCtx, event)

		workerMetrics.FinishPipeline("worker", time.Since(start), status)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
