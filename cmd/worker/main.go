package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/kunal1274/fms-dev-sub000/internal/app"
	"github.com/kunal1274/fms-dev-sub000/internal/gateway"
	"github.com/kunal1274/fms-dev-sub000/internal/listing"
	"github.com/kunal1274/fms-dev-sub000/internal/observability"
	"github.com/kunal1274/fms-dev-sub000/internal/platform/cache"
	"github.com/kunal1274/fms-dev-sub000/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	backend, err := gateway.NewClient(gateway.Config{
		BaseURL:         cfg.APIBaseURL,
		Timeout:         cfg.APITimeout,
		BulkConcurrency: cfg.BulkDeleteConcurrency,
		Observer:        metrics,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("init gateway", slog.Any("error", err))
		os.Exit(1)
	}

	// The worker only populates the cache; it never enqueues further warms.
	service := listing.NewService(backend, listing.NewCache(redisClient, cfg.CacheTTL), nil, logger)
	warmupJob := jobs.NewRecordsWarmupJob(service, logger, metrics.Jobs())

	cron, err := jobs.WarmSchedule(cfg.WarmCron)
	if err != nil {
		logger.Error("build warm schedule", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRecordsWarm, Handler: warmupJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if cfg.WorkerMetricsAddr != "" {
		go func() {
			logger.Info("starting worker metrics server", slog.String("addr", cfg.WorkerMetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("starting worker", slog.String("warm_cron", cfg.WarmCron), slog.Int("kinds", len(cron)))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
