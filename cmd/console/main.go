package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/kunal1274/fms-dev-sub000/cmd/console/cli"
	"github.com/kunal1274/fms-dev-sub000/internal/app"
	"github.com/kunal1274/fms-dev-sub000/internal/documents"
	"github.com/kunal1274/fms-dev-sub000/internal/export"
	"github.com/kunal1274/fms-dev-sub000/internal/gateway"
	"github.com/kunal1274/fms-dev-sub000/internal/listing"
	"github.com/kunal1274/fms-dev-sub000/internal/observability"
	"github.com/kunal1274/fms-dev-sub000/internal/platform/cache"
	"github.com/kunal1274/fms-dev-sub000/jobs"
	"github.com/kunal1274/fms-dev-sub000/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		os.Exit(runJobs(ctx, cfg, os.Args[2:]))
	}

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, record cache disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

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

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	var warmer listing.Warmer
	var inspector *asynq.Inspector
	if redisClient != nil {
		jobClient, err := jobs.NewClient(redisOpts)
		if err != nil {
			logger.Error("init job client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		warmer = jobClient

		inspector = asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
	}

	recordCache := listing.NewCache(redisClient, cfg.CacheTTL)
	service := listing.NewService(backend, recordCache, warmer, logger)

	reportClient := report.NewClient(cfg.GotenbergURL)
	pdfExporter := &export.PDFExporter{Renderer: reportClient}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		ListingHandler:   listing.NewHandler(service, pdfExporter, logger),
		DocumentsHandler: documents.NewHandler(logger),
		ReportHandler:    report.NewHandler(reportClient, logger),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// runJobs handles `console jobs warm [-kind k]` and `console jobs stats`.
func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: console jobs warm [-kind name] | console jobs stats")
		return 2
	}
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client, err := jobs.NewClient(redisOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}
	defer client.Close()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()

	jobsCLI, err := cli.NewJobsCLI(client, inspector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}

	switch args[0] {
	case "warm":
		fs := flag.NewFlagSet("jobs warm", flag.ContinueOnError)
		kind := fs.String("kind", "", "entity kind to warm; all kinds when empty")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		return jobsCLI.WarmCommand(ctx, cli.WarmOptions{Kind: *kind})
	case "stats":
		return jobsCLI.StatsCommand(ctx, os.Stdout, os.Stderr)
	default:
		fmt.Fprintf(os.Stderr, "jobs: unknown command %q\n", args[0])
		return 2
	}
}
