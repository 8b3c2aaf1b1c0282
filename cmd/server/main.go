package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/cacctools/drivecycle/pkg/http"
	"github.com/cacctools/drivecycle/pkg/results"
	"github.com/cacctools/drivecycle/pkg/temporal"
)

func main() {
	var (
		httpAddr     = flag.String("http-addr", ":8080", "HTTP server address")
		temporalAddr = flag.String("temporal-addr", "localhost:7233", "Temporal server address")
		namespace    = flag.String("namespace", "default", "Temporal namespace")
		taskQueue    = flag.String("task-queue", temporal.DefaultTaskQueue, "Temporal task queue")
		logDir       = flag.String("log-dir", "logs", "Directory containing scenario log CSVs")
		dbPath       = flag.String("db", "", "SQLite database for run history (empty disables persistence)")
		logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	// Setup logger
	var logHandler slog.Handler
	switch *logLevel {
	case "debug":
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	case "warn":
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})
	case "error":
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	default:
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("Starting CACC evaluation service",
		"http_addr", *httpAddr,
		"temporal_addr", *temporalAddr,
		"namespace", *namespace,
		"task_queue", *taskQueue,
		"log_dir", *logDir,
	)

	// Create Temporal client
	temporalClient, err := client.Dial(client.Options{
		HostPort:  *temporalAddr,
		Namespace: *namespace,
	})
	if err != nil {
		logger.Error("Failed to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer temporalClient.Close()

	// Open the results store, if configured
	var store *results.Store
	if *dbPath != "" {
		store, err = results.NewStore(*dbPath)
		if err != nil {
			logger.Error("Failed to open results store", "error", err, "db", *dbPath)
			os.Exit(1)
		}
		defer store.Close()
	} else {
		logger.Warn("No -db given, suite runs will not be persisted")
	}

	// Create activities backed by the log directory and the store
	logs := temporal.NewFSLogSource(*logDir)
	var sink temporal.ResultSink
	if store != nil {
		sink = store
	}
	activities := temporal.NewActivitiesImpl(logger, logs, sink)

	// Create and start Temporal worker
	w := worker.New(temporalClient, *taskQueue, worker.Options{})

	// Register workflows
	w.RegisterWorkflow(temporal.SuiteWorkflow)

	// Register activities under their stable names
	w.RegisterActivityWithOptions(activities.EvaluateScenarioActivity,
		activity.RegisterOptions{Name: temporal.EvaluateScenarioActivityName})
	w.RegisterActivityWithOptions(activities.RecordResultsActivity,
		activity.RegisterOptions{Name: temporal.RecordResultsActivityName})

	// Start worker in background
	go func() {
		logger.Info("Starting Temporal worker", "task_queue", *taskQueue)
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Error("Temporal worker failed", "error", err)
			os.Exit(1)
		}
	}()

	// Create and start HTTP server
	server := http.NewServer(logger, temporalClient, store, *httpAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server in background
	go func() {
		if err := server.Start(ctx); err != nil {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Received shutdown signal, stopping services...")

	// Cancel context to stop HTTP server
	cancel()

	logger.Info("CACC evaluation service stopped")
}
