package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DataScope/src/config"
	"DataScope/src/dataset"
	"DataScope/src/datasource/email"
	"DataScope/src/datasource/file"
	"DataScope/src/report"
	"DataScope/src/server"
	"DataScope/src/storage"
)

const watchDebounce = 500 * time.Millisecond

func main() {
	configPath := flag.String("config", "./config/config.json", "path to the JSON configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	logger, err := storage.NewLogger(cfg.Log.File, storage.ParseLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}

	err = run(cfg, logger)
	logger.Close()
	if err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config, logger *storage.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	catalog := dataset.NewCatalog(cfg.Data.Dir, cfg.Data.Charset, logger)
	if err := catalog.Rescan(); err != nil {
		return fmt.Errorf("initial dataset scan: %w", err)
	}
	manager := dataset.NewManager(catalog, logger, cfg.Data.CategoricalThreshold)

	if cfg.Data.DefaultDataset != "" {
		if _, err := manager.Select(cfg.Data.DefaultDataset); err != nil {
			logger.Warn("default dataset not loaded",
				"dataset", cfg.Data.DefaultDataset, "error", err)
		}
	}

	if cfg.Data.Watch {
		monitor := file.NewMonitor(cfg.Data.Dir, logger, watchDebounce, func() {
			if err := catalog.Rescan(); err != nil {
				logger.Error("dataset rescan failed", "error", err)
			}
		})
		if err := monitor.Start(ctx); err != nil {
			return fmt.Errorf("start dataset watcher: %w", err)
		}
	}

	scheduler := report.NewScheduler(cfg.Report, manager, logger)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start report scheduler: %w", err)
	}
	defer scheduler.Stop()

	ingestor := email.NewIngestor(cfg.Mailbox, cfg.Data.Dir, nil, logger)
	if err := ingestor.Start(); err != nil {
		return fmt.Errorf("start mailbox poller: %w", err)
	}
	defer ingestor.Stop()

	go rotateLogs(ctx, logger, cfg.MaxLogBytes())

	return server.New(*cfg, catalog, manager, logger).Serve(ctx)
}

// rotateLogs trims the log file whenever it outgrows the configured limit.
func rotateLogs(ctx context.Context, logger *storage.Logger, maxBytes int64) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := logger.CheckRotate(maxBytes); err != nil {
				logger.Warn("log rotation failed", "error", err)
			}
		}
	}
}
