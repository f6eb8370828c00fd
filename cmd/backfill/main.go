package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/importer"
	"newsdesk/internal/middleware"
	"newsdesk/internal/storage"
)

func main() {
	var (
		baseURL    = flag.String("base-url", "", "remote API base URL (required)")
		from       = flag.Int("from", 1, "first remote post id (inclusive)")
		to         = flag.Int("to", 100, "last remote post id (inclusive)")
		languageID = flag.Int("language", 1, "remote language id")
		interval   = flag.Duration("interval", 200*time.Millisecond, "delay between remote requests")
		retries    = flag.Int("retries", 3, "retries per record on transient failures")
	)
	flag.Parse()

	logger := middleware.Logger
	if *baseURL == "" {
		logger.Error("missing required flag -base-url")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := storage.New(cfg.DataFile, logger)
	client := importer.New(*baseURL, importer.Options{
		Interval:   *interval,
		Retries:    *retries,
		LanguageID: *languageID,
	}, logger)

	imported, err := client.Run(ctx, store, *from, *to)
	if err != nil {
		logger.Error("backfill failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("backfill complete",
		slog.Int("imported", imported),
		slog.Int("from", *from),
		slog.Int("to", *to),
	)
}
