package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/solgood44/podcastlibrary/app/cfg"
	"github.com/solgood44/podcastlibrary/app/database"
	"github.com/solgood44/podcastlibrary/app/feed"
	"github.com/solgood44/podcastlibrary/app/ingest"
	"github.com/solgood44/podcastlibrary/app/sources"
)

func main() {
	// Missing .env is fine, configuration also comes from the real
	// environment and flags.
	_ = godotenv.Load()

	config, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if config == nil {
		// Help was shown, exit gracefully
		return
	}

	level := slog.LevelInfo
	if config.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))

	slog.Info("Starting podcast library ingestion", "version", config.Version)

	db, err := database.NewConnection(config.DBHost, config.DBPort, config.DBUser,
		config.DBPassword, config.DBName, config.DBSSLMode)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	feedSources, err := sources.Load(config.FeedsFile)
	if err != nil {
		slog.Error("Failed to load feed sources", "file", config.FeedsFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded feed sources", "file", config.FeedsFile, "count", len(feedSources))

	ingestor := ingest.New(
		ingest.Options{
			BatchSize:     config.BatchSize,
			ForceRefresh:  config.ForceRefresh,
			DeleteMissing: config.DeleteMissing,
			OnlyDaily:     config.OnlyDaily,
			ActiveOnly:    config.ActiveOnly,
			ActiveDays:    config.ActiveDays,
			WorkerCount:   config.WorkerCount,
		},
		ingest.NewFetcher(time.Duration(config.FetchTimeout)*time.Second, config.UserAgent, config.FetchRPS),
		feed.NewParser(),
		database.NewPodcastRepo(db),
		database.NewEpisodeRepo(db),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := ingestor.Run(ctx, feedSources)
	if err != nil {
		slog.Error("Ingestion run failed", "error", err)
		os.Exit(1)
	}

	if ctx.Err() != nil {
		slog.Warn("Run interrupted by signal",
			"processed", stats.Processed, "errors", stats.Errored)
		os.Exit(1)
	}
}
